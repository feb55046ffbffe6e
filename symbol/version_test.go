package symbol

import (
	"errors"
	"testing"
)

func TestVersionForNumber(t *testing.T) {
	v, err := VersionForNumber(7)
	if err != nil {
		t.Fatalf("VersionForNumber(7): %v", err)
	}
	if v.Number != 7 {
		t.Errorf("Number = %d, want 7", v.Number)
	}
	if v.Dimension() != 45 {
		t.Errorf("Dimension() = %d, want 45", v.Dimension())
	}
	for _, bad := range []int{0, -1, 41} {
		if _, err := VersionForNumber(bad); !errors.Is(err, ErrInvalidVersion) {
			t.Errorf("VersionForNumber(%d) error = %v, want ErrInvalidVersion", bad, err)
		}
	}
}

func TestVersionTotalCodewords(t *testing.T) {
	for _, tc := range []struct{ number, want int }{
		{1, 26},
		{2, 44},
		{10, 346},
		{40, 3706},
	} {
		v, err := VersionForNumber(tc.number)
		if err != nil {
			t.Fatalf("VersionForNumber(%d): %v", tc.number, err)
		}
		if v.TotalCodewords != tc.want {
			t.Errorf("version %d TotalCodewords = %d, want %d", tc.number, v.TotalCodewords, tc.want)
		}
	}
}

func TestECBlocksForLevel(t *testing.T) {
	v, _ := VersionForNumber(5)
	q := v.ECBlocksForLevel(ECLevelQ)
	if q.NumBlocks() != 4 {
		t.Errorf("v5 Q NumBlocks = %d, want 4", q.NumBlocks())
	}
	if q.TotalECCodewords() != 72 {
		t.Errorf("v5 Q TotalECCodewords = %d, want 72", q.TotalECCodewords())
	}
}

func TestProvisionalVersionForDimension(t *testing.T) {
	v, err := ProvisionalVersionForDimension(21)
	if err != nil || v.Number != 1 {
		t.Errorf("dimension 21 -> version %v, %v; want 1", v, err)
	}
	v, err = ProvisionalVersionForDimension(177)
	if err != nil || v.Number != 40 {
		t.Errorf("dimension 177 -> version %v, %v; want 40", v, err)
	}
	if _, err := ProvisionalVersionForDimension(22); err == nil {
		t.Error("dimension 22 should be invalid")
	}
}

func TestDecodeVersionInformation(t *testing.T) {
	// Exact codewords for versions 7 and 8.
	if v := DecodeVersionInformation(0x07C94); v == nil || v.Number != 7 {
		t.Errorf("0x07C94 -> %v, want version 7", v)
	}
	if v := DecodeVersionInformation(0x085BC); v == nil || v.Number != 8 {
		t.Errorf("0x085BC -> %v, want version 8", v)
	}
	// Up to three flipped bits still decode.
	if v := DecodeVersionInformation(0x07C94 ^ 0x25); v == nil || v.Number != 7 {
		t.Errorf("corrupted version 7 info -> %v, want version 7", v)
	}
	// Garbage does not.
	if v := DecodeVersionInformation(0x3FFFF); v != nil {
		t.Errorf("garbage -> version %d, want nil", v.Number)
	}
}

func TestBuildFunctionPattern(t *testing.T) {
	v, _ := VersionForNumber(1)
	fp := v.BuildFunctionPattern()
	if fp.Width() != 21 {
		t.Fatalf("function pattern width = %d, want 21", fp.Width())
	}
	// Finder pattern corners are function modules; the interior is not.
	if !fp.Get(0, 0) || !fp.Get(20, 0) || !fp.Get(0, 20) {
		t.Error("finder corners should be function modules")
	}
	if fp.Get(12, 12) {
		t.Error("(12,12) should be a data module on version 1")
	}
	// Timing patterns.
	if !fp.Get(6, 10) || !fp.Get(10, 6) {
		t.Error("timing rows should be function modules")
	}

	// Version 7 adds version info blocks and an alignment grid.
	v7, _ := VersionForNumber(7)
	fp7 := v7.BuildFunctionPattern()
	if !fp7.Get(45-11, 0) {
		t.Error("version info area should be reserved on version 7")
	}
}
