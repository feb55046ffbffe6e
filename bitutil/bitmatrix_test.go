package bitutil

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// diffMatrices renders both matrices and reports a unified diff on mismatch.
func diffMatrices(t *testing.T, want, got *BitMatrix) {
	t.Helper()
	if want.Equals(got) {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want.String()),
		B:        difflib.SplitLines(got.String()),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	t.Errorf("matrices differ:\n%s", diff)
}

func TestBitMatrixGetSet(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	bm.Set(3, 5)
	if !bm.Get(3, 5) {
		t.Error("bit (3,5) should be set")
	}
	if bm.Get(5, 3) {
		t.Error("bit (5,3) should not be set")
	}
}

func TestBitMatrixFlip(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 4)
	bm.Flip(1, 2)
	if !bm.Get(1, 2) {
		t.Error("bit should be set after flip")
	}
	bm.Flip(1, 2)
	if bm.Get(1, 2) {
		t.Error("bit should be unset after double flip")
	}
}

func TestBitMatrixFlipAll(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 4)
	bm.Set(1, 1)
	bm.FlipAll()
	if bm.Get(1, 1) {
		t.Error("(1,1) should be unset after FlipAll")
	}
	if !bm.Get(0, 0) || !bm.Get(3, 3) {
		t.Error("unset bits should be set after FlipAll")
	}
}

func TestBitMatrixSetRegion(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.SetRegion(2, 2, 4, 4)
	want := NewBitMatrixWithSize(8, 8)
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			want.Set(x, y)
		}
	}
	diffMatrices(t, want, bm)
}

func TestBitMatrixRow(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 4)
	bm.Set(3, 2)
	bm.Set(5, 2)
	row := bm.Row(2, nil)
	if !row.Get(3) || !row.Get(5) {
		t.Error("row should have bits 3 and 5 set")
	}
	if row.Get(4) {
		t.Error("row bit 4 should not be set")
	}
}

func TestBitMatrixTopLeftOnBit(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	bm.Set(5, 3)
	pt := bm.TopLeftOnBit()
	if pt == nil || pt[0] != 5 || pt[1] != 3 {
		t.Errorf("TopLeftOnBit = %v, want [5 3]", pt)
	}
	if NewBitMatrixWithSize(4, 4).TopLeftOnBit() != nil {
		t.Error("TopLeftOnBit on empty matrix should be nil")
	}
}

func TestBitMatrixBottomRightOnBit(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	bm.Set(2, 1)
	bm.Set(7, 6)
	pt := bm.BottomRightOnBit()
	if pt == nil || pt[0] != 7 || pt[1] != 6 {
		t.Errorf("BottomRightOnBit = %v, want [7 6]", pt)
	}
}

func TestBitMatrixClone(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.Set(1, 1)
	clone := bm.Clone()
	clone.Set(2, 2)
	if bm.Get(2, 2) {
		t.Error("modifying clone should not affect original")
	}
	if !clone.Get(1, 1) || !clone.Get(2, 2) {
		t.Error("clone should have both bits set")
	}
}

func TestBitMatrixEquals(t *testing.T) {
	a := NewBitMatrixWithSize(4, 4)
	b := NewBitMatrixWithSize(4, 4)
	a.Set(1, 2)
	b.Set(1, 2)
	if !a.Equals(b) {
		t.Error("equal matrices should be equal")
	}
	b.Set(3, 3)
	if a.Equals(b) {
		t.Error("different matrices should not be equal")
	}
}

func TestBitMatrixParseStringRoundTrip(t *testing.T) {
	bm := NewBitMatrixWithSize(5, 3)
	bm.Set(0, 0)
	bm.Set(4, 0)
	bm.Set(2, 1)
	bm.Set(1, 2)
	parsed := ParseStringMatrix(bm.String(), "X ", "  ")
	diffMatrices(t, bm, parsed)
}
