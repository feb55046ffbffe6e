package bitutil

import "testing"

func TestBitArrayGetSet(t *testing.T) {
	ba := NewBitArray(33)
	for i := 0; i < 33; i++ {
		if ba.Get(i) {
			t.Errorf("bit %d should not be set", i)
		}
	}
	ba.Set(0)
	ba.Set(31)
	ba.Set(32)
	if !ba.Get(0) || !ba.Get(31) || !ba.Get(32) {
		t.Error("bits should be set")
	}
	if ba.Get(1) || ba.Get(30) {
		t.Error("bits should not be set")
	}
}

func TestBitArrayAppendBit(t *testing.T) {
	ba := &BitArray{}
	ba.AppendBit(true)
	ba.AppendBit(false)
	ba.AppendBit(true)
	if ba.Size() != 3 {
		t.Errorf("size = %d, want 3", ba.Size())
	}
	if !ba.Get(0) || ba.Get(1) || !ba.Get(2) {
		t.Error("incorrect bits after append")
	}
}

func TestBitArrayAppendBits(t *testing.T) {
	ba := &BitArray{}
	ba.AppendBits(0x1E, 6) // 011110
	if ba.Size() != 6 {
		t.Fatalf("size = %d, want 6", ba.Size())
	}
	expected := []bool{false, true, true, true, true, false}
	for i, exp := range expected {
		if ba.Get(i) != exp {
			t.Errorf("bit %d = %v, want %v", i, ba.Get(i), exp)
		}
	}
}

func TestBitArrayAppendBitArray(t *testing.T) {
	a := &BitArray{}
	a.AppendBits(0x05, 3) // 101
	b := &BitArray{}
	b.AppendBits(0x03, 2) // 11
	a.AppendBitArray(b)
	if a.Size() != 5 {
		t.Fatalf("size = %d, want 5", a.Size())
	}
	expected := []bool{true, false, true, true, true}
	for i, exp := range expected {
		if a.Get(i) != exp {
			t.Errorf("bit %d = %v, want %v", i, a.Get(i), exp)
		}
	}
}

func TestBitArrayToBytes(t *testing.T) {
	ba := &BitArray{}
	ba.AppendBits(0xA5, 8)
	ba.AppendBits(0x3C, 8)
	out := make([]byte, 2)
	ba.ToBytes(0, out, 0, 2)
	if out[0] != 0xA5 || out[1] != 0x3C {
		t.Errorf("ToBytes = %#v, want [0xA5 0x3C]", out)
	}
}

func TestBitArrayToBytesOffset(t *testing.T) {
	ba := &BitArray{}
	ba.AppendBits(0x0F, 4)
	ba.AppendBits(0xA5, 8)
	out := make([]byte, 1)
	ba.ToBytes(4, out, 0, 1)
	if out[0] != 0xA5 {
		t.Errorf("ToBytes from bit 4 = %#x, want 0xA5", out[0])
	}
}

func TestBitArraySizeInBytes(t *testing.T) {
	for _, tc := range []struct{ bits, want int }{
		{0, 0}, {1, 1}, {8, 1}, {9, 2}, {16, 2}, {17, 3},
	} {
		ba := &BitArray{}
		for i := 0; i < tc.bits; i++ {
			ba.AppendBit(false)
		}
		if got := ba.SizeInBytes(); got != tc.want {
			t.Errorf("SizeInBytes for %d bits = %d, want %d", tc.bits, got, tc.want)
		}
	}
}

func TestBitArrayString(t *testing.T) {
	ba := &BitArray{}
	ba.AppendBits(0xA1, 8)
	ba.AppendBit(true)
	if got := ba.String(); got != " X.X....X X" {
		t.Errorf("String() = %q", got)
	}
}
