package bitutil

import (
	"math/bits"
	"strings"
)

// BitMatrix represents a 2D matrix of bits. x is the column position, y is
// the row position. The origin is at the top-left. Set bits are black both
// for rendered symbol output and for binarized camera input.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	data    []uint32
}

// NewBitMatrix creates a new square BitMatrix with the given dimension.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize creates a new BitMatrix with the given width and height.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitmatrix: dimensions must be greater than 0")
	}
	rowSize := (width + 31) / 32
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		data:    make([]uint32, rowSize*height),
	}
}

// ParseStringMatrix creates a BitMatrix from a string representation.
func ParseStringMatrix(repr, setStr, unsetStr string) *BitMatrix {
	bts := make([]bool, len(repr))
	bitsPos := 0
	rowStartPos := 0
	rowLength := -1
	nRows := 0
	pos := 0
	for pos < len(repr) {
		ch := repr[pos]
		if ch == '\n' || ch == '\r' {
			if bitsPos > rowStartPos {
				if rowLength == -1 {
					rowLength = bitsPos - rowStartPos
				} else if bitsPos-rowStartPos != rowLength {
					panic("bitmatrix: row lengths do not match")
				}
				rowStartPos = bitsPos
				nRows++
			}
			pos++
		} else if len(repr) >= pos+len(setStr) && repr[pos:pos+len(setStr)] == setStr {
			pos += len(setStr)
			bts[bitsPos] = true
			bitsPos++
		} else if len(repr) >= pos+len(unsetStr) && repr[pos:pos+len(unsetStr)] == unsetStr {
			pos += len(unsetStr)
			bts[bitsPos] = false
			bitsPos++
		} else {
			panic("bitmatrix: illegal character encountered")
		}
	}
	if bitsPos > rowStartPos {
		if rowLength == -1 {
			rowLength = bitsPos - rowStartPos
		} else if bitsPos-rowStartPos != rowLength {
			panic("bitmatrix: row lengths do not match")
		}
		nRows++
	}
	matrix := NewBitMatrixWithSize(rowLength, nRows)
	for i := 0; i < bitsPos; i++ {
		if bts[i] {
			matrix.Set(i%rowLength, i/rowLength)
		}
	}
	return matrix
}

// Get returns true if the bit at (x, y) is set.
func (bm *BitMatrix) Get(x, y int) bool {
	offset := y*bm.rowSize + x/32
	return (bm.data[offset]>>uint(x&0x1f))&1 != 0
}

// Set sets the bit at (x, y).
func (bm *BitMatrix) Set(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] |= 1 << uint(x&0x1f)
}

// Flip flips the bit at (x, y).
func (bm *BitMatrix) Flip(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] ^= 1 << uint(x&0x1f)
}

// FlipAll flips every bit in the matrix.
func (bm *BitMatrix) FlipAll() {
	for i := range bm.data {
		bm.data[i] = ^bm.data[i]
	}
}

// Clear clears all bits.
func (bm *BitMatrix) Clear() {
	for i := range bm.data {
		bm.data[i] = 0
	}
}

// SetRegion sets a rectangular region of bits.
func (bm *BitMatrix) SetRegion(left, top, width, height int) {
	if top < 0 || left < 0 {
		panic("bitmatrix: left and top must be nonnegative")
	}
	if height < 1 || width < 1 {
		panic("bitmatrix: height and width must be at least 1")
	}
	right := left + width
	bottom := top + height
	if bottom > bm.height || right > bm.width {
		panic("bitmatrix: region must fit inside the matrix")
	}
	for y := top; y < bottom; y++ {
		offset := y * bm.rowSize
		for x := left; x < right; x++ {
			bm.data[offset+x/32] |= 1 << uint(x&0x1f)
		}
	}
}

// Row returns a row as a BitArray. If row is nil or too small, a new one is allocated.
func (bm *BitMatrix) Row(y int, row *BitArray) *BitArray {
	if row == nil || row.Size() < bm.width {
		row = NewBitArray(bm.width)
	} else {
		row.Clear()
	}
	offset := y * bm.rowSize
	for x := 0; x < bm.rowSize; x++ {
		row.SetBulk(x*32, bm.data[offset+x])
	}
	return row
}

// TopLeftOnBit returns the [x, y] of the top-left set bit, or nil if none are set.
func (bm *BitMatrix) TopLeftOnBit() []int {
	bitsOffset := 0
	for bitsOffset < len(bm.data) && bm.data[bitsOffset] == 0 {
		bitsOffset++
	}
	if bitsOffset == len(bm.data) {
		return nil
	}
	y := bitsOffset / bm.rowSize
	x := (bitsOffset % bm.rowSize) * 32
	theBits := bm.data[bitsOffset]
	x += bits.TrailingZeros32(theBits)
	return []int{x, y}
}

// BottomRightOnBit returns the [x, y] of the bottom-right set bit, or nil if none are set.
func (bm *BitMatrix) BottomRightOnBit() []int {
	bitsOffset := len(bm.data) - 1
	for bitsOffset >= 0 && bm.data[bitsOffset] == 0 {
		bitsOffset--
	}
	if bitsOffset < 0 {
		return nil
	}
	y := bitsOffset / bm.rowSize
	x := (bitsOffset % bm.rowSize) * 32
	theBits := bm.data[bitsOffset]
	x += 31 - bits.LeadingZeros32(theBits)
	return []int{x, y}
}

// Width returns the width.
func (bm *BitMatrix) Width() int { return bm.width }

// Height returns the height.
func (bm *BitMatrix) Height() int { return bm.height }

// Clone returns a deep copy of the BitMatrix.
func (bm *BitMatrix) Clone() *BitMatrix {
	d := make([]uint32, len(bm.data))
	copy(d, bm.data)
	return &BitMatrix{width: bm.width, height: bm.height, rowSize: bm.rowSize, data: d}
}

// String returns a string representation using "X " for set and "  " for unset.
func (bm *BitMatrix) String() string {
	return bm.StringWithChars("X ", "  ")
}

// StringWithChars returns a string representation using the given set/unset strings.
func (bm *BitMatrix) StringWithChars(setString, unsetString string) string {
	var sb strings.Builder
	sb.Grow(bm.height * (bm.width + 1))
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) {
				sb.WriteString(setString)
			} else {
				sb.WriteString(unsetString)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Equals returns true if two BitMatrices are equal.
func (bm *BitMatrix) Equals(other *BitMatrix) bool {
	if bm.width != other.width || bm.height != other.height || bm.rowSize != other.rowSize {
		return false
	}
	for i := range bm.data {
		if bm.data[i] != other.data[i] {
			return false
		}
	}
	return true
}
