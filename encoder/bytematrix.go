package encoder

import (
	"strings"

	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/symbol"
)

// ByteMatrix is a simple 2D byte matrix used while placing QR code modules.
// Cells hold 0, 1 or the empty marker 0xFF.
type ByteMatrix struct {
	Data          [][]byte
	Width, Height int
}

// NewByteMatrix creates a new ByteMatrix.
func NewByteMatrix(width, height int) *ByteMatrix {
	data := make([][]byte, height)
	for i := range data {
		data[i] = make([]byte, width)
	}
	return &ByteMatrix{Data: data, Width: width, Height: height}
}

// Get returns the value at (x, y).
func (bm *ByteMatrix) Get(x, y int) byte { return bm.Data[y][x] }

// Set sets the value at (x, y).
func (bm *ByteMatrix) Set(x, y int, value byte) { bm.Data[y][x] = value }

// SetBool sets the value at (x, y) as 1 (true) or 0 (false).
func (bm *ByteMatrix) SetBool(x, y int, value bool) {
	if value {
		bm.Data[y][x] = 1
	} else {
		bm.Data[y][x] = 0
	}
}

// Clear fills the matrix with the given value.
func (bm *ByteMatrix) Clear(value byte) {
	for y := range bm.Data {
		for x := range bm.Data[y] {
			bm.Data[y][x] = value
		}
	}
}

// QRCode holds one encoded QR code symbol.
type QRCode struct {
	Mode        symbol.Mode
	ECLevel     symbol.ECLevel
	Version     *symbol.Version
	MaskPattern int
	Matrix      *ByteMatrix
}

// ToBitMatrix converts a QRCode's ByteMatrix to a BitMatrix.
func (qr *QRCode) ToBitMatrix() *bitutil.BitMatrix {
	bm := bitutil.NewBitMatrixWithSize(qr.Matrix.Width, qr.Matrix.Height)
	for y := 0; y < qr.Matrix.Height; y++ {
		for x := 0; x < qr.Matrix.Width; x++ {
			if qr.Matrix.Get(x, y) == 1 {
				bm.Set(x, y)
			}
		}
	}
	return bm
}

// String returns a visual representation of the QR code.
func (qr *QRCode) String() string {
	var sb strings.Builder
	for y := 0; y < qr.Matrix.Height; y++ {
		for x := 0; x < qr.Matrix.Width; x++ {
			if qr.Matrix.Get(x, y) == 1 {
				sb.WriteString("##")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
