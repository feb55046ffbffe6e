// Package qrstack encodes and decodes QR codes, including structured append
// sequences that spread one payload across several symbols.
package qrstack

import (
	"time"

	"github.com/qrstack/qrstack/bitutil"
)

// ResultMetadataKey identifies a type of metadata attached to a decode result.
type ResultMetadataKey int

const (
	MetadataByteSegments ResultMetadataKey = iota
	MetadataErrorCorrectionLevel
	MetadataErrorsCorrected
	MetadataStructuredAppendIndex
	MetadataStructuredAppendTotal
	MetadataStructuredAppendParity
)

// ResultPoint is a point of interest in an image, such as the center of a
// finder pattern.
type ResultPoint struct {
	X, Y float64
}

// Result is one decoded symbol, or the combination of a reassembled
// structured append sequence. Text holds the decoded characters; Data holds
// the concatenation of the symbol's byte mode segments, or nil when it had
// none.
type Result struct {
	Text      string
	Data      []byte
	RawBytes  []byte
	Points    []ResultPoint
	Metadata  map[ResultMetadataKey]interface{}
	Timestamp time.Time
}

// NewResult creates a Result with an empty metadata map.
func NewResult(text string, data, rawBytes []byte, points []ResultPoint) *Result {
	return &Result{
		Text:      text,
		Data:      data,
		RawBytes:  rawBytes,
		Points:    points,
		Metadata:  make(map[ResultMetadataKey]interface{}),
		Timestamp: time.Now(),
	}
}

// PutMetadata adds a metadata key/value pair.
func (r *Result) PutMetadata(key ResultMetadataKey, value interface{}) {
	r.Metadata[key] = value
}

// BinaryBitmap is the binary view of an image that decoding operates on.
// The black/white matrix is computed on first use and cached.
type BinaryBitmap struct {
	binarizer Binarizer
	matrix    *bitutil.BitMatrix
}

// NewBinaryBitmap creates a BinaryBitmap over the given Binarizer.
func NewBinaryBitmap(binarizer Binarizer) *BinaryBitmap {
	return &BinaryBitmap{binarizer: binarizer}
}

// Width returns the width of the bitmap.
func (b *BinaryBitmap) Width() int {
	return b.binarizer.Width()
}

// Height returns the height of the bitmap.
func (b *BinaryBitmap) Height() int {
	return b.binarizer.Height()
}

// BlackRow returns a row of black/white values.
func (b *BinaryBitmap) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	return b.binarizer.BlackRow(y, row)
}

// BlackMatrix returns the 2D matrix of black/white values.
func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.matrix != nil {
		return b.matrix, nil
	}
	m, err := b.binarizer.BlackMatrix()
	if err != nil {
		return nil, err
	}
	b.matrix = m
	return m, nil
}

// Crop returns a BinaryBitmap over a subregion of the image, or nil when the
// region does not fit inside it.
func (b *BinaryBitmap) Crop(left, top, width, height int) *BinaryBitmap {
	source := b.binarizer.LuminanceSource().Crop(left, top, width, height)
	if source == nil {
		return nil
	}
	return NewBinaryBitmap(b.binarizer.CreateBinarizer(source))
}
