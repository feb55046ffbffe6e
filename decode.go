package qrstack

import (
	"math"

	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/decoder"
	"github.com/qrstack/qrstack/detector"
	"github.com/qrstack/qrstack/internal"
)

// DecodeOptions configures QR decoding behavior.
type DecodeOptions struct {
	// PureBarcode hints that the image contains only the barcode with
	// minimal border and no rotation, so the grid can be sampled directly
	// without running the detector.
	PureBarcode bool

	// TryHarder enables spending more time looking for symbols.
	TryHarder bool

	// CharacterSet overrides character set detection for byte mode segments
	// that carry no ECI header.
	CharacterSet string

	// AlsoInverted enables retrying with black and white flipped.
	AlsoInverted bool
}

// Reader decodes QR codes from binary images.
type Reader struct {
	dec *decoder.Decoder
}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{dec: decoder.NewDecoder()}
}

// Decode locates and decodes a QR code in the image.
func (r *Reader) Decode(image *BinaryBitmap, opts *DecodeOptions) (*Result, error) {
	if opts == nil {
		opts = &DecodeOptions{}
	}
	result, err := r.decode(image, opts)
	if err != nil && opts.AlsoInverted {
		// Flip the cached black matrix in place and rescan.
		if matrix, merr := image.BlackMatrix(); merr == nil {
			matrix.FlipAll()
			result, err = r.decode(image, opts)
		}
	}
	return result, err
}

func (r *Reader) decode(image *BinaryBitmap, opts *DecodeOptions) (*Result, error) {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	if opts.PureBarcode {
		bits, err := extractPureBits(matrix)
		if err != nil {
			return nil, err
		}
		dr, err := r.dec.Decode(bits, opts.CharacterSet)
		if err != nil {
			return nil, err
		}
		return newDecodeResult(dr, nil), nil
	}

	det := detector.NewDetector(matrix)
	detected, err := det.Detect(opts.TryHarder)
	if err != nil {
		return nil, err
	}
	dr, err := r.dec.Decode(detected.Bits, opts.CharacterSet)
	if err != nil {
		return nil, err
	}
	return newDecodeResult(dr, detected.Points), nil
}

// Decode locates and decodes a single QR code in the image.
func Decode(image *BinaryBitmap, opts *DecodeOptions) (*Result, error) {
	return NewReader().Decode(image, opts)
}

// newDecodeResult builds the public result for one decoded symbol.
func newDecodeResult(dr *internal.DecoderResult, points []internal.ResultPoint) *Result {
	var resultPoints []ResultPoint
	if len(points) > 0 {
		resultPoints = make([]ResultPoint, len(points))
		for i, p := range points {
			resultPoints[i] = ResultPoint{X: p.X, Y: p.Y}
		}
	}

	result := NewResult(dr.Text, dr.Data, dr.RawBytes, resultPoints)
	if dr.ByteSegments != nil {
		result.PutMetadata(MetadataByteSegments, dr.ByteSegments)
	}
	if dr.ECLevel != "" {
		result.PutMetadata(MetadataErrorCorrectionLevel, dr.ECLevel)
	}
	if dr.HasStructuredAppend() {
		result.PutMetadata(MetadataStructuredAppendIndex, dr.SAIndex)
		result.PutMetadata(MetadataStructuredAppendTotal, dr.SATotal)
		result.PutMetadata(MetadataStructuredAppendParity, dr.SAParity)
	}
	result.PutMetadata(MetadataErrorsCorrected, dr.ErrorsCorrected)
	return result
}

// extractPureBits samples a QR code from a "pure" image, one that contains
// only the unrotated, unskewed barcode with some white border.
func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	leftTopBlack := image.TopLeftOnBit()
	rightBottomBlack := image.BottomRightOnBit()
	if leftTopBlack == nil || rightBottomBlack == nil {
		return nil, ErrNotFound
	}

	moduleSize, err := pureModuleSize(leftTopBlack, image)
	if err != nil {
		return nil, err
	}

	top := leftTopBlack[1]
	bottom := rightBottomBlack[1]
	left := leftTopBlack[0]
	right := rightBottomBlack[0]

	if left >= right || top >= bottom {
		return nil, ErrNotFound
	}

	if bottom-top != right-left {
		// Special case: a rectangular image cuts the symbol off on the
		// right. Assume it is square anyway.
		right = left + (bottom - top)
		if right >= image.Width() {
			return nil, ErrNotFound
		}
	}

	matrixWidth := int(math.Round(float64(right-left+1) / moduleSize))
	matrixHeight := int(math.Round(float64(bottom-top+1) / moduleSize))
	if matrixWidth <= 0 || matrixHeight <= 0 {
		return nil, ErrNotFound
	}
	if matrixHeight != matrixWidth {
		return nil, ErrNotFound
	}

	// Sample from the center of each module, pulling the grid back inside
	// the symbol when rounding pushed it past the last module.
	nudge := int(moduleSize / 2.0)
	top += nudge
	left += nudge

	nudgedTooFarRight := left + int(float64(matrixWidth-1)*moduleSize) - right
	if nudgedTooFarRight > 0 {
		if nudgedTooFarRight > nudge {
			return nil, ErrNotFound
		}
		left -= nudgedTooFarRight
	}
	nudgedTooFarDown := top + int(float64(matrixHeight-1)*moduleSize) - bottom
	if nudgedTooFarDown > 0 {
		if nudgedTooFarDown > nudge {
			return nil, ErrNotFound
		}
		top -= nudgedTooFarDown
	}

	bits := bitutil.NewBitMatrix(matrixWidth)
	for y := 0; y < matrixHeight; y++ {
		iOffset := top + int(float64(y)*moduleSize)
		for x := 0; x < matrixWidth; x++ {
			if image.Get(left+int(float64(x)*moduleSize), iOffset) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// pureModuleSize estimates the module size by walking the diagonal of the
// top left finder pattern, which crosses five black/white transitions over
// seven modules.
func pureModuleSize(leftTopBlack []int, image *bitutil.BitMatrix) (float64, error) {
	height := image.Height()
	width := image.Width()
	x := leftTopBlack[0]
	y := leftTopBlack[1]
	inBlack := true
	transitions := 0
	for x < width && y < height {
		if inBlack != image.Get(x, y) {
			transitions++
			if transitions == 5 {
				break
			}
			inBlack = !inBlack
		}
		x++
		y++
	}
	if x == width || y == height {
		return 0, ErrNotFound
	}
	return float64(x-leftTopBlack[0]) / 7.0, nil
}
