package qrstack

import (
	"errors"

	"github.com/qrstack/qrstack/decoder"
	"github.com/qrstack/qrstack/detector"
)

// MultiReader detects and decodes every QR code it can find in one image.
type MultiReader struct {
	dec *decoder.Decoder
}

// NewMultiReader creates a MultiReader.
func NewMultiReader() *MultiReader {
	return &MultiReader{dec: decoder.NewDecoder()}
}

// DecodeMultiple decodes all QR codes found in the image. Detected regions
// that fail to decode are dropped. An image with no decodable symbols yields
// an empty slice and no error: a batch of zero results is a normal outcome,
// not a failure.
func (r *MultiReader) DecodeMultiple(image *BinaryBitmap, opts *DecodeOptions) ([]*Result, error) {
	if opts == nil {
		opts = &DecodeOptions{}
	}

	matrix, err := image.BlackMatrix()
	if err != nil {
		// A binarizer that finds no black and white structure at all is
		// the same outcome as a detector that finds no symbols.
		if errors.Is(err, ErrNotFound) {
			return []*Result{}, nil
		}
		return nil, err
	}

	detectorResults, err := detector.DetectMulti(matrix, opts.TryHarder)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []*Result{}, nil
		}
		return nil, err
	}

	results := []*Result{}
	for _, detected := range detectorResults {
		dr, err := r.dec.Decode(detected.Bits, opts.CharacterSet)
		if err != nil {
			continue
		}
		results = append(results, newDecodeResult(dr, detected.Points))
	}
	return results, nil
}
