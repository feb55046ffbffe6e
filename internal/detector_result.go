package internal

import "github.com/qrstack/qrstack/bitutil"

// DetectorResult encapsulates the result of detecting a QR code in an image.
type DetectorResult struct {
	Bits   *bitutil.BitMatrix
	Points []ResultPoint
}

// ResultPoint represents a point of interest found by the detector.
type ResultPoint struct {
	X, Y float64
}

// NewDetectorResult creates a new DetectorResult.
func NewDetectorResult(bits *bitutil.BitMatrix, points []ResultPoint) *DetectorResult {
	return &DetectorResult{Bits: bits, Points: points}
}
