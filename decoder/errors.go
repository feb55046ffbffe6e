// Package decoder extracts the data payload from a sampled QR code module
// grid: format and version reading, unmasking, block de-interleave, error
// correction and bit stream parsing.
package decoder

import "errors"

// ErrFormat indicates the bits did not conform to the QR code specification.
var ErrFormat = errors.New("format error")

// ErrChecksum indicates error correction failed: too many codewords are
// damaged for the Reed-Solomon blocks to repair.
var ErrChecksum = errors.New("checksum error")
