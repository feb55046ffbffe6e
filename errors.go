package qrstack

import (
	"github.com/qrstack/qrstack/decoder"
	"github.com/qrstack/qrstack/detector"
	"github.com/qrstack/qrstack/encoder"
)

// The sentinel errors of the underlying packages, re-exported so callers can
// match every failure class at this level with errors.Is.
var (
	// ErrNotFound is returned when no QR code is found in the image.
	ErrNotFound = detector.ErrNotFound

	// ErrChecksum is returned when error correction fails on a located symbol.
	ErrChecksum = decoder.ErrChecksum

	// ErrFormat is returned when a located symbol cannot be parsed.
	ErrFormat = decoder.ErrFormat

	// ErrWriter is returned when contents cannot be encoded.
	ErrWriter = encoder.ErrWriter
)
