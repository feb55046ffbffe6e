// Package internal provides the intermediate result types passed between the
// detector, the decoder and the public API.
package internal

// DecoderResult encapsulates the result of decoding a matrix of bits.
type DecoderResult struct {
	RawBytes     []byte
	Text         string
	Data         []byte
	ByteSegments [][]byte
	ECLevel      string

	// Structured append positions are 1-based. SATotal == 0 means the
	// symbol is not part of a structured append sequence.
	SAIndex  int
	SATotal  int
	SAParity int

	ErrorsCorrected int
}

// NewDecoderResult creates a DecoderResult with the basic fields. Data holds
// the concatenated byte mode segments, or nil if the symbol had none.
func NewDecoderResult(rawBytes []byte, text string, data []byte, byteSegments [][]byte, ecLevel string) *DecoderResult {
	return &DecoderResult{
		RawBytes:     rawBytes,
		Text:         text,
		Data:         data,
		ByteSegments: byteSegments,
		ECLevel:      ecLevel,
	}
}

// HasStructuredAppend reports whether this symbol is one chunk of a
// structured append sequence.
func (d *DecoderResult) HasStructuredAppend() bool {
	return d.SATotal > 0
}
