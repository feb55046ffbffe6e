package qrstack

import (
	"fmt"

	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/charset"
	"github.com/qrstack/qrstack/encoder"
	"github.com/qrstack/qrstack/split"
	"github.com/qrstack/qrstack/symbol"
)

// EncodeOptions configures QR encoding behavior.
type EncodeOptions struct {
	// ErrorCorrection names the error correction level: "L", "M", "Q" or
	// "H". Empty selects L.
	ErrorCorrection string

	// CharacterSet is the character set text payloads are encoded in. Empty
	// selects ISO-8859-1, the default byte mode encoding; anything else is
	// announced with an ECI header.
	CharacterSet string

	// Margin overrides the quiet zone width in modules around a single
	// symbol.
	Margin *int

	// Version forces a specific version (1-40) on a single symbol instead of
	// the smallest one that fits.
	Version int

	// MaskPattern forces a specific mask pattern (0-7) on a single symbol
	// instead of the one the penalty score selects.
	MaskPattern *int
}

// Writer encodes QR symbols.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Encode encodes contents into one QR symbol, rendered into a bitmap of at
// least width by height pixels.
func (w *Writer) Encode(contents string, width, height int, opts *EncodeOptions) (*bitutil.BitMatrix, error) {
	if contents == "" {
		return nil, fmt.Errorf("found empty contents")
	}
	code, quietZone, err := w.encodeSingle(contents, nil, width, height, opts)
	if err != nil {
		return nil, err
	}
	return encoder.RenderResult(code, width, height, quietZone), nil
}

// EncodeBinary encodes data as one byte mode QR symbol, rendered into a
// bitmap of at least width by height pixels. The bytes pass through without
// character set conversion.
func (w *Writer) EncodeBinary(data []byte, width, height int, opts *EncodeOptions) (*bitutil.BitMatrix, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("found empty contents")
	}
	code, quietZone, err := w.encodeSingle("", data, width, height, opts)
	if err != nil {
		return nil, err
	}
	return encoder.RenderResult(code, width, height, quietZone), nil
}

// encodeSingle validates the shared single-symbol arguments and encodes
// either contents or data, whichever the caller supplied.
func (w *Writer) encodeSingle(contents string, data []byte, width, height int, opts *EncodeOptions) (*encoder.QRCode, int, error) {
	if width < 0 || height < 0 {
		return nil, 0, fmt.Errorf("requested dimensions are too small: %dx%d", width, height)
	}

	ecLevel, err := ecLevelFromOptions(opts)
	if err != nil {
		return nil, 0, err
	}

	quietZone := encoder.DefaultQuietZone
	version := 0
	maskPattern := -1
	if opts != nil {
		if opts.Margin != nil {
			quietZone = *opts.Margin
		}
		if opts.Version > 0 {
			version = opts.Version
		}
		if opts.MaskPattern != nil {
			if *opts.MaskPattern < 0 || *opts.MaskPattern > 7 {
				return nil, 0, fmt.Errorf("invalid mask pattern: %d", *opts.MaskPattern)
			}
			maskPattern = *opts.MaskPattern
		}
	}

	var code *encoder.QRCode
	if data != nil {
		code, err = encoder.EncodeBytes(data, ecLevel, version, maskPattern, nil, encoder.StructuredAppend{})
	} else {
		var eci *charset.ECI
		eci, err = charsetFromOptions(opts)
		if err != nil {
			return nil, 0, err
		}
		code, err = encoder.Encode(contents, ecLevel, version, maskPattern, eci)
	}
	if err != nil {
		return nil, 0, err
	}
	return code, quietZone, nil
}

// EncodeStructuredAppend splits contents across as many symbols of the given
// version as the payload needs and encodes each with a structured append
// header, so a reader can reassemble the original text from the batch. Every
// symbol renders at dotsPerModule pixels per module.
//
// The version is not auto-sized: when the payload needs more than sixteen
// chunks at this version, the headers wrap and the set cannot be reassembled.
// Callers choose a version large enough for their payloads.
func (w *Writer) EncodeStructuredAppend(contents string, version, dotsPerModule int, opts *EncodeOptions) ([]*bitutil.BitMatrix, error) {
	if contents == "" {
		return nil, fmt.Errorf("found empty contents")
	}
	if dotsPerModule < 1 {
		return nil, fmt.Errorf("requested dots-per-module must be positive: %d", dotsPerModule)
	}
	ecLevel, err := ecLevelFromOptions(opts)
	if err != nil {
		return nil, err
	}
	eci, err := charsetFromOptions(opts)
	if err != nil {
		return nil, err
	}

	plan, err := symbol.PlanStructuredAppend(version, ecLevel, eci != nil)
	if err != nil {
		return nil, err
	}

	payloadCharset := eci
	if payloadCharset == nil {
		payloadCharset = charset.ECIISO8859_1
	}
	parity := split.Parity(payloadCharset.Encode(contents))
	chunks := split.Text(contents, eci, plan.ChunkCapacity)

	return w.encodeChunks(chunks, ecLevel, version, eci, parity, dotsPerModule)
}

// EncodeStructuredAppendBinary splits data across symbols of the given
// version like EncodeStructuredAppend, carrying the payload as raw bytes.
func (w *Writer) EncodeStructuredAppendBinary(data []byte, version, dotsPerModule int, opts *EncodeOptions) ([]*bitutil.BitMatrix, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("found empty contents")
	}
	if dotsPerModule < 1 {
		return nil, fmt.Errorf("requested dots-per-module must be positive: %d", dotsPerModule)
	}
	ecLevel, err := ecLevelFromOptions(opts)
	if err != nil {
		return nil, err
	}

	// The chunk budget reserves ECI header room on this path even though no
	// character set announcement is emitted.
	plan, err := symbol.PlanStructuredAppend(version, ecLevel, true)
	if err != nil {
		return nil, err
	}

	parity := split.Parity(data)
	chunks := split.Binary(data, plan.ChunkCapacity)

	return w.encodeChunks(chunks, ecLevel, version, nil, parity, dotsPerModule)
}

func (w *Writer) encodeChunks(chunks []split.Chunk, ecLevel symbol.ECLevel, version int,
	eci *charset.ECI, parity byte, dotsPerModule int) ([]*bitutil.BitMatrix, error) {

	matrices := make([]*bitutil.BitMatrix, 0, len(chunks))
	for _, chunk := range chunks {
		sa := encoder.StructuredAppend{
			Index:  chunk.Index,
			Total:  len(chunks),
			Parity: int(parity),
		}
		code, err := encoder.EncodeBytes(chunk.Data, ecLevel, version, -1, eci, sa)
		if err != nil {
			return nil, err
		}
		matrices = append(matrices, encoder.RenderDotsPerModule(code, dotsPerModule))
	}
	return matrices, nil
}

func ecLevelFromOptions(opts *EncodeOptions) (symbol.ECLevel, error) {
	if opts == nil || opts.ErrorCorrection == "" {
		return symbol.ECLevelL, nil
	}
	level, err := symbol.ECLevelForString(opts.ErrorCorrection)
	if err != nil {
		return 0, fmt.Errorf("unknown error correction level: %s", opts.ErrorCorrection)
	}
	return level, nil
}

// charsetFromOptions resolves the payload character set. The default
// encoding returns nil: byte mode carries it implicitly, with no ECI header.
func charsetFromOptions(opts *EncodeOptions) (*charset.ECI, error) {
	if opts == nil || opts.CharacterSet == "" {
		return nil, nil
	}
	eci := charset.GetECIByName(opts.CharacterSet)
	if eci == nil {
		return nil, fmt.Errorf("unknown character set: %s", opts.CharacterSet)
	}
	if eci == charset.ECIISO8859_1 {
		return nil, nil
	}
	return eci, nil
}

// Encode encodes contents into one QR symbol.
func Encode(contents string, width, height int, opts *EncodeOptions) (*bitutil.BitMatrix, error) {
	return NewWriter().Encode(contents, width, height, opts)
}
