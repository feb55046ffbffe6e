package decoder

import (
	"fmt"
	"strings"

	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/charset"
	"github.com/qrstack/qrstack/internal"
	"github.com/qrstack/qrstack/symbol"
)

const alphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// DecodeBitStream decodes corrected data codewords into a DecoderResult.
// characterSet optionally overrides the encoding guess for byte segments
// that carry no ECI header.
func DecodeBitStream(bytes []byte, version *symbol.Version, ecLevel symbol.ECLevel, characterSet string) (*internal.DecoderResult, error) {
	bs := bitutil.NewBitSource(bytes)
	var result strings.Builder
	result.Grow(50)
	var byteSegments [][]byte
	saIndex := 0
	saTotal := 0
	saParity := 0

	var currentCharacterSetECI *charset.ECI

	for {
		var mode symbol.Mode
		if bs.Available() < 4 {
			mode = symbol.ModeTerminator
		} else {
			modeBits, err := bs.ReadBits(4)
			if err != nil {
				return nil, ErrFormat
			}
			mode, err = symbol.ModeForBits(modeBits)
			if err != nil {
				return nil, ErrFormat
			}
		}

		switch mode {
		case symbol.ModeTerminator:
			// done
		case symbol.ModeStructuredAppend:
			if bs.Available() < 16 {
				return nil, ErrFormat
			}
			// Sequence byte packs the 0-based index in the high nibble and
			// total-1 in the low nibble; parity follows.
			seq, _ := bs.ReadBits(8)
			par, _ := bs.ReadBits(8)
			saIndex = (seq >> 4) + 1
			saTotal = (seq & 0x0F) + 1
			saParity = par
		case symbol.ModeECI:
			value, err := parseECIValue(bs)
			if err != nil {
				return nil, err
			}
			eci, eciErr := charset.GetECIByValue(value)
			if eciErr != nil || eci == nil {
				return nil, ErrFormat
			}
			currentCharacterSetECI = eci
		default:
			countBits := mode.CharacterCountBits(version)
			count, err := bs.ReadBits(countBits)
			if err != nil {
				return nil, ErrFormat
			}
			switch mode {
			case symbol.ModeNumeric:
				if err := decodeNumericSegment(bs, &result, count); err != nil {
					return nil, err
				}
			case symbol.ModeAlphanumeric:
				if err := decodeAlphanumericSegment(bs, &result, count); err != nil {
					return nil, err
				}
			case symbol.ModeByte:
				seg, err := decodeByteSegment(bs, &result, count, currentCharacterSetECI, characterSet)
				if err != nil {
					return nil, err
				}
				byteSegments = append(byteSegments, seg)
			case symbol.ModeKanji:
				if err := decodeKanjiSegment(bs, &result, count); err != nil {
					return nil, err
				}
			default:
				return nil, ErrFormat
			}
		}

		if mode == symbol.ModeTerminator {
			break
		}
	}

	var data []byte
	for _, seg := range byteSegments {
		data = append(data, seg...)
	}

	decoderResult := internal.NewDecoderResult(bytes, result.String(), data, byteSegments, ecLevel.String())
	decoderResult.SAIndex = saIndex
	decoderResult.SATotal = saTotal
	decoderResult.SAParity = saParity
	return decoderResult, nil
}

func decodeKanjiSegment(bs *bitutil.BitSource, result *strings.Builder, count int) error {
	if count*13 > bs.Available() {
		return ErrFormat
	}
	buf := make([]byte, 2*count)
	offset := 0
	for count > 0 {
		twoBytes, _ := bs.ReadBits(13)
		assembled := ((twoBytes / 0x0C0) << 8) | (twoBytes % 0x0C0)
		if assembled < 0x01F00 {
			assembled += 0x08140
		} else {
			assembled += 0x0C140
		}
		buf[offset] = byte(assembled >> 8)
		buf[offset+1] = byte(assembled)
		offset += 2
		count--
	}
	result.WriteString(charset.ECISJIS.Decode(buf[:offset]))
	return nil
}

func decodeByteSegment(bs *bitutil.BitSource, result *strings.Builder, count int,
	currentECI *charset.ECI, characterSet string) ([]byte, error) {
	if 8*count > bs.Available() {
		return nil, ErrFormat
	}
	readBytes := make([]byte, count)
	for i := 0; i < count; i++ {
		val, _ := bs.ReadBits(8)
		readBytes[i] = byte(val)
	}

	if currentECI != nil {
		result.WriteString(currentECI.Decode(readBytes))
	} else {
		encoding := charset.GuessEncoding(readBytes, characterSet)
		result.WriteString(charset.DecodeBytes(readBytes, encoding))
	}
	return readBytes, nil
}

func toAlphaNumericChar(value int) (byte, error) {
	if value >= len(alphanumericChars) {
		return 0, ErrFormat
	}
	return alphanumericChars[value], nil
}

func decodeAlphanumericSegment(bs *bitutil.BitSource, result *strings.Builder, count int) error {
	for count > 1 {
		if bs.Available() < 11 {
			return ErrFormat
		}
		nextTwo, _ := bs.ReadBits(11)
		c1, err := toAlphaNumericChar(nextTwo / 45)
		if err != nil {
			return err
		}
		c2, err := toAlphaNumericChar(nextTwo % 45)
		if err != nil {
			return err
		}
		result.WriteByte(c1)
		result.WriteByte(c2)
		count -= 2
	}
	if count == 1 {
		if bs.Available() < 6 {
			return ErrFormat
		}
		val, _ := bs.ReadBits(6)
		c, err := toAlphaNumericChar(val)
		if err != nil {
			return err
		}
		result.WriteByte(c)
	}
	return nil
}

func decodeNumericSegment(bs *bitutil.BitSource, result *strings.Builder, count int) error {
	for count >= 3 {
		if bs.Available() < 10 {
			return ErrFormat
		}
		threeDigits, _ := bs.ReadBits(10)
		if threeDigits >= 1000 {
			return ErrFormat
		}
		result.WriteString(fmt.Sprintf("%03d", threeDigits))
		count -= 3
	}
	if count == 2 {
		if bs.Available() < 7 {
			return ErrFormat
		}
		twoDigits, _ := bs.ReadBits(7)
		if twoDigits >= 100 {
			return ErrFormat
		}
		result.WriteString(fmt.Sprintf("%02d", twoDigits))
	} else if count == 1 {
		if bs.Available() < 4 {
			return ErrFormat
		}
		digit, _ := bs.ReadBits(4)
		if digit >= 10 {
			return ErrFormat
		}
		result.WriteString(fmt.Sprintf("%d", digit))
	}
	return nil
}

func parseECIValue(bs *bitutil.BitSource) (int, error) {
	firstByte, err := bs.ReadBits(8)
	if err != nil {
		return 0, ErrFormat
	}
	if (firstByte & 0x80) == 0 {
		return firstByte & 0x7F, nil
	}
	if (firstByte & 0xC0) == 0x80 {
		secondByte, _ := bs.ReadBits(8)
		return ((firstByte & 0x3F) << 8) | secondByte, nil
	}
	if (firstByte & 0xE0) == 0xC0 {
		secondThirdBytes, _ := bs.ReadBits(16)
		return ((firstByte & 0x1F) << 16) | secondThirdBytes, nil
	}
	return 0, ErrFormat
}
