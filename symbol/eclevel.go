package symbol

import "errors"

// ErrInvalidECLevel is returned for unrecognized error correction levels.
var ErrInvalidECLevel = errors.New("symbol: invalid error correction level")

// ECLevel represents the four QR code error correction levels.
type ECLevel int

const (
	ECLevelL ECLevel = iota // ~7% correction
	ECLevelM                // ~15% correction
	ECLevelQ                // ~25% correction
	ECLevelH                // ~30% correction
)

// Bits returns the 2-bit encoding of this level.
func (ecl ECLevel) Bits() int {
	switch ecl {
	case ECLevelL:
		return 0x01
	case ECLevelM:
		return 0x00
	case ECLevelQ:
		return 0x03
	case ECLevelH:
		return 0x02
	}
	return 0
}

// Ordinal returns the ordinal position (L=0, M=1, Q=2, H=3).
func (ecl ECLevel) Ordinal() int {
	return int(ecl)
}

// String returns the level name.
func (ecl ECLevel) String() string {
	switch ecl {
	case ECLevelL:
		return "L"
	case ECLevelM:
		return "M"
	case ECLevelQ:
		return "Q"
	case ECLevelH:
		return "H"
	}
	return "?"
}

// ECLevelForBits returns the ECLevel for the given 2-bit value.
func ECLevelForBits(bits int) (ECLevel, error) {
	// FOR_BITS = {M, L, H, Q}
	switch bits {
	case 0:
		return ECLevelM, nil
	case 1:
		return ECLevelL, nil
	case 2:
		return ECLevelH, nil
	case 3:
		return ECLevelQ, nil
	}
	return 0, ErrInvalidECLevel
}

// ECLevelForString returns the ECLevel named by s ("L", "M", "Q" or "H").
func ECLevelForString(s string) (ECLevel, error) {
	switch s {
	case "L":
		return ECLevelL, nil
	case "M":
		return ECLevelM, nil
	case "Q":
		return ECLevelQ, nil
	case "H":
		return ECLevelH, nil
	}
	return 0, ErrInvalidECLevel
}
