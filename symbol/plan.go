package symbol

import (
	"errors"
	"fmt"
)

// ErrCapacity is returned when a version and EC level combination leaves no
// room for payload bytes in a structured append chunk.
var ErrCapacity = errors.New("symbol: no structured append capacity at this version and level")

// Plan holds the codeword budget for one structured append symbol: the
// version's totals and the payload bytes one chunk may carry after the
// header overhead is reserved.
type Plan struct {
	Version        *Version
	Level          ECLevel
	Mode           Mode
	TotalCodewords int
	ECCodewords    int
	NumBlocks      int
	DataCodewords  int
	// ChunkCapacity is the payload byte budget per chunk: data codewords
	// minus the bytes consumed by the structured append header, the ECI
	// header when one applies, the mode indicator and the count field.
	ChunkCapacity int
}

// PlanStructuredAppend computes the chunk budget for encoding a structured
// append set at the given version and level. Structured append always uses
// byte mode. withECI reserves room for an ECI header: true for any
// non-default character set, and always true on the raw-bytes path.
//
// The version is explicit: symbols of one set share a size class chosen by
// the caller, and planning never escalates to a larger version on its own.
func PlanStructuredAppend(versionNumber int, level ECLevel, withECI bool) (*Plan, error) {
	version, err := VersionForNumber(versionNumber)
	if err != nil {
		return nil, err
	}
	ecBlocks := version.ECBlocksForLevel(level)
	ecCodewords := ecBlocks.TotalECCodewords()
	dataCodewords := version.TotalCodewords - ecCodewords

	eciBits := 0
	if withECI {
		eciBits = 4 + 16
	}
	// 4 structured append mode bits, 16 header bits, the byte mode
	// indicator and its count field, rounded up to whole bytes.
	overhead := (4 + 16 + eciBits + 4 + ModeByte.CharacterCountBits(version) + 7) / 8
	capacity := dataCodewords - overhead
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: version %d level %s", ErrCapacity, versionNumber, level)
	}

	return &Plan{
		Version:        version,
		Level:          level,
		Mode:           ModeByte,
		TotalCodewords: version.TotalCodewords,
		ECCodewords:    ecCodewords,
		NumBlocks:      ecBlocks.NumBlocks(),
		DataCodewords:  dataCodewords,
		ChunkCapacity:  capacity,
	}, nil
}
