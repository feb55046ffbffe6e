package encoder

import (
	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/symbol"
)

// buildMatrix builds the QR code matrix with all patterns and data.
func buildMatrix(dataBits *bitutil.BitArray, ecLevel symbol.ECLevel,
	version *symbol.Version, maskPattern int, matrix *ByteMatrix) {

	matrix.Clear(0xFF) // empty marker

	embedBasicPatterns(version, matrix)
	embedTypeInfo(ecLevel, maskPattern, matrix)
	maybeEmbedVersionInfo(version, matrix)
	embedDataBits(dataBits, maskPattern, matrix)
}

// Position detection pattern (7x7 finder pattern)
var positionDetectionPattern = [7][7]byte{
	{1, 1, 1, 1, 1, 1, 1},
	{1, 0, 0, 0, 0, 0, 1},
	{1, 0, 1, 1, 1, 0, 1},
	{1, 0, 1, 1, 1, 0, 1},
	{1, 0, 1, 1, 1, 0, 1},
	{1, 0, 0, 0, 0, 0, 1},
	{1, 1, 1, 1, 1, 1, 1},
}

// Position adjustment pattern (5x5 alignment pattern)
var positionAdjustmentPattern = [5][5]byte{
	{1, 1, 1, 1, 1},
	{1, 0, 0, 0, 1},
	{1, 0, 1, 0, 1},
	{1, 0, 0, 0, 1},
	{1, 1, 1, 1, 1},
}

func embedBasicPatterns(version *symbol.Version, matrix *ByteMatrix) {
	// Position detection patterns and separators
	embedPositionDetectionPattern(0, 0, matrix)
	embedPositionDetectionPattern(matrix.Width-7, 0, matrix)
	embedPositionDetectionPattern(0, matrix.Height-7, matrix)

	// Horizontal separators
	embedHorizontalSeparator(0, 7, matrix)
	embedHorizontalSeparator(matrix.Width-8, 7, matrix)
	embedHorizontalSeparator(0, matrix.Height-8, matrix)

	// Vertical separators
	embedVerticalSeparator(7, 0, matrix)
	embedVerticalSeparator(matrix.Width-8, 0, matrix)
	embedVerticalSeparator(7, matrix.Height-7, matrix)

	// Alignment patterns
	if version.Number >= 2 {
		embedPositionAdjustmentPatterns(version, matrix)
	}

	// Timing patterns
	embedTimingPatterns(matrix)

	// Dark module
	matrix.Set(8, matrix.Height-8, 1)
}

func embedPositionDetectionPattern(xStart, yStart int, matrix *ByteMatrix) {
	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			matrix.Set(xStart+x, yStart+y, positionDetectionPattern[y][x])
		}
	}
}

func embedHorizontalSeparator(xStart, yStart int, matrix *ByteMatrix) {
	for x := 0; x < 8; x++ {
		if xStart+x < matrix.Width {
			matrix.Set(xStart+x, yStart, 0)
		}
	}
}

func embedVerticalSeparator(xStart, yStart int, matrix *ByteMatrix) {
	for y := 0; y < 7; y++ {
		if yStart+y < matrix.Height {
			matrix.Set(xStart, yStart+y, 0)
		}
	}
}

func embedPositionAdjustmentPatterns(version *symbol.Version, matrix *ByteMatrix) {
	centers := version.AlignmentPatternCenters
	for _, cy := range centers {
		for _, cx := range centers {
			// Only embed if the center cell is empty (not already occupied by a finder pattern)
			if matrix.Get(cx, cy) != 0xFF {
				continue
			}
			for y := 0; y < 5; y++ {
				for x := 0; x < 5; x++ {
					matrix.Set(cx-2+x, cy-2+y, positionAdjustmentPattern[y][x])
				}
			}
		}
	}
}

func embedTimingPatterns(matrix *ByteMatrix) {
	for i := 8; i < matrix.Width-8; i++ {
		bit := byte((i + 1) % 2)
		if matrix.Get(i, 6) == 0xFF {
			matrix.Set(i, 6, bit)
		}
		if matrix.Get(6, i) == 0xFF {
			matrix.Set(6, i, bit)
		}
	}
}

const (
	typeInfoPoly        = 0x537
	typeInfoMaskPattern = 0x5412
	versionInfoPoly     = 0x1f25
)

func embedTypeInfo(ecLevel symbol.ECLevel, maskPattern int, matrix *ByteMatrix) {
	typeInfo := (ecLevel.Bits() << 3) | maskPattern
	bchCode := calculateBCHCode(typeInfo, typeInfoPoly)
	typeInfoBits := (typeInfo << 10) | bchCode
	typeInfoBits ^= typeInfoMaskPattern

	// Type info coordinates around top-left
	typeInfoCoordinates := [][2]int{
		{8, 0}, {8, 1}, {8, 2}, {8, 3}, {8, 4}, {8, 5}, {8, 7}, {8, 8},
		{7, 8}, {5, 8}, {4, 8}, {3, 8}, {2, 8}, {1, 8}, {0, 8},
	}

	for i := 0; i < 15; i++ {
		bit := byte((typeInfoBits >> uint(i)) & 1)
		coord := typeInfoCoordinates[i]
		matrix.Set(coord[0], coord[1], bit)

		// Also place in the second location
		if i < 8 {
			matrix.Set(matrix.Width-1-i, 8, bit)
		} else {
			matrix.Set(8, matrix.Height-7+(i-8), bit)
		}
	}
}

func maybeEmbedVersionInfo(version *symbol.Version, matrix *ByteMatrix) {
	if version.Number < 7 {
		return
	}
	versionInfoBits := calculateBCHCode(version.Number, versionInfoPoly)
	versionInfoBits = (version.Number << 12) | versionInfoBits

	bitIndex := 0
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			bit := byte((versionInfoBits >> uint(bitIndex)) & 1)
			bitIndex++
			// Bottom-left
			matrix.Set(i, matrix.Height-11+j, bit)
			// Top-right
			matrix.Set(matrix.Width-11+j, i, bit)
		}
	}
}

func embedDataBits(dataBits *bitutil.BitArray, maskPattern int, matrix *ByteMatrix) {
	bitIndex := 0
	dimension := matrix.Height

	for j := dimension - 1; j > 0; j -= 2 {
		if j == 6 {
			j-- // skip timing column
		}
		for count := 0; count < dimension; count++ {
			upward := (((dimension - 1 - j) / 2) & 1) == 0
			i := count
			if upward {
				i = dimension - 1 - count
			}
			for col := 0; col < 2; col++ {
				x := j - col
				if matrix.Get(x, i) == 0xFF { // empty cell
					var bit bool
					if bitIndex < dataBits.Size() {
						bit = dataBits.Get(bitIndex)
						bitIndex++
					}
					// Apply mask
					if symbol.DataMasks[maskPattern](i, x) {
						bit = !bit
					}
					if bit {
						matrix.Set(x, i, 1)
					} else {
						matrix.Set(x, i, 0)
					}
				}
			}
		}
	}
}

func calculateBCHCode(value, poly int) int {
	msbSetInPoly := findMSBSet(poly)
	value <<= uint(msbSetInPoly - 1)
	for findMSBSet(value) >= msbSetInPoly {
		value ^= poly << uint(findMSBSet(value)-msbSetInPoly)
	}
	return value
}

func findMSBSet(value int) int {
	count := 0
	for value != 0 {
		value >>= 1
		count++
	}
	return count
}
