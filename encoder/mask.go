package encoder

import (
	"math"

	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/symbol"
)

const numMaskPatterns = 8

func chooseMaskPattern(bits *bitutil.BitArray, ecLevel symbol.ECLevel, version *symbol.Version, matrix *ByteMatrix) int {
	minPenalty := math.MaxInt32
	bestPattern := 0
	for i := 0; i < numMaskPatterns; i++ {
		buildMatrix(bits, ecLevel, version, i, matrix)
		penalty := calculateMaskPenalty(matrix)
		if penalty < minPenalty {
			minPenalty = penalty
			bestPattern = i
		}
	}
	return bestPattern
}

func calculateMaskPenalty(matrix *ByteMatrix) int {
	return applyMaskPenaltyRule1(matrix) +
		applyMaskPenaltyRule2(matrix) +
		applyMaskPenaltyRule3(matrix) +
		applyMaskPenaltyRule4(matrix)
}

// Mask penalty rule 1: penalize runs of 5+ same-color modules
func applyMaskPenaltyRule1(matrix *ByteMatrix) int {
	return applyMaskPenaltyRule1Internal(matrix, true) + applyMaskPenaltyRule1Internal(matrix, false)
}

func applyMaskPenaltyRule1Internal(matrix *ByteMatrix, isHorizontal bool) int {
	penalty := 0
	iLimit := matrix.Height
	jLimit := matrix.Width
	if !isHorizontal {
		iLimit = matrix.Width
		jLimit = matrix.Height
	}
	for i := 0; i < iLimit; i++ {
		numSameBitCells := 0
		prevBit := byte(255) // invalid
		for j := 0; j < jLimit; j++ {
			var bit byte
			if isHorizontal {
				bit = matrix.Get(j, i)
			} else {
				bit = matrix.Get(i, j)
			}
			if bit == prevBit {
				numSameBitCells++
			} else {
				if numSameBitCells >= 5 {
					penalty += 3 + (numSameBitCells - 5)
				}
				numSameBitCells = 1
				prevBit = bit
			}
		}
		if numSameBitCells >= 5 {
			penalty += 3 + (numSameBitCells - 5)
		}
	}
	return penalty
}

// Mask penalty rule 2: penalize 2x2 blocks of same color
func applyMaskPenaltyRule2(matrix *ByteMatrix) int {
	penalty := 0
	for y := 0; y < matrix.Height-1; y++ {
		for x := 0; x < matrix.Width-1; x++ {
			value := matrix.Get(x, y)
			if value == matrix.Get(x+1, y) && value == matrix.Get(x, y+1) && value == matrix.Get(x+1, y+1) {
				penalty += 3
			}
		}
	}
	return penalty
}

// Mask penalty rule 3: penalize finder-like patterns
func applyMaskPenaltyRule3(matrix *ByteMatrix) int {
	penalty := 0
	for y := 0; y < matrix.Height; y++ {
		for x := 0; x < matrix.Width; x++ {
			// Check horizontal
			if x+6 < matrix.Width {
				if matrix.Get(x, y) == 1 && matrix.Get(x+1, y) == 0 &&
					matrix.Get(x+2, y) == 1 && matrix.Get(x+3, y) == 1 &&
					matrix.Get(x+4, y) == 1 && matrix.Get(x+5, y) == 0 &&
					matrix.Get(x+6, y) == 1 {
					leadingWhite := x+10 < matrix.Width && matrix.Get(x+7, y) == 0 && matrix.Get(x+8, y) == 0 &&
						matrix.Get(x+9, y) == 0 && matrix.Get(x+10, y) == 0
					trailingWhite := x >= 4 && matrix.Get(x-1, y) == 0 && matrix.Get(x-2, y) == 0 &&
						matrix.Get(x-3, y) == 0 && matrix.Get(x-4, y) == 0
					if leadingWhite || trailingWhite {
						penalty += 40
					}
				}
			}
			// Check vertical
			if y+6 < matrix.Height {
				if matrix.Get(x, y) == 1 && matrix.Get(x, y+1) == 0 &&
					matrix.Get(x, y+2) == 1 && matrix.Get(x, y+3) == 1 &&
					matrix.Get(x, y+4) == 1 && matrix.Get(x, y+5) == 0 &&
					matrix.Get(x, y+6) == 1 {
					leadingWhite := y+10 < matrix.Height && matrix.Get(x, y+7) == 0 && matrix.Get(x, y+8) == 0 &&
						matrix.Get(x, y+9) == 0 && matrix.Get(x, y+10) == 0
					trailingWhite := y >= 4 && matrix.Get(x, y-1) == 0 && matrix.Get(x, y-2) == 0 &&
						matrix.Get(x, y-3) == 0 && matrix.Get(x, y-4) == 0
					if leadingWhite || trailingWhite {
						penalty += 40
					}
				}
			}
		}
	}
	return penalty
}

// Mask penalty rule 4: penalize deviation from 50% dark modules
func applyMaskPenaltyRule4(matrix *ByteMatrix) int {
	numDarkCells := 0
	total := matrix.Height * matrix.Width
	for y := 0; y < matrix.Height; y++ {
		for x := 0; x < matrix.Width; x++ {
			if matrix.Get(x, y) == 1 {
				numDarkCells++
			}
		}
	}
	fivePercentVariances := abs(numDarkCells*2-total) * 10 / total
	return fivePercentVariances * 10
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
