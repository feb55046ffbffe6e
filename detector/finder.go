package detector

import (
	"math"

	"github.com/qrstack/qrstack/bitutil"
)

const (
	// Fast scan density supports symbols up to roughly version 20; tilted or
	// small patterns are still caught by the cross checks.
	finderMaxModules = 97
	finderMinSkip    = 3
)

// FinderPattern is a candidate finder pattern center with its estimated
// module size and the number of scan rows that confirmed it.
type FinderPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
	Count               int
}

func (fp *FinderPattern) aboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-fp.Y) <= moduleSize && math.Abs(j-fp.X) <= moduleSize {
		moduleSizeDiff := math.Abs(moduleSize - fp.EstimatedModuleSize)
		return moduleSizeDiff <= 1.0 || moduleSizeDiff <= fp.EstimatedModuleSize
	}
	return false
}

func (fp *FinderPattern) combineEstimate(i, j, newModuleSize float64) *FinderPattern {
	combinedCount := fp.Count + 1
	combinedX := (float64(fp.Count)*fp.X + j) / float64(combinedCount)
	combinedY := (float64(fp.Count)*fp.Y + i) / float64(combinedCount)
	combinedModuleSize := (float64(fp.Count)*fp.EstimatedModuleSize + newModuleSize) / float64(combinedCount)
	return &FinderPattern{X: combinedX, Y: combinedY, EstimatedModuleSize: combinedModuleSize, Count: combinedCount}
}

// FinderPatternInfo holds the three finder patterns of one symbol.
type FinderPatternInfo struct {
	BottomLeft, TopLeft, TopRight *FinderPattern
}

// finderPatternFinder accumulates candidate centers over row scans. The
// same scan primitives serve single and multi symbol detection.
type finderPatternFinder struct {
	image           *bitutil.BitMatrix
	possibleCenters []*FinderPattern
}

// find scans for the three finder patterns of a single symbol. tryHarder
// scans every row instead of sampling them.
func (f *finderPatternFinder) find(tryHarder bool) (*FinderPatternInfo, error) {
	height := f.image.Height()
	width := f.image.Width()

	skip := (3 * height) / (4 * finderMaxModules)
	if skip < finderMinSkip {
		skip = finderMinSkip
	}
	if tryHarder {
		skip = 1
	}

	for y := skip - 1; y < height; y += skip {
		stateCount := [5]int{}
		state := 0
		for x := 0; x < width; x++ {
			if f.image.Get(x, y) { // black pixel
				if state&1 == 1 { // was counting white
					state++
				}
				stateCount[state]++
			} else { // white pixel
				if state&1 == 0 { // was counting black
					if state == 4 {
						// A full black-white-black-white-black run ended.
						if foundPatternCross(stateCount) {
							confirmed := f.handlePossibleCenter(stateCount, y, x)
							if confirmed && len(f.possibleCenters) >= 3 {
								if best := selectBestPatterns(f.possibleCenters); best != nil {
									return orderFinderPatterns(best), nil
								}
							}
						}
						doShiftCounts2(&stateCount)
						state = 3
					} else {
						state++
						stateCount[state]++
					}
				} else {
					stateCount[state]++
				}
			}
		}
		if state == 4 && foundPatternCross(stateCount) {
			f.handlePossibleCenter(stateCount, y, width)
		}
	}

	best := selectBestPatterns(f.possibleCenters)
	if best == nil {
		return nil, ErrNotFound
	}
	return orderFinderPatterns(best), nil
}

// foundPatternCross checks a run of five counts against the 1:1:3:1:1
// finder pattern ratio, with a half-module tolerance per element.
func foundPatternCross(stateCount [5]int) bool {
	totalModuleSize := 0
	for i := 0; i < 5; i++ {
		count := stateCount[i]
		if count == 0 {
			return false
		}
		totalModuleSize += count
	}
	if totalModuleSize < 7 {
		return false
	}
	moduleSize := float64(totalModuleSize) / 7.0
	maxVariance := moduleSize / 2.0
	return math.Abs(moduleSize-float64(stateCount[0])) < maxVariance &&
		math.Abs(moduleSize-float64(stateCount[1])) < maxVariance &&
		math.Abs(3*moduleSize-float64(stateCount[2])) < 3*maxVariance &&
		math.Abs(moduleSize-float64(stateCount[3])) < maxVariance &&
		math.Abs(moduleSize-float64(stateCount[4])) < maxVariance
}

// doShiftCounts2 drops the first black-white pair so scanning can resume
// mid-run after a failed candidate.
func doShiftCounts2(stateCount *[5]int) {
	stateCount[0] = stateCount[2]
	stateCount[1] = stateCount[3]
	stateCount[2] = stateCount[4]
	stateCount[3] = 1
	stateCount[4] = 0
}

// handlePossibleCenter cross-checks a horizontal candidate vertically and
// records it. It reports true when the center confirmed an earlier sighting.
func (f *finderPatternFinder) handlePossibleCenter(stateCount [5]int, i, j int) bool {
	total := stateCount[0] + stateCount[1] + stateCount[2] + stateCount[3] + stateCount[4]
	centerJ := float64(j) - float64(stateCount[4]+stateCount[3]) - float64(stateCount[2])/2.0
	centerI := f.crossCheckVertical(i, int(centerJ), stateCount[2], total)
	if math.IsNaN(centerI) {
		return false
	}

	estModuleSize := float64(total) / 7.0
	for idx, center := range f.possibleCenters {
		if center.aboutEquals(estModuleSize, centerI, centerJ) {
			f.possibleCenters[idx] = center.combineEstimate(centerI, centerJ, estModuleSize)
			return true
		}
	}
	f.possibleCenters = append(f.possibleCenters, &FinderPattern{
		X: centerJ, Y: centerI, EstimatedModuleSize: estModuleSize, Count: 1,
	})
	return false
}

func (f *finderPatternFinder) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	maxI := f.image.Height()
	stateCount := [5]int{}

	i := startI
	for i >= 0 && f.image.Get(centerJ, i) {
		stateCount[2]++
		i--
	}
	if i < 0 {
		return math.NaN()
	}
	for i >= 0 && !f.image.Get(centerJ, i) && stateCount[1] <= maxCount {
		stateCount[1]++
		i--
	}
	if i < 0 || stateCount[1] > maxCount {
		return math.NaN()
	}
	for i >= 0 && f.image.Get(centerJ, i) && stateCount[0] <= maxCount {
		stateCount[0]++
		i--
	}
	if stateCount[0] > maxCount {
		return math.NaN()
	}

	i = startI + 1
	for i < maxI && f.image.Get(centerJ, i) {
		stateCount[2]++
		i++
	}
	if i == maxI {
		return math.NaN()
	}
	for i < maxI && !f.image.Get(centerJ, i) && stateCount[3] <= maxCount {
		stateCount[3]++
		i++
	}
	if i == maxI || stateCount[3] > maxCount {
		return math.NaN()
	}
	for i < maxI && f.image.Get(centerJ, i) && stateCount[4] <= maxCount {
		stateCount[4]++
		i++
	}
	if stateCount[4] > maxCount {
		return math.NaN()
	}

	totalNew := stateCount[0] + stateCount[1] + stateCount[2] + stateCount[3] + stateCount[4]
	if 5*abs(totalNew-originalTotal) >= 2*originalTotal {
		return math.NaN()
	}

	if foundPatternCross(stateCount) {
		return float64(i-stateCount[4]-stateCount[3]) - float64(stateCount[2])/2.0
	}
	return math.NaN()
}

// selectBestPatterns picks three mutually plausible centers, preferring
// ones confirmed by multiple scan rows.
func selectBestPatterns(possibleCenters []*FinderPattern) []*FinderPattern {
	if len(possibleCenters) < 3 {
		return nil
	}
	if len(possibleCenters) == 3 {
		return possibleCenters
	}

	totalModuleSize := 0.0
	for _, center := range possibleCenters {
		totalModuleSize += center.EstimatedModuleSize
	}
	average := totalModuleSize / float64(len(possibleCenters))

	var filtered []*FinderPattern
	for _, center := range possibleCenters {
		if math.Abs(center.EstimatedModuleSize-average) <= 0.5*average {
			filtered = append(filtered, center)
		}
	}
	if len(filtered) < 3 {
		filtered = possibleCenters
	}

	var best []*FinderPattern
	for _, c := range filtered {
		if c.Count >= 2 {
			best = append(best, c)
		}
	}
	if len(best) >= 3 {
		return best[:3]
	}
	return filtered[:3]
}

// orderFinderPatterns orders three centers as bottom-left, top-left and
// top-right. The top-left corner sits opposite the longest side, and the
// cross product of the other two around it untangles which is which.
func orderFinderPatterns(patterns []*FinderPattern) *FinderPatternInfo {
	zeroOneDistance := patternDistance(patterns[0], patterns[1])
	oneTwoDistance := patternDistance(patterns[1], patterns[2])
	zeroTwoDistance := patternDistance(patterns[0], patterns[2])

	var pointA, pointB, pointC *FinderPattern
	if oneTwoDistance >= zeroOneDistance && oneTwoDistance >= zeroTwoDistance {
		pointB = patterns[0]
		pointA = patterns[1]
		pointC = patterns[2]
	} else if zeroTwoDistance >= oneTwoDistance && zeroTwoDistance >= zeroOneDistance {
		pointB = patterns[1]
		pointA = patterns[0]
		pointC = patterns[2]
	} else {
		pointB = patterns[2]
		pointA = patterns[0]
		pointC = patterns[1]
	}

	if crossProductZ(pointA, pointB, pointC) < 0.0 {
		pointA, pointC = pointC, pointA
	}

	return &FinderPatternInfo{
		BottomLeft: pointA,
		TopLeft:    pointB,
		TopRight:   pointC,
	}
}

func crossProductZ(pointA, pointB, pointC *FinderPattern) float64 {
	bX := pointB.X
	bY := pointB.Y
	return ((pointC.X - bX) * (pointA.Y - bY)) - ((pointC.Y - bY) * (pointA.X - bX))
}

func patternDistance(a, b *FinderPattern) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
