// Package detector locates QR code symbols in binary images.
package detector

import (
	"errors"
	"math"

	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/internal"
	"github.com/qrstack/qrstack/symbol"
	"github.com/qrstack/qrstack/transform"
)

// ErrNotFound indicates no QR code was found in the image.
var ErrNotFound = errors.New("qr code not found")

// AlignmentPattern is a located alignment pattern center.
type AlignmentPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
}

// Detector finds QR code symbols in a binary image and samples them into
// module grids.
type Detector struct {
	image *bitutil.BitMatrix
}

// NewDetector creates a Detector for the given image.
func NewDetector(image *bitutil.BitMatrix) *Detector {
	return &Detector{image: image}
}

// Detect finds a QR code and returns the sampled module grid along with the
// finder pattern corner points. tryHarder scans every row instead of
// sampling them.
func (d *Detector) Detect(tryHarder bool) (*internal.DetectorResult, error) {
	finder := &finderPatternFinder{image: d.image}
	info, err := finder.find(tryHarder)
	if err != nil {
		return nil, err
	}
	return d.processFinderPatternInfo(info)
}

func (d *Detector) processFinderPatternInfo(info *FinderPatternInfo) (*internal.DetectorResult, error) {
	topLeft := info.TopLeft
	topRight := info.TopRight
	bottomLeft := info.BottomLeft

	moduleSize := d.calculateModuleSize(topLeft, topRight, bottomLeft)
	if moduleSize < 1.0 {
		return nil, ErrNotFound
	}

	dimension, err := computeDimension(topLeft, topRight, bottomLeft, moduleSize)
	if err != nil {
		return nil, err
	}

	provisionalVersion, err := symbol.ProvisionalVersionForDimension(dimension)
	if err != nil {
		return nil, err
	}

	// Versions above 1 carry an alignment pattern near the bottom right
	// corner; finding it sharpens the transform considerably.
	var alignmentPattern *AlignmentPattern
	if len(provisionalVersion.AlignmentPatternCenters) > 0 {
		bottomRightX := topRight.X - topLeft.X + bottomLeft.X
		bottomRightY := topRight.Y - topLeft.Y + bottomLeft.Y

		correctionToTopLeft := 1.0 - 3.0/float64(dimension-7)
		estAlignmentX := int(topLeft.X + correctionToTopLeft*(bottomRightX-topLeft.X))
		estAlignmentY := int(topLeft.Y + correctionToTopLeft*(bottomRightY-topLeft.Y))

		for i := 4; i <= 16; i <<= 1 {
			ap := d.findAlignmentInRegion(moduleSize, estAlignmentX, estAlignmentY, float64(i))
			if ap != nil {
				alignmentPattern = ap
				break
			}
		}
	}

	xform := createTransform(topLeft, topRight, bottomLeft, alignmentPattern, dimension)
	bits, err := transform.SampleGrid(d.image, dimension, dimension, xform)
	if err != nil {
		return nil, ErrNotFound
	}

	var points []internal.ResultPoint
	if alignmentPattern != nil {
		points = []internal.ResultPoint{
			{X: bottomLeft.X, Y: bottomLeft.Y},
			{X: topLeft.X, Y: topLeft.Y},
			{X: topRight.X, Y: topRight.Y},
			{X: alignmentPattern.X, Y: alignmentPattern.Y},
		}
	} else {
		points = []internal.ResultPoint{
			{X: bottomLeft.X, Y: bottomLeft.Y},
			{X: topLeft.X, Y: topLeft.Y},
			{X: topRight.X, Y: topRight.Y},
		}
	}

	return internal.NewDetectorResult(bits, points), nil
}

func computeDimension(topLeft, topRight, bottomLeft *FinderPattern, moduleSize float64) (int, error) {
	tltrDist := patternDistance(topLeft, topRight)
	tlblDist := patternDistance(topLeft, bottomLeft)
	dimension := int(math.Round((tltrDist/moduleSize+tlblDist/moduleSize)/2.0)) + 7
	switch dimension % 4 {
	case 0:
		dimension++
	case 2:
		dimension--
	case 3:
		return 0, ErrNotFound
	}
	return dimension, nil
}

func (d *Detector) calculateModuleSize(topLeft, topRight, bottomLeft *FinderPattern) float64 {
	return (d.calculateModuleSizeOneWay(topLeft, topRight) +
		d.calculateModuleSizeOneWay(topLeft, bottomLeft)) / 2.0
}

// calculateModuleSizeOneWay estimates the module size by tracing the
// black-white-black runs leaving both pattern centers toward each other.
// Each run covers 3.5 modules on each side, 7 in total.
func (d *Detector) calculateModuleSizeOneWay(pattern, otherPattern *FinderPattern) float64 {
	moduleSizeEst1 := d.sizeOfBlackWhiteBlackRunBothWays(
		int(pattern.X), int(pattern.Y), int(otherPattern.X), int(otherPattern.Y))
	moduleSizeEst2 := d.sizeOfBlackWhiteBlackRunBothWays(
		int(otherPattern.X), int(otherPattern.Y), int(pattern.X), int(pattern.Y))
	if math.IsNaN(moduleSizeEst1) {
		return moduleSizeEst2 / 7.0
	}
	if math.IsNaN(moduleSizeEst2) {
		return moduleSizeEst1 / 7.0
	}
	return (moduleSizeEst1 + moduleSizeEst2) / 14.0
}

func (d *Detector) sizeOfBlackWhiteBlackRunBothWays(fromX, fromY, toX, toY int) float64 {
	result := d.sizeOfBlackWhiteBlackRun(fromX, fromY, toX, toY)

	// Mirror the run through the starting point, clipping at image edges.
	scale := 1.0
	otherToX := fromX - (toX - fromX)
	if otherToX < 0 {
		scale = float64(fromX) / float64(fromX-otherToX)
		otherToX = 0
	} else if otherToX >= d.image.Width() {
		scale = float64(d.image.Width()-1-fromX) / float64(otherToX-fromX)
		otherToX = d.image.Width() - 1
	}
	otherToY := int(float64(fromY) - float64(toY-fromY)*scale)

	scale = 1.0
	if otherToY < 0 {
		scale = float64(fromY) / float64(fromY-otherToY)
		otherToY = 0
	} else if otherToY >= d.image.Height() {
		scale = float64(d.image.Height()-1-fromY) / float64(otherToY-fromY)
		otherToY = d.image.Height() - 1
	}
	otherToX = int(float64(fromX) + float64(otherToX-fromX)*scale)

	// The middle pixel is counted twice.
	result += d.sizeOfBlackWhiteBlackRun(fromX, fromY, otherToX, otherToY)
	return result - 1.0
}

// sizeOfBlackWhiteBlackRun walks from one point toward another, Bresenham
// style, and measures the distance covered by a black-white-black run.
func (d *Detector) sizeOfBlackWhiteBlackRun(fromX, fromY, toX, toY int) float64 {
	steep := abs(toY-fromY) > abs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}

	dx := abs(toX - fromX)
	dy := abs(toY - fromY)
	errAcc := -dx / 2
	xstep := 1
	if fromX > toX {
		xstep = -1
	}
	ystep := 1
	if fromY > toY {
		ystep = -1
	}

	state := 0 // in black pixels, looking for white, first or second time
	xLimit := toX + xstep
	y := fromY
	for x := fromX; x != xLimit; x += xstep {
		realX, realY := x, y
		if steep {
			realX, realY = y, x
		}
		if realX < 0 || realX >= d.image.Width() || realY < 0 || realY >= d.image.Height() {
			break
		}

		// The color flipping against the state means a transition.
		if state == 1 == d.image.Get(realX, realY) {
			if state == 2 {
				return distanceInt(x, y, fromX, fromY)
			}
			state++
		}
		errAcc += dy
		if errAcc > 0 {
			if y == toY {
				break
			}
			y += ystep
			errAcc -= dx
		}
	}

	// Found black-white-black with the run still open at the endpoint; count
	// the endpoint itself as the closing transition.
	if state == 2 {
		return distanceInt(toX+xstep, toY, fromX, fromY)
	}
	return math.NaN()
}

func distanceInt(aX, aY, bX, bY int) float64 {
	dx := float64(aX - bX)
	dy := float64(aY - bY)
	return math.Sqrt(dx*dx + dy*dy)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func createTransform(topLeft, topRight, bottomLeft *FinderPattern, alignmentPattern *AlignmentPattern, dimension int) *transform.PerspectiveTransform {
	dimMinusThree := float64(dimension) - 3.5
	var bottomRightX, bottomRightY, sourceBottomRightX, sourceBottomRightY float64

	if alignmentPattern != nil {
		bottomRightX = alignmentPattern.X
		bottomRightY = alignmentPattern.Y
		sourceBottomRightX = dimMinusThree - 3.0
		sourceBottomRightY = sourceBottomRightX
	} else {
		// Estimate the fourth corner from the other three.
		bottomRightX = (topRight.X - topLeft.X) + bottomLeft.X
		bottomRightY = (topRight.Y - topLeft.Y) + bottomLeft.Y
		sourceBottomRightX = dimMinusThree
		sourceBottomRightY = dimMinusThree
	}

	return transform.QuadrilateralToQuadrilateral(
		3.5, 3.5, dimMinusThree, 3.5, sourceBottomRightX, sourceBottomRightY, 3.5, dimMinusThree,
		topLeft.X, topLeft.Y, topRight.X, topRight.Y, bottomRightX, bottomRightY, bottomLeft.X, bottomLeft.Y,
	)
}

func (d *Detector) findAlignmentInRegion(overallEstModuleSize float64, estAlignmentX, estAlignmentY int, allowanceFactor float64) *AlignmentPattern {
	allowance := int(allowanceFactor * overallEstModuleSize)
	alignmentAreaLeftX := max(0, estAlignmentX-allowance)
	alignmentAreaTopY := max(0, estAlignmentY-allowance)
	alignmentAreaRightX := min(d.image.Width()-1, estAlignmentX+allowance)
	alignmentAreaBottomY := min(d.image.Height()-1, estAlignmentY+allowance)

	searchWidth := alignmentAreaRightX - alignmentAreaLeftX
	searchHeight := alignmentAreaBottomY - alignmentAreaTopY
	if searchWidth < 0 || searchHeight < 0 {
		return nil
	}

	return d.findAlignmentPattern(alignmentAreaLeftX, alignmentAreaTopY, searchWidth, searchHeight, overallEstModuleSize)
}

// findAlignmentPattern scans the region for the alignment center dot, a
// black run flanked by white runs of the same width, working outward from
// the middle row. stateCount holds white, black, white runs; the check
// fires on the black pixel that ends the second white run.
func (d *Detector) findAlignmentPattern(startX, startY, width, height int, moduleSize float64) *AlignmentPattern {
	middleY := startY + height/2
	for dy := 0; dy < height; dy++ {
		y := middleY
		if dy%2 == 0 {
			y += (dy + 1) / 2
		} else {
			y -= (dy + 1) / 2
		}
		if y < startY || y >= startY+height {
			continue
		}

		stateCount := [3]int{}
		state := 0
		for x := startX; x < startX+width; x++ {
			if d.image.Get(x, y) {
				if state == 1 {
					stateCount[1]++
				} else if state == 2 {
					if foundAlignmentPattern(stateCount, moduleSize) {
						if ap := d.confirmAlignmentCenter(stateCount, x, y, moduleSize); ap != nil {
							return ap
						}
					}
					stateCount[0] = stateCount[2]
					stateCount[1] = 1
					stateCount[2] = 0
					state = 1
				} else {
					state++
					stateCount[state]++
				}
			} else {
				if state == 1 {
					state = 2
				}
				stateCount[state]++
			}
		}
		if state == 2 && foundAlignmentPattern(stateCount, moduleSize) {
			if ap := d.confirmAlignmentCenter(stateCount, startX+width, y, moduleSize); ap != nil {
				return ap
			}
		}
	}
	return nil
}

func (d *Detector) confirmAlignmentCenter(stateCount [3]int, end, y int, moduleSize float64) *AlignmentPattern {
	centerX := float64(end-stateCount[2]) - float64(stateCount[1])/2.0
	centerY := d.crossCheckVerticalAlignment(int(centerX), y, 2*stateCount[1], moduleSize)
	if math.IsNaN(centerY) {
		return nil
	}
	return &AlignmentPattern{X: centerX, Y: centerY, EstimatedModuleSize: moduleSize}
}

func foundAlignmentPattern(stateCount [3]int, moduleSize float64) bool {
	maxVariance := moduleSize / 2.0
	for _, count := range stateCount {
		if math.Abs(float64(count)-moduleSize) >= maxVariance {
			return false
		}
	}
	return true
}

func (d *Detector) crossCheckVerticalAlignment(centerX, startY, maxCount int, moduleSize float64) float64 {
	maxY := d.image.Height()
	stateCount := [3]int{}

	y := startY
	for y >= 0 && d.image.Get(centerX, y) && stateCount[1] <= maxCount {
		stateCount[1]++
		y--
	}
	if y < 0 || stateCount[1] > maxCount {
		return math.NaN()
	}
	for y >= 0 && !d.image.Get(centerX, y) && stateCount[0] <= maxCount {
		stateCount[0]++
		y--
	}
	if stateCount[0] > maxCount {
		return math.NaN()
	}

	y = startY + 1
	for y < maxY && d.image.Get(centerX, y) && stateCount[1] <= maxCount {
		stateCount[1]++
		y++
	}
	if y == maxY || stateCount[1] > maxCount {
		return math.NaN()
	}
	for y < maxY && !d.image.Get(centerX, y) && stateCount[2] <= maxCount {
		stateCount[2]++
		y++
	}
	if stateCount[2] > maxCount {
		return math.NaN()
	}

	total := stateCount[0] + stateCount[1] + stateCount[2]
	if 5*abs(total-int(moduleSize*3)) >= int(moduleSize*3) {
		return math.NaN()
	}
	if !foundAlignmentPattern(stateCount, moduleSize) {
		return math.NaN()
	}
	return float64(y-stateCount[2]) - float64(stateCount[1])/2.0
}
