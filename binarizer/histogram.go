// Package binarizer converts grayscale luminance data into the black and
// white bit matrices the detector works on.
package binarizer

import (
	qrstack "github.com/qrstack/qrstack"
	"github.com/qrstack/qrstack/bitutil"
)

const (
	luminanceBits    = 5
	luminanceShift   = 8 - luminanceBits
	luminanceBuckets = 1 << luminanceBits
)

// GlobalHistogram thresholds the whole image against a single black point
// estimated from a luminance histogram. It is cheap and works well on clean
// renders; use Hybrid for photographs with uneven lighting.
type GlobalHistogram struct {
	source     qrstack.LuminanceSource
	luminances []byte
	buckets    [luminanceBuckets]int
}

// NewGlobalHistogram creates a new GlobalHistogram binarizer.
func NewGlobalHistogram(source qrstack.LuminanceSource) *GlobalHistogram {
	return &GlobalHistogram{source: source}
}

// LuminanceSource returns the underlying source.
func (g *GlobalHistogram) LuminanceSource() qrstack.LuminanceSource {
	return g.source
}

// CreateBinarizer creates a fresh GlobalHistogram over another source, used
// when cropping a bitmap down to a region.
func (g *GlobalHistogram) CreateBinarizer(source qrstack.LuminanceSource) qrstack.Binarizer {
	return NewGlobalHistogram(source)
}

// Width returns the image width.
func (g *GlobalHistogram) Width() int { return g.source.Width() }

// Height returns the image height.
func (g *GlobalHistogram) Height() int { return g.source.Height() }

// BlackRow binarizes a single row against a black point estimated from that
// row alone, with a sharpening pass to pull edges apart.
func (g *GlobalHistogram) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	width := g.source.Width()
	if row == nil || row.Size() < width {
		row = bitutil.NewBitArray(width)
	} else {
		row.Clear()
	}

	g.initArrays(width)
	localLuminances := g.source.Row(y, g.luminances)
	for x := 0; x < width; x++ {
		g.buckets[int(localLuminances[x]&0xff)>>luminanceShift]++
	}
	blackPoint, err := estimateBlackPoint(g.buckets[:])
	if err != nil {
		return nil, err
	}

	if width < 3 {
		for x := 0; x < width; x++ {
			if int(localLuminances[x]&0xff) < blackPoint {
				row.Set(x)
			}
		}
	} else {
		left := int(localLuminances[0] & 0xff)
		center := int(localLuminances[1] & 0xff)
		for x := 1; x < width-1; x++ {
			right := int(localLuminances[x+1] & 0xff)
			if ((center*4)-left-right)/2 < blackPoint {
				row.Set(x)
			}
			left = center
			center = right
		}
	}
	return row, nil
}

// BlackMatrix binarizes the full image. The black point is estimated from
// the middle three fifths of four interior rows rather than the whole image,
// which keeps quiet zone borders from dominating the histogram.
func (g *GlobalHistogram) BlackMatrix() (*bitutil.BitMatrix, error) {
	width := g.source.Width()
	height := g.source.Height()
	matrix := bitutil.NewBitMatrixWithSize(width, height)

	g.initArrays(width)
	for y := 1; y < 5; y++ {
		row := height * y / 5
		localLuminances := g.source.Row(row, g.luminances)
		right := (width * 4) / 5
		for x := width / 5; x < right; x++ {
			g.buckets[int(localLuminances[x]&0xff)>>luminanceShift]++
		}
	}
	blackPoint, err := estimateBlackPoint(g.buckets[:])
	if err != nil {
		return nil, err
	}

	localLuminances := g.source.Matrix()
	for y := 0; y < height; y++ {
		offset := y * width
		for x := 0; x < width; x++ {
			pixel := int(localLuminances[offset+x] & 0xff)
			if pixel < blackPoint {
				matrix.Set(x, y)
			}
		}
	}
	return matrix, nil
}

func (g *GlobalHistogram) initArrays(luminanceSize int) {
	if len(g.luminances) < luminanceSize {
		g.luminances = make([]byte, luminanceSize)
	}
	g.buckets = [luminanceBuckets]int{}
}

// estimateBlackPoint picks the threshold between the two dominant histogram
// peaks. A histogram without two distinct peaks has no black/white structure
// worth decoding, so that case fails with ErrNotFound.
func estimateBlackPoint(buckets []int) (int, error) {
	numBuckets := len(buckets)
	maxBucketCount := 0
	firstPeak := 0
	firstPeakSize := 0
	for x := 0; x < numBuckets; x++ {
		if buckets[x] > firstPeakSize {
			firstPeak = x
			firstPeakSize = buckets[x]
		}
		if buckets[x] > maxBucketCount {
			maxBucketCount = buckets[x]
		}
	}

	// The second peak scores by count times squared distance, favoring a
	// peak well separated from the first.
	secondPeak := 0
	secondPeakScore := 0
	for x := 0; x < numBuckets; x++ {
		dist := x - firstPeak
		score := buckets[x] * dist * dist
		if score > secondPeakScore {
			secondPeak = x
			secondPeakScore = score
		}
	}

	if firstPeak > secondPeak {
		firstPeak, secondPeak = secondPeak, firstPeak
	}

	if secondPeak-firstPeak <= numBuckets/16 {
		return 0, qrstack.ErrNotFound
	}

	bestValley := secondPeak - 1
	bestValleyScore := -1
	for x := secondPeak - 1; x > firstPeak; x-- {
		fromFirst := x - firstPeak
		score := fromFirst * fromFirst * (secondPeak - x) * (maxBucketCount - buckets[x])
		if score > bestValleyScore {
			bestValley = x
			bestValleyScore = score
		}
	}

	return bestValley << luminanceShift, nil
}
