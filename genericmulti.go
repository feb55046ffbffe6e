package qrstack

const (
	genericMinDimensionToRecur = 100
	genericMaxDepth            = 4
)

// GenericMultiReader finds multiple QR codes using a single-symbol Reader:
// after one symbol decodes, the regions left of, above, right of and below
// its result points are cropped and scanned recursively. It works best when
// the symbols are well separated, since each decode pass must see exactly
// one symbol to lock onto it.
type GenericMultiReader struct {
	delegate *Reader
}

// NewGenericMultiReader creates a GenericMultiReader around the given
// single-symbol reader.
func NewGenericMultiReader(delegate *Reader) *GenericMultiReader {
	return &GenericMultiReader{delegate: delegate}
}

// DecodeMultiple decodes as many QR codes as region recursion reaches,
// deduplicated by text. An image with no decodable symbols yields an empty
// slice and no error.
func (r *GenericMultiReader) DecodeMultiple(image *BinaryBitmap, opts *DecodeOptions) ([]*Result, error) {
	results := []*Result{}
	r.decodeRegion(image, opts, &results, 0, 0, 0)
	return results, nil
}

func (r *GenericMultiReader) decodeRegion(image *BinaryBitmap, opts *DecodeOptions,
	results *[]*Result, xOffset, yOffset, depth int) {

	if depth > genericMaxDepth {
		return
	}

	result, err := r.delegate.Decode(image, opts)
	if err != nil {
		return
	}

	alreadyFound := false
	for _, existing := range *results {
		if existing.Text == result.Text {
			alreadyFound = true
			break
		}
	}
	if !alreadyFound {
		*results = append(*results, translateResult(result, xOffset, yOffset))
	}

	points := result.Points
	if len(points) == 0 {
		return
	}

	width := image.Width()
	height := image.Height()
	minX := float64(width)
	minY := float64(height)
	maxX := 0.0
	maxY := 0.0
	for _, p := range points {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	if minX > genericMinDimensionToRecur {
		if cropped := image.Crop(0, 0, int(minX), height); cropped != nil {
			r.decodeRegion(cropped, opts, results, xOffset, yOffset, depth+1)
		}
	}
	if minY > genericMinDimensionToRecur {
		if cropped := image.Crop(0, 0, width, int(minY)); cropped != nil {
			r.decodeRegion(cropped, opts, results, xOffset, yOffset, depth+1)
		}
	}
	if maxX < float64(width-genericMinDimensionToRecur) {
		if cropped := image.Crop(int(maxX), 0, width-int(maxX), height); cropped != nil {
			r.decodeRegion(cropped, opts, results, xOffset+int(maxX), yOffset, depth+1)
		}
	}
	if maxY < float64(height-genericMinDimensionToRecur) {
		if cropped := image.Crop(0, int(maxY), width, height-int(maxY)); cropped != nil {
			r.decodeRegion(cropped, opts, results, xOffset, yOffset+int(maxY), depth+1)
		}
	}
}

// translateResult shifts a cropped region's result points back into the
// coordinates of the original image.
func translateResult(result *Result, xOffset, yOffset int) *Result {
	if len(result.Points) == 0 || (xOffset == 0 && yOffset == 0) {
		return result
	}
	points := make([]ResultPoint, len(result.Points))
	for i, p := range result.Points {
		points[i] = ResultPoint{X: p.X + float64(xOffset), Y: p.Y + float64(yOffset)}
	}
	translated := NewResult(result.Text, result.Data, result.RawBytes, points)
	translated.Timestamp = result.Timestamp
	for k, v := range result.Metadata {
		translated.PutMetadata(k, v)
	}
	return translated
}
