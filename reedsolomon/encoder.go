package reedsolomon

// Encoder appends Reed-Solomon error correction codewords to data blocks.
type Encoder struct {
	field            *GF256
	cachedGenerators []*gfPoly
}

// NewEncoder creates a new Encoder for the given field.
func NewEncoder(field *GF256) *Encoder {
	return &Encoder{
		field:            field,
		cachedGenerators: []*gfPoly{newGFPoly(field, []int{1})},
	}
}

func (e *Encoder) buildGenerator(degree int) *gfPoly {
	if degree < len(e.cachedGenerators) {
		return e.cachedGenerators[degree]
	}
	lastGenerator := e.cachedGenerators[len(e.cachedGenerators)-1]
	for d := len(e.cachedGenerators); d <= degree; d++ {
		nextGenerator := lastGenerator.multiply(
			newGFPoly(e.field, []int{1, e.field.exp(d - 1)}))
		e.cachedGenerators = append(e.cachedGenerators, nextGenerator)
		lastGenerator = nextGenerator
	}
	return e.cachedGenerators[degree]
}

// Encode appends ecBytes error-correction codewords to the data in toEncode.
// toEncode must have space for data + ecBytes values.
func (e *Encoder) Encode(toEncode []int, ecBytes int) {
	if ecBytes == 0 {
		panic("reedsolomon: no error correction bytes")
	}
	dataBytes := len(toEncode) - ecBytes
	if dataBytes <= 0 {
		panic("reedsolomon: no data bytes provided")
	}
	generator := e.buildGenerator(ecBytes)
	infoCoefficients := make([]int, dataBytes)
	copy(infoCoefficients, toEncode[:dataBytes])
	info := newGFPoly(e.field, infoCoefficients)
	info = info.multiplyByMonomial(ecBytes, 1)
	_, remainder := info.divide(generator)
	coefficients := remainder.coefficients
	numZero := ecBytes - len(coefficients)
	for i := 0; i < numZero; i++ {
		toEncode[dataBytes+i] = 0
	}
	copy(toEncode[dataBytes+numZero:], coefficients)
}
