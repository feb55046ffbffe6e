package reedsolomon

import "errors"

// ErrReedSolomon indicates a Reed-Solomon decoding failure.
var ErrReedSolomon = errors.New("reedsolomon: decoding error")

// Decoder performs Reed-Solomon error correction decoding.
type Decoder struct {
	field *GF256
}

// NewDecoder creates a new Decoder for the given field.
func NewDecoder(field *GF256) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects errors in received in-place and returns the number of
// errors corrected. twoS is the number of error-correction codewords.
func (d *Decoder) Decode(received []int, twoS int) (int, error) {
	poly := newGFPoly(d.field, received)
	syndromeCoefficients := make([]int, twoS)
	noError := true
	for i := 0; i < twoS; i++ {
		eval := poly.evaluateAt(d.field.exp(i))
		syndromeCoefficients[twoS-1-i] = eval
		if eval != 0 {
			noError = false
		}
	}
	if noError {
		return 0, nil
	}

	syndrome := newGFPoly(d.field, syndromeCoefficients)
	sigma, omega, err := d.runEuclideanAlgorithm(d.field.buildMonomial(twoS, 1), syndrome, twoS)
	if err != nil {
		return 0, err
	}
	errorLocations, err := d.findErrorLocations(sigma)
	if err != nil {
		return 0, err
	}
	errorMagnitudes := d.findErrorMagnitudes(omega, errorLocations)
	for i := 0; i < len(errorLocations); i++ {
		position := len(received) - 1 - d.field.log(errorLocations[i])
		if position < 0 {
			return 0, ErrReedSolomon
		}
		received[position] ^= errorMagnitudes[i]
	}
	return len(errorLocations), nil
}

func (d *Decoder) runEuclideanAlgorithm(a, b *gfPoly, R int) (sigma, omega *gfPoly, err error) {
	if a.degree() < b.degree() {
		a, b = b, a
	}

	rLast := a
	r := b
	tLast := d.field.zero
	t := d.field.one

	for 2*r.degree() >= R {
		rLastLast := rLast
		tLastLast := tLast
		rLast = r
		tLast = t

		if rLast.isZero() {
			return nil, nil, ErrReedSolomon
		}
		r = rLastLast
		q := d.field.zero
		denominatorLeadingTerm := rLast.coefficient(rLast.degree())
		dltInverse := d.field.inverse(denominatorLeadingTerm)
		for r.degree() >= rLast.degree() && !r.isZero() {
			degreeDiff := r.degree() - rLast.degree()
			scale := d.field.multiply(r.coefficient(r.degree()), dltInverse)
			q = q.add(d.field.buildMonomial(degreeDiff, scale))
			r = r.add(rLast.multiplyByMonomial(degreeDiff, scale))
		}

		t = q.multiply(tLast).add(tLastLast)

		if r.degree() >= rLast.degree() {
			return nil, nil, ErrReedSolomon
		}
	}

	sigmaTildeAtZero := t.coefficient(0)
	if sigmaTildeAtZero == 0 {
		return nil, nil, ErrReedSolomon
	}

	inverse := d.field.inverse(sigmaTildeAtZero)
	sigma = t.multiplyScalar(inverse)
	omega = r.multiplyScalar(inverse)
	return sigma, omega, nil
}

func (d *Decoder) findErrorLocations(errorLocator *gfPoly) ([]int, error) {
	numErrors := errorLocator.degree()
	if numErrors == 1 {
		return []int{errorLocator.coefficient(1)}, nil
	}
	result := make([]int, 0, numErrors)
	for i := 1; i < 256 && len(result) < numErrors; i++ {
		if errorLocator.evaluateAt(i) == 0 {
			result = append(result, d.field.inverse(i))
		}
	}
	if len(result) != numErrors {
		return nil, ErrReedSolomon
	}
	return result, nil
}

func (d *Decoder) findErrorMagnitudes(errorEvaluator *gfPoly, errorLocations []int) []int {
	s := len(errorLocations)
	result := make([]int, s)
	for i := 0; i < s; i++ {
		xiInverse := d.field.inverse(errorLocations[i])
		denominator := 1
		for j := 0; j < s; j++ {
			if i != j {
				term := d.field.multiply(errorLocations[j], xiInverse)
				termPlus1 := term | 1
				if term&1 != 0 {
					termPlus1 = term &^ 1
				}
				denominator = d.field.multiply(denominator, termPlus1)
			}
		}
		result[i] = d.field.multiply(errorEvaluator.evaluateAt(xiInverse), d.field.inverse(denominator))
	}
	return result
}
