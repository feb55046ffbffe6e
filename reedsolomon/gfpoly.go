package reedsolomon

// gfPoly represents a polynomial whose coefficients are elements of a GF256
// field. Instances are immutable.
type gfPoly struct {
	field        *GF256
	coefficients []int
}

// newGFPoly creates a new polynomial. Coefficients are ordered from
// highest-degree to lowest-degree.
func newGFPoly(field *GF256, coefficients []int) *gfPoly {
	if len(coefficients) == 0 {
		panic("reedsolomon: empty coefficients")
	}
	if len(coefficients) > 1 && coefficients[0] == 0 {
		firstNonZero := 1
		for firstNonZero < len(coefficients) && coefficients[firstNonZero] == 0 {
			firstNonZero++
		}
		if firstNonZero == len(coefficients) {
			coefficients = []int{0}
		} else {
			newCoeff := make([]int, len(coefficients)-firstNonZero)
			copy(newCoeff, coefficients[firstNonZero:])
			coefficients = newCoeff
		}
	}
	return &gfPoly{field: field, coefficients: coefficients}
}

// degree returns the degree of this polynomial.
func (p *gfPoly) degree() int {
	return len(p.coefficients) - 1
}

// isZero returns true if this is the zero polynomial.
func (p *gfPoly) isZero() bool {
	return p.coefficients[0] == 0
}

// coefficient returns the coefficient of x^degree.
func (p *gfPoly) coefficient(degree int) int {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// evaluateAt evaluates this polynomial at a.
func (p *gfPoly) evaluateAt(a int) int {
	if a == 0 {
		return p.coefficient(0)
	}
	if a == 1 {
		result := 0
		for _, c := range p.coefficients {
			result ^= c
		}
		return result
	}
	result := p.coefficients[0]
	for i := 1; i < len(p.coefficients); i++ {
		result = p.field.multiply(a, result) ^ p.coefficients[i]
	}
	return result
}

// add returns the sum of this polynomial and other. Addition and
// subtraction are the same operation in GF(2^n).
func (p *gfPoly) add(other *gfPoly) *gfPoly {
	if p.isZero() {
		return other
	}
	if other.isZero() {
		return p
	}

	smallerCoeff := p.coefficients
	largerCoeff := other.coefficients
	if len(smallerCoeff) > len(largerCoeff) {
		smallerCoeff, largerCoeff = largerCoeff, smallerCoeff
	}

	sumDiff := make([]int, len(largerCoeff))
	lengthDiff := len(largerCoeff) - len(smallerCoeff)
	copy(sumDiff, largerCoeff[:lengthDiff])

	for i := lengthDiff; i < len(largerCoeff); i++ {
		sumDiff[i] = smallerCoeff[i-lengthDiff] ^ largerCoeff[i]
	}

	return newGFPoly(p.field, sumDiff)
}

// multiply multiplies by another polynomial.
func (p *gfPoly) multiply(other *gfPoly) *gfPoly {
	if p.isZero() || other.isZero() {
		return p.field.zero
	}
	aCoeff := p.coefficients
	bCoeff := other.coefficients
	product := make([]int, len(aCoeff)+len(bCoeff)-1)
	for i, ac := range aCoeff {
		for j, bc := range bCoeff {
			product[i+j] ^= p.field.multiply(ac, bc)
		}
	}
	return newGFPoly(p.field, product)
}

// multiplyScalar multiplies by a scalar.
func (p *gfPoly) multiplyScalar(scalar int) *gfPoly {
	if scalar == 0 {
		return p.field.zero
	}
	if scalar == 1 {
		return p
	}
	product := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = p.field.multiply(c, scalar)
	}
	return newGFPoly(p.field, product)
}

// multiplyByMonomial multiplies by coefficient * x^degree.
func (p *gfPoly) multiplyByMonomial(degree, coefficient int) *gfPoly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return p.field.zero
	}
	product := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = p.field.multiply(c, coefficient)
	}
	return newGFPoly(p.field, product)
}

// divide divides by another polynomial, returning quotient and remainder.
func (p *gfPoly) divide(other *gfPoly) (quotient, remainder *gfPoly) {
	if other.isZero() {
		panic("reedsolomon: divide by zero")
	}

	quotient = p.field.zero
	remainder = p

	denominatorLeadingTerm := other.coefficient(other.degree())
	inverseDLT := p.field.inverse(denominatorLeadingTerm)

	for remainder.degree() >= other.degree() && !remainder.isZero() {
		degreeDiff := remainder.degree() - other.degree()
		scale := p.field.multiply(remainder.coefficient(remainder.degree()), inverseDLT)
		term := other.multiplyByMonomial(degreeDiff, scale)
		iterQuot := p.field.buildMonomial(degreeDiff, scale)
		quotient = quotient.add(iterQuot)
		remainder = remainder.add(term)
	}

	return quotient, remainder
}
