// Package reedsolomon implements the Reed-Solomon error correction coding
// used by QR code symbols.
package reedsolomon

// GF256 is the Galois field GF(2^8) under a given primitive polynomial.
// Addition and subtraction in the field are both XOR.
type GF256 struct {
	expTable [256]int
	logTable [256]int
	zero     *gfPoly
	one      *gfPoly
}

// QRCodeField is the field QR code symbols use, reduced by the primitive
// polynomial x^8 + x^4 + x^3 + x^2 + 1.
var QRCodeField = NewGF256(0x011D)

// NewGF256 builds the exp and log tables for the field defined by the given
// primitive polynomial.
func NewGF256(primitive int) *GF256 {
	gf := &GF256{}
	x := 1
	for i := 0; i < 256; i++ {
		gf.expTable[i] = x
		x *= 2
		if x >= 256 {
			x ^= primitive
			x &= 255
		}
	}
	for i := 0; i < 255; i++ {
		gf.logTable[gf.expTable[i]] = i
	}
	gf.zero = newGFPoly(gf, []int{0})
	gf.one = newGFPoly(gf, []int{1})
	return gf
}

// exp returns 2^a in this field.
func (gf *GF256) exp(a int) int {
	return gf.expTable[a]
}

// log returns log2(a) in this field.
func (gf *GF256) log(a int) int {
	if a == 0 {
		panic("reedsolomon: log(0)")
	}
	return gf.logTable[a]
}

// inverse returns the multiplicative inverse of a.
func (gf *GF256) inverse(a int) int {
	if a == 0 {
		panic("reedsolomon: inverse(0)")
	}
	return gf.expTable[255-gf.logTable[a]]
}

// multiply returns a * b in this field.
func (gf *GF256) multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return gf.expTable[(gf.logTable[a]+gf.logTable[b])%255]
}

// buildMonomial returns coefficient * x^degree.
func (gf *GF256) buildMonomial(degree, coefficient int) *gfPoly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return gf.zero
	}
	coefficients := make([]int, degree+1)
	coefficients[0] = coefficient
	return newGFPoly(gf, coefficients)
}
