package sigma

import (
    "fmt"
    "io"
)

// Polynomial is a polynomial over GF(2^192). Threshold conjectures use it to
// split a parent challenge: the constant term is the parent challenge and
// child i receives the evaluation at i+1.
type Polynomial struct {
    coefficients []GF2_192 // coefficients[i] multiplies x^i
}

// NewRandomPolynomial creates a random polynomial with given degree and constant term
func NewRandomPolynomial(r io.Reader, degree int, constantTerm GF2_192) (*Polynomial, error) {
    if degree < 0 {
        return nil, fmt.Errorf("degree must be non-negative")
    }

    more, err := SecureRandom(r, degree*SoundnessBytes)
    if err != nil {
        return nil, err
    }
    return PolynomialFromBytes(constantTerm, more)
}

// PolynomialFromBytes builds a polynomial from its constant term and the
// concatenated encodings of the remaining coefficients, lowest power first.
func PolynomialFromBytes(constantTerm GF2_192, moreCoefficients []byte) (*Polynomial, error) {
    if len(moreCoefficients)%SoundnessBytes != 0 {
        return nil, fmt.Errorf("coefficient bytes length %d is not a multiple of %d", len(moreCoefficients), SoundnessBytes)
    }

    degree := len(moreCoefficients) / SoundnessBytes
    coefficients := make([]GF2_192, degree+1)
    coefficients[0] = constantTerm
    for i := 1; i <= degree; i++ {
        coefficients[i] = GF2_192FromBytes(moreCoefficients[(i-1)*SoundnessBytes : i*SoundnessBytes])
    }
    return &Polynomial{coefficients: coefficients}, nil
}

// InterpolatePolynomial returns the polynomial of degree len(points) that
// takes valueAt0 at zero and values[i] at points[i]. Points must be distinct
// and non-zero.
func InterpolatePolynomial(points []byte, values []GF2_192, valueAt0 GF2_192) (*Polynomial, error) {
    if len(points) != len(values) {
        return nil, fmt.Errorf("got %d points but %d values", len(points), len(values))
    }

    xs := make([]GF2_192, 0, len(points)+1)
    ys := make([]GF2_192, 0, len(points)+1)
    xs = append(xs, GF2_192{})
    ys = append(ys, valueAt0)
    seen := make(map[byte]bool, len(points))
    for i, pt := range points {
        if pt == 0 || seen[pt] {
            return nil, fmt.Errorf("interpolation point %d is zero or duplicated", pt)
        }
        seen[pt] = true
        xs = append(xs, GF2_192FromByte(pt))
        ys = append(ys, values[i])
    }

    // Lagrange form: sum_j y_j * prod_{m != j} (x - x_m) / (x_j - x_m)
    result := make([]GF2_192, len(xs))
    for j := range xs {
        basis := []GF2_192{GF2_192FromByte(1)}
        denominator := GF2_192FromByte(1)
        for m := range xs {
            if m == j {
                continue
            }
            basis = mulByLinear(basis, xs[m])
            denominator = denominator.Mul(xs[j].Add(xs[m]))
        }

        scale := ys[j].Mul(denominator.Invert())
        for i, c := range basis {
            result[i] = result[i].Add(c.Mul(scale))
        }
    }

    return &Polynomial{coefficients: result}, nil
}

// mulByLinear multiplies p by (x + c)
func mulByLinear(p []GF2_192, c GF2_192) []GF2_192 {
    out := make([]GF2_192, len(p)+1)
    for i, coeff := range p {
        out[i+1] = out[i+1].Add(coeff)
        out[i] = out[i].Add(coeff.Mul(c))
    }
    return out
}

// Evaluate evaluates the polynomial at a given point
func (p *Polynomial) Evaluate(x byte) GF2_192 {
    if len(p.coefficients) == 0 {
        return GF2_192{}
    }

    // Use Horner's method: f(x) = a0 + x(a1 + x(a2 + x(a3 + ...)))
    point := GF2_192FromByte(x)
    result := p.coefficients[len(p.coefficients)-1]

    for i := len(p.coefficients) - 2; i >= 0; i-- {
        result = result.Mul(point).Add(p.coefficients[i])
    }

    return result
}

// Degree returns the degree of the polynomial
func (p *Polynomial) Degree() int {
    return len(p.coefficients) - 1
}

// Coefficient returns the coefficient of x^i
func (p *Polynomial) Coefficient(i int) GF2_192 {
    if i < 0 || i >= len(p.coefficients) {
        return GF2_192{}
    }
    return p.coefficients[i]
}

// Bytes concatenates the coefficient encodings, lowest power first. The
// constant term is omitted unless includeConstant is set.
func (p *Polynomial) Bytes(includeConstant bool) []byte {
    start := 1
    if includeConstant {
        start = 0
    }
    out := make([]byte, 0, (len(p.coefficients)-start)*SoundnessBytes)
    for i := start; i < len(p.coefficients); i++ {
        out = append(out, p.coefficients[i].Bytes()...)
    }
    return out
}

// Equal reports whether both polynomials have the same coefficient vector
func (p *Polynomial) Equal(other *Polynomial) bool {
    if p == nil || other == nil {
        return p == other
    }
    if len(p.coefficients) != len(other.coefficients) {
        return false
    }
    for i := range p.coefficients {
        if !p.coefficients[i].Equal(other.coefficients[i]) {
            return false
        }
    }
    return true
}
