package sigma

import (
    "encoding/hex"
    "io"
    "runtime"

    "filippo.io/edwards25519"
)

// Ed25519Curve implements the Curve interface for the prime-order subgroup
// of edwards25519
type Ed25519Curve struct{}

// NewEd25519Curve creates a new Ed25519 curve instance
func NewEd25519Curve() *Ed25519Curve {
    return &Ed25519Curve{}
}

func (c *Ed25519Curve) Name() string    { return "ed25519" }
func (c *Ed25519Curve) ScalarSize() int { return 32 }
func (c *Ed25519Curve) PointSize() int  { return 32 }

// ScalarFromBytes only accepts canonical little-endian encodings.
func (c *Ed25519Curve) ScalarFromBytes(data []byte) (Scalar, error) {
    if len(data) != 32 {
        return nil, ErrInvalidScalarLength
    }

    scalar, err := new(edwards25519.Scalar).SetCanonicalBytes(data)
    if err != nil {
        return nil, ErrInvalidScalar
    }

    return &Ed25519Scalar{inner: scalar}, nil
}

func (c *Ed25519Curve) ScalarFromBigEndian(data []byte) Scalar {
    // SetUniformBytes reduces a 64-byte little-endian value modulo l
    wide := make([]byte, 64)
    for i := 0; i < len(data) && i < 64; i++ {
        wide[i] = data[len(data)-1-i]
    }
    scalar, _ := edwards25519.NewScalar().SetUniformBytes(wide)
    return &Ed25519Scalar{inner: scalar}
}

func (c *Ed25519Curve) ScalarRandom(r io.Reader) (Scalar, error) {
    for {
        bytes, err := SecureRandom(r, 64) // 64 bytes for uniform distribution
        if err != nil {
            return nil, err
        }

        scalar, _ := edwards25519.NewScalar().SetUniformBytes(bytes)
        ZeroizeBytes(bytes)
        s := NewEd25519Scalar(scalar)
        if !s.IsZero() {
            return s, nil
        }
    }
}

// NewEd25519Scalar creates a new Ed25519Scalar with automatic cleanup via finalizer
func NewEd25519Scalar(inner *edwards25519.Scalar) *Ed25519Scalar {
    s := &Ed25519Scalar{inner: inner}
    runtime.SetFinalizer(s, (*Ed25519Scalar).finalize)
    return s
}

// finalize is called by the garbage collector as backup cleanup
func (s *Ed25519Scalar) finalize() {
    if s.inner != nil {
        s.Zeroize()
    }
}

func (c *Ed25519Curve) ScalarZero() Scalar {
    return &Ed25519Scalar{inner: edwards25519.NewScalar()}
}

func (c *Ed25519Curve) ScalarOne() Scalar {
    one := make([]byte, 32)
    one[0] = 1
    scalar, _ := edwards25519.NewScalar().SetCanonicalBytes(one)
    return &Ed25519Scalar{inner: scalar}
}

// PointFromBytes decodes a point and rejects anything outside the
// prime-order subgroup.
func (c *Ed25519Curve) PointFromBytes(data []byte) (Point, error) {
    if len(data) != 32 {
        return nil, ErrInvalidPointLength
    }

    point, err := new(edwards25519.Point).SetBytes(data)
    if err != nil {
        return nil, ErrInvalidPoint
    }
    if !inPrimeOrderSubgroup(point) {
        return nil, ErrInvalidPoint
    }

    return &Ed25519Point{inner: point}, nil
}

func (c *Ed25519Curve) BasePoint() Point {
    return &Ed25519Point{inner: edwards25519.NewGeneratorPoint()}
}

func (c *Ed25519Curve) PointIdentity() Point {
    return &Ed25519Point{inner: edwards25519.NewIdentityPoint()}
}

// inPrimeOrderSubgroup checks [l]P == O by computing [l-1]P + P.
func inPrimeOrderSubgroup(p *edwards25519.Point) bool {
    minusOne := edwards25519.NewScalar().Negate(new(Ed25519Curve).ScalarOne().(*Ed25519Scalar).inner)
    q := new(edwards25519.Point).ScalarMult(minusOne, p)
    q.Add(q, p)
    return q.Equal(edwards25519.NewIdentityPoint()) == 1
}

// Ed25519Scalar implements the Scalar interface
type Ed25519Scalar struct {
    inner *edwards25519.Scalar
}

func (s *Ed25519Scalar) Bytes() []byte {
    return s.inner.Bytes()
}

func (s *Ed25519Scalar) String() string {
    return hex.EncodeToString(s.Bytes())
}

func (s *Ed25519Scalar) Add(other Scalar) Scalar {
    result := edwards25519.NewScalar()
    result.Add(s.inner, other.(*Ed25519Scalar).inner)
    return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Sub(other Scalar) Scalar {
    result := edwards25519.NewScalar()
    result.Subtract(s.inner, other.(*Ed25519Scalar).inner)
    return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Mul(other Scalar) Scalar {
    result := edwards25519.NewScalar()
    result.Multiply(s.inner, other.(*Ed25519Scalar).inner)
    return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Negate() Scalar {
    result := edwards25519.NewScalar()
    result.Negate(s.inner)
    return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Equal(other Scalar) bool {
    return s.inner.Equal(other.(*Ed25519Scalar).inner) == 1
}

func (s *Ed25519Scalar) IsZero() bool {
    return s.inner.Equal(edwards25519.NewScalar()) == 1
}

func (s *Ed25519Scalar) Zeroize() {
    s.inner = edwards25519.NewScalar()
    runtime.SetFinalizer(s, nil)
}

// Ed25519Point implements the Point interface
type Ed25519Point struct {
    inner *edwards25519.Point
}

func (p *Ed25519Point) CompressedBytes() []byte {
    return p.inner.Bytes()
}

func (p *Ed25519Point) String() string {
    return hex.EncodeToString(p.CompressedBytes())
}

func (p *Ed25519Point) Add(other Point) Point {
    result := edwards25519.NewIdentityPoint()
    result.Add(p.inner, other.(*Ed25519Point).inner)
    return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Sub(other Point) Point {
    result := edwards25519.NewIdentityPoint()
    result.Subtract(p.inner, other.(*Ed25519Point).inner)
    return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Mul(scalar Scalar) Point {
    result := edwards25519.NewIdentityPoint()
    result.ScalarMult(scalar.(*Ed25519Scalar).inner, p.inner)
    return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Negate() Point {
    result := edwards25519.NewIdentityPoint()
    result.Negate(p.inner)
    return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Equal(other Point) bool {
    return p.inner.Equal(other.(*Ed25519Point).inner) == 1
}

func (p *Ed25519Point) IsIdentity() bool {
    return p.inner.Equal(edwards25519.NewIdentityPoint()) == 1
}
