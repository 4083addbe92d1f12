package sigma

import (
    "crypto/rand"
    "errors"
    "fmt"
    "io"
)

// Curve defines the prime-order group the sigma protocols run over
type Curve interface {
    // Metadata
    Name() string
    ScalarSize() int
    PointSize() int

    // Scalar operations
    ScalarFromBytes([]byte) (Scalar, error)
    ScalarFromBigEndian([]byte) Scalar
    ScalarRandom(io.Reader) (Scalar, error)
    ScalarZero() Scalar
    ScalarOne() Scalar

    // Point operations
    PointFromBytes([]byte) (Point, error)
    BasePoint() Point
    PointIdentity() Point
}

// Scalar represents a scalar value in the curve's field
type Scalar interface {
    // Serialization
    Bytes() []byte
    String() string

    // Arithmetic operations
    Add(Scalar) Scalar
    Sub(Scalar) Scalar
    Mul(Scalar) Scalar
    Negate() Scalar

    // Comparison
    Equal(Scalar) bool
    IsZero() bool

    // Security
    Zeroize()
}

// Point represents a point on the elliptic curve
type Point interface {
    // Serialization
    CompressedBytes() []byte
    String() string

    // Arithmetic operations
    Add(Point) Point
    Sub(Point) Point
    Mul(Scalar) Point
    Negate() Point

    // Comparison
    Equal(Point) bool
    IsIdentity() bool
}

// CurveType represents supported curve types
type CurveType string

const (
    Secp256k1 CurveType = "secp256k1"
    Ed25519   CurveType = "ed25519"
)

// NewCurve creates a new curve instance
func NewCurve(curveType CurveType) (Curve, error) {
    switch curveType {
    case Secp256k1:
        return NewSecp256k1Curve(), nil
    case Ed25519:
        return NewEd25519Curve(), nil
    default:
        return nil, fmt.Errorf("unsupported curve type: %s", curveType)
    }
}

// Common errors
var (
    ErrInvalidScalarLength = errors.New("invalid scalar length")
    ErrInvalidPointLength  = errors.New("invalid point length")
    ErrInvalidScalar       = errors.New("invalid scalar value")
    ErrInvalidPoint        = errors.New("invalid point")
)

// SecureRandom generates cryptographically secure random bytes from r.
// A nil reader means crypto/rand.
func SecureRandom(r io.Reader, size int) ([]byte, error) {
    if r == nil {
        r = rand.Reader
    }
    bytes := make([]byte, size)
    if _, err := io.ReadFull(r, bytes); err != nil {
        return nil, ErrRandomnessGeneration.WithCause(err)
    }
    return bytes, nil
}
