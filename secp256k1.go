package sigma

import (
    "encoding/hex"
    "io"
    "math/big"
    "runtime"

    "github.com/btcsuite/btcd/btcec/v2"
)

// secp256k1CompressedSize is the size of a compressed point; the identity
// is encoded as that many zero bytes.
const secp256k1CompressedSize = 33

// Secp256k1Curve implements the Curve interface for secp256k1
type Secp256k1Curve struct{}

// NewSecp256k1Curve creates a new secp256k1 curve instance
func NewSecp256k1Curve() *Secp256k1Curve {
    return &Secp256k1Curve{}
}

func (c *Secp256k1Curve) Name() string    { return "secp256k1" }
func (c *Secp256k1Curve) ScalarSize() int { return 32 }
func (c *Secp256k1Curve) PointSize() int  { return secp256k1CompressedSize }

// ScalarFromBytes reads a 32-byte big-endian value reduced modulo the group order.
func (c *Secp256k1Curve) ScalarFromBytes(data []byte) (Scalar, error) {
    if len(data) != 32 {
        return nil, ErrInvalidScalarLength
    }

    scalar := new(btcec.ModNScalar)
    scalar.SetBytes((*[32]byte)(data))

    return &Secp256k1Scalar{inner: scalar}, nil
}

func (c *Secp256k1Curve) ScalarFromBigEndian(data []byte) Scalar {
    scalar := new(btcec.ModNScalar)
    if len(data) <= 32 {
        scalar.SetByteSlice(data)
        return &Secp256k1Scalar{inner: scalar}
    }

    reduced := new(big.Int).SetBytes(data)
    reduced.Mod(reduced, btcec.S256().N)
    var buf [32]byte
    reduced.FillBytes(buf[:])
    scalar.SetBytes(&buf)
    return &Secp256k1Scalar{inner: scalar}
}

func (c *Secp256k1Curve) ScalarRandom(r io.Reader) (Scalar, error) {
    for {
        bytes, err := SecureRandom(r, 32)
        if err != nil {
            return nil, err
        }

        scalar := new(btcec.ModNScalar)
        overflow := scalar.SetBytes((*[32]byte)(bytes))
        ZeroizeBytes(bytes)
        if overflow == 0 && !scalar.IsZero() {
            return &Secp256k1Scalar{inner: scalar}, nil
        }
        // Out of range, draw again
    }
}

func (c *Secp256k1Curve) ScalarZero() Scalar {
    return &Secp256k1Scalar{inner: new(btcec.ModNScalar)}
}

func (c *Secp256k1Curve) ScalarOne() Scalar {
    scalar := new(btcec.ModNScalar)
    scalar.SetInt(1)
    return &Secp256k1Scalar{inner: scalar}
}

func (c *Secp256k1Curve) PointFromBytes(data []byte) (Point, error) {
    if len(data) != secp256k1CompressedSize {
        return nil, ErrInvalidPointLength
    }
    if isZeroBytes(data) {
        return &Secp256k1Point{inner: nil}, nil
    }

    pubKey, err := btcec.ParsePubKey(data)
    if err != nil {
        return nil, ErrInvalidPoint
    }

    return &Secp256k1Point{inner: pubKey}, nil
}

func (c *Secp256k1Curve) BasePoint() Point {
    return &Secp256k1Point{inner: btcec.Generator()}
}

func (c *Secp256k1Curve) PointIdentity() Point {
    // Point at infinity
    return &Secp256k1Point{inner: nil}
}

// Secp256k1Scalar implements the Scalar interface
type Secp256k1Scalar struct {
    inner *btcec.ModNScalar
}

func (s *Secp256k1Scalar) Bytes() []byte {
    var bytes [32]byte
    s.inner.PutBytes(&bytes)
    return bytes[:]
}

func (s *Secp256k1Scalar) String() string {
    return hex.EncodeToString(s.Bytes())
}

func (s *Secp256k1Scalar) Add(other Scalar) Scalar {
    result := new(btcec.ModNScalar)
    result.Add2(s.inner, other.(*Secp256k1Scalar).inner)
    return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Sub(other Scalar) Scalar {
    negated := new(btcec.ModNScalar).NegateVal(other.(*Secp256k1Scalar).inner)
    result := new(btcec.ModNScalar)
    result.Add2(s.inner, negated)
    return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Mul(other Scalar) Scalar {
    result := new(btcec.ModNScalar)
    result.Mul2(s.inner, other.(*Secp256k1Scalar).inner)
    return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Negate() Scalar {
    result := new(btcec.ModNScalar)
    result.NegateVal(s.inner)
    return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Equal(other Scalar) bool {
    return s.inner.Equals(other.(*Secp256k1Scalar).inner)
}

func (s *Secp256k1Scalar) IsZero() bool {
    return s.inner.IsZero()
}

func (s *Secp256k1Scalar) Zeroize() {
    s.inner.Zero()
    runtime.KeepAlive(s)
}

// Secp256k1Point implements the Point interface. A nil inner key is the
// point at infinity.
type Secp256k1Point struct {
    inner *btcec.PublicKey
}

func (p *Secp256k1Point) CompressedBytes() []byte {
    if p.inner == nil {
        return make([]byte, secp256k1CompressedSize)
    }
    return p.inner.SerializeCompressed()
}

func (p *Secp256k1Point) String() string {
    return hex.EncodeToString(p.CompressedBytes())
}

func (p *Secp256k1Point) Add(other Point) Point {
    o := other.(*Secp256k1Point)
    if p.inner == nil {
        return o
    }
    if o.inner == nil {
        return p
    }

    var result, otherJac btcec.JacobianPoint
    p.inner.AsJacobian(&result)
    o.inner.AsJacobian(&otherJac)

    // WARNING: non-constant-time addition. Only public values and
    // simulated transcripts go through here.
    btcec.AddNonConst(&result, &otherJac, &result)
    return fromJacobian(&result)
}

func (p *Secp256k1Point) Sub(other Point) Point {
    return p.Add(other.Negate())
}

func (p *Secp256k1Point) Mul(scalar Scalar) Point {
    if p.inner == nil {
        return p
    }

    var pointJac, result btcec.JacobianPoint
    p.inner.AsJacobian(&pointJac)

    // WARNING: btcec/v2 does not provide constant-time variable-base
    // multiplication.
    btcec.ScalarMultNonConst(scalar.(*Secp256k1Scalar).inner, &pointJac, &result)
    return fromJacobian(&result)
}

func (p *Secp256k1Point) Negate() Point {
    if p.inner == nil {
        return p
    }

    var jac btcec.JacobianPoint
    p.inner.AsJacobian(&jac)
    jac.Y.Negate(1).Normalize()
    jac.ToAffine()
    return &Secp256k1Point{inner: btcec.NewPublicKey(&jac.X, &jac.Y)}
}

func (p *Secp256k1Point) Equal(other Point) bool {
    o := other.(*Secp256k1Point)
    if p.inner == nil || o.inner == nil {
        return p.inner == nil && o.inner == nil
    }
    return p.inner.IsEqual(o.inner)
}

func (p *Secp256k1Point) IsIdentity() bool {
    return p.inner == nil
}

// fromJacobian converts a Jacobian result back to affine form, mapping the
// point at infinity to the nil representation.
func fromJacobian(jac *btcec.JacobianPoint) *Secp256k1Point {
    if jac.Z.Normalize().IsZero() {
        return &Secp256k1Point{inner: nil}
    }
    jac.ToAffine()
    return &Secp256k1Point{inner: btcec.NewPublicKey(&jac.X, &jac.Y)}
}
