package sigma

import (
	"fmt"
	"io"
)

// FirstProverMessage is the prover's commitment (message `a`)
type FirstProverMessage interface {
	Bytes() []byte
	isFirstProverMessage()
}

// FirstDlogProverMessage is the Schnorr commitment a = g^r
type FirstDlogProverMessage struct {
	A Point
}

func (m *FirstDlogProverMessage) Bytes() []byte {
	return m.A.CompressedBytes()
}

func (*FirstDlogProverMessage) isFirstProverMessage() {}

// dlogCommit picks fresh randomness r and commits a = g^r
func dlogCommit(curve Curve, rand io.Reader) (Scalar, *FirstDlogProverMessage, error) {
	r, err := curve.ScalarRandom(rand)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return r, &FirstDlogProverMessage{A: curve.BasePoint().Mul(r)}, nil
}

// dlogSimulate produces an accepting transcript for a known challenge
// without the secret: pick z, then a = g^z * h^-e.
func dlogSimulate(curve Curve, prop *ProveDlog, challenge Challenge, rand io.Reader) (*FirstDlogProverMessage, Scalar, error) {
	z, err := curve.ScalarRandom(rand)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate simulated response: %w", err)
	}
	return dlogComputeCommitment(curve, prop, challenge, z), z, nil
}

// dlogResponse computes z = r + e*w
func dlogResponse(curve Curve, secret *DlogProverInput, r Scalar, challenge Challenge) Scalar {
	return r.Add(challenge.Scalar(curve).Mul(secret.W))
}

// dlogComputeCommitment recovers the commitment a = g^z * h^-e that makes
// the Schnorr equation hold.
func dlogComputeCommitment(curve Curve, prop *ProveDlog, challenge Challenge, z Scalar) *FirstDlogProverMessage {
	e := challenge.Scalar(curve)
	a := curve.BasePoint().Mul(z).Sub(prop.H.Mul(e))
	return &FirstDlogProverMessage{A: a}
}

// VerifyDlogTranscript checks g^z == a * h^e
func VerifyDlogTranscript(curve Curve, prop *ProveDlog, commitment *FirstDlogProverMessage, challenge Challenge, z Scalar) bool {
	if commitment == nil || z == nil {
		return false
	}
	lhs := curve.BasePoint().Mul(z)
	rhs := commitment.A.Add(prop.H.Mul(challenge.Scalar(curve)))
	return lhs.Equal(rhs)
}
