package sigma

import (
	"fmt"
	"io"
)

// FirstDhTupleProverMessage is the Chaum-Pedersen commitment (g^r, h^r)
type FirstDhTupleProverMessage struct {
	A Point
	B Point
}

func (m *FirstDhTupleProverMessage) Bytes() []byte {
	out := append([]byte{}, m.A.CompressedBytes()...)
	return append(out, m.B.CompressedBytes()...)
}

func (*FirstDhTupleProverMessage) isFirstProverMessage() {}

func dhtCommit(curve Curve, prop *ProveDhTuple, rand io.Reader) (Scalar, *FirstDhTupleProverMessage, error) {
	r, err := curve.ScalarRandom(rand)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return r, &FirstDhTupleProverMessage{A: prop.G.Mul(r), B: prop.H.Mul(r)}, nil
}

// dhtSimulate picks z and solves for (a, b) = (g^z * u^-e, h^z * v^-e)
func dhtSimulate(curve Curve, prop *ProveDhTuple, challenge Challenge, rand io.Reader) (*FirstDhTupleProverMessage, Scalar, error) {
	z, err := curve.ScalarRandom(rand)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate simulated response: %w", err)
	}
	return dhtComputeCommitment(curve, prop, challenge, z), z, nil
}

func dhtResponse(curve Curve, secret *DhTupleProverInput, r Scalar, challenge Challenge) Scalar {
	return r.Add(challenge.Scalar(curve).Mul(secret.W))
}

func dhtComputeCommitment(curve Curve, prop *ProveDhTuple, challenge Challenge, z Scalar) *FirstDhTupleProverMessage {
	e := challenge.Scalar(curve)
	return &FirstDhTupleProverMessage{
		A: prop.G.Mul(z).Sub(prop.U.Mul(e)),
		B: prop.H.Mul(z).Sub(prop.V.Mul(e)),
	}
}

// VerifyDhTupleTranscript checks g^z == a * u^e and h^z == b * v^e
func VerifyDhTupleTranscript(curve Curve, prop *ProveDhTuple, commitment *FirstDhTupleProverMessage, challenge Challenge, z Scalar) bool {
	if commitment == nil || z == nil {
		return false
	}
	e := challenge.Scalar(curve)
	if !prop.G.Mul(z).Equal(commitment.A.Add(prop.U.Mul(e))) {
		return false
	}
	return prop.H.Mul(z).Equal(commitment.B.Add(prop.V.Mul(e)))
}
