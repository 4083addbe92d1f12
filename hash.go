package sigma

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashAlgorithm specifies which 256-bit hash derives Fiat-Shamir challenges
type HashAlgorithm int

const (
	// Blake2b256 is the default and matches the on-chain proof format
	Blake2b256 HashAlgorithm = iota
	// SHA256 is SHA-256
	SHA256
	// SHA3_256 is the fixed-output Keccak variant from FIPS 202
	SHA3_256
)

func (h HashAlgorithm) String() string {
	switch h {
	case Blake2b256:
		return "blake2b256"
	case SHA256:
		return "sha256"
	case SHA3_256:
		return "sha3-256"
	default:
		return fmt.Sprintf("HashAlgorithm(%d)", int(h))
	}
}

// New returns a fresh hasher for the algorithm
func (h HashAlgorithm) New() (hash.Hash, error) {
	switch h {
	case Blake2b256:
		return blake2b.New256(nil)
	case SHA256:
		return sha256.New(), nil
	case SHA3_256:
		return sha3.New256(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", h)
	}
}

// FiatShamirChallenge hashes the transcript parts in order and truncates the
// digest to the soundness length.
func (h HashAlgorithm) FiatShamirChallenge(parts ...[]byte) (Challenge, error) {
	hasher, err := h.New()
	if err != nil {
		return Challenge{}, ErrHashComputation.WithCause(err)
	}
	for _, part := range parts {
		hasher.Write(part)
	}

	var challenge Challenge
	copy(challenge[:], hasher.Sum(nil)[:SoundnessBytes])
	return challenge, nil
}
