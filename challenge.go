package sigma

import (
	"encoding/hex"
	"fmt"
	"io"
)

const (
	// GroupSizeBits is the bit size of scalars of the supported groups
	GroupSizeBits = 256
	// GroupSize is the byte size of a serialized response
	GroupSize = GroupSizeBits / 8

	// SoundnessBits is the challenge size. Threshold challenge splitting
	// works over GF(2^192), so this cannot change independently.
	SoundnessBits = 192
	// SoundnessBytes is the challenge size in bytes
	SoundnessBytes = SoundnessBits / 8
)

// Challenge is a verifier challenge. Challenges are combined with XOR, never
// with integer arithmetic.
type Challenge [SoundnessBytes]byte

// ChallengeFromBytes copies exactly SoundnessBytes bytes into a Challenge
func ChallengeFromBytes(data []byte) (Challenge, error) {
	var c Challenge
	if len(data) != SoundnessBytes {
		return c, fmt.Errorf("challenge must be %d bytes, got %d", SoundnessBytes, len(data))
	}
	copy(c[:], data)
	return c, nil
}

func randomChallenge(r io.Reader) (Challenge, error) {
	bytes, err := SecureRandom(r, SoundnessBytes)
	if err != nil {
		return Challenge{}, err
	}
	var c Challenge
	copy(c[:], bytes)
	return c, nil
}

// Xor returns c XOR other
func (c Challenge) Xor(other Challenge) Challenge {
	var out Challenge
	for i := range c {
		out[i] = c[i] ^ other[i]
	}
	return out
}

// Equal compares challenges in constant time
func (c Challenge) Equal(other Challenge) bool {
	return SecureCompare(c[:], other[:])
}

func (c Challenge) Bytes() []byte {
	out := make([]byte, SoundnessBytes)
	copy(out, c[:])
	return out
}

func (c Challenge) String() string {
	return hex.EncodeToString(c[:])
}

// Scalar interprets the challenge as a big-endian unsigned integer in the
// curve's scalar field. 2^192 is below the order of every supported group.
func (c Challenge) Scalar(curve Curve) Scalar {
	return curve.ScalarFromBigEndian(c[:])
}

// GF returns the challenge as an element of GF(2^192)
func (c Challenge) GF() GF2_192 {
	return GF2_192FromBytes(c[:])
}

// ChallengeFromGF encodes a field element as a challenge
func ChallengeFromGF(e GF2_192) Challenge {
	var c Challenge
	copy(c[:], e.Bytes())
	return c
}

// GroupSizedBytes is the fixed-width wire form of a response scalar
type GroupSizedBytes [GroupSize]byte

// Scalar decodes the bytes with the curve's scalar reduction rules
func (b GroupSizedBytes) Scalar(curve Curve) (Scalar, error) {
	return curve.ScalarFromBytes(b[:])
}

func groupSizedBytesOf(s Scalar) GroupSizedBytes {
	var out GroupSizedBytes
	copy(out[:], s.Bytes())
	return out
}
