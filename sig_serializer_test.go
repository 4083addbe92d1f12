package sigma

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProofLayout(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 3)
	h := func(i int) SigmaBoolean { return keys[i].PublicImage() }
	all := []PrivateInput{keys[0], keys[1], keys[2]}

	cases := []struct {
		name string
		prop SigmaBoolean
		size int
	}{
		{"Dlog", h(0), SoundnessBytes + GroupSize},
		{"And", mustAnd(t, h(0), h(1)), SoundnessBytes + 2*GroupSize},
		{"Or", mustOr(t, h(0), h(1)), 2*SoundnessBytes + 2*GroupSize},
		{"Threshold2of3", mustThreshold(t, 2, h(0), h(1), h(2)), 2*SoundnessBytes + 3*GroupSize},
	}

	prover := newTestProver(t, all)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := prover.Prove(tc.prop, []byte("layout"))
			require.NoError(t, err)
			proof, err := SerializeSig(tree)
			require.NoError(t, err)
			require.Len(t, proof, tc.size)
			require.Equal(t, tc.size, AssessProposition(tc.prop).ProofSize)

			e := tree.Challenge()
			require.Equal(t, e[:], proof[:SoundnessBytes])
		})
	}

	t.Run("OrWritesAllButLastChallenge", func(t *testing.T) {
		tree, err := prover.Prove(mustOr(t, h(0), h(1)), []byte("layout"))
		require.NoError(t, err)
		proof, err := SerializeSig(tree)
		require.NoError(t, err)

		or := tree.(*COrUncheckedNode)
		first := or.Children[0].Challenge()
		require.Equal(t, first[:], proof[SoundnessBytes:2*SoundnessBytes])
		z := or.Children[0].(*UncheckedSchnorr).Z
		require.Equal(t, z.Bytes(), proof[2*SoundnessBytes:2*SoundnessBytes+GroupSize])
	})

	t.Run("ThresholdWritesCoefficients", func(t *testing.T) {
		tree, err := prover.Prove(mustThreshold(t, 2, h(0), h(1), h(2)), []byte("layout"))
		require.NoError(t, err)
		proof, err := SerializeSig(tree)
		require.NoError(t, err)

		th := tree.(*CThresholdUncheckedNode)
		require.Equal(t, th.Polynomial.Bytes(false), proof[SoundnessBytes:2*SoundnessBytes])
	})

	t.Run("NilTreeIsEmpty", func(t *testing.T) {
		proof, err := SerializeSig(nil)
		require.NoError(t, err)
		require.Empty(t, proof)
	})
}

func TestParseSigRoundTrip(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 4)
	dht, err := GenerateDhTupleProverInput(curve, nil)
	require.NoError(t, err)

	prop := mustThreshold(t, 2,
		mustOr(t, keys[0].PublicImage(), keys[1].PublicImage()),
		mustAnd(t, keys[2].PublicImage(), dht.PublicImage()),
		keys[3].PublicImage(),
	)
	prover := newTestProver(t, []PrivateInput{keys[1], keys[3]})
	tree, err := prover.Prove(prop, []byte("parse"))
	require.NoError(t, err)

	proof, err := SerializeSig(tree)
	require.NoError(t, err)
	parsed, err := ParseSig(curve, prop, proof)
	require.NoError(t, err)

	// parsed trees carry no commitments, so the leaf equations are skipped
	require.NoError(t, CheckConsistency(curve, prop, parsed))
	require.True(t, parsed.Challenge().Equal(tree.Challenge()))

	reserialized, err := SerializeSig(parsed)
	require.NoError(t, err)
	require.Equal(t, proof, reserialized)
}

func TestParseSigRejectsMalformed(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 2)
	or := mustOr(t, keys[0].PublicImage(), keys[1].PublicImage())
	and := mustAnd(t, keys[0].PublicImage(), keys[1].PublicImage())

	prover := newTestProver(t, []PrivateInput{keys[0]})
	proof, err := prover.Sign(or, []byte("malformed"))
	require.NoError(t, err)

	t.Run("Truncated", func(t *testing.T) {
		for _, n := range []int{0, 1, SoundnessBytes, len(proof) - 1} {
			_, err := ParseSig(curve, or, proof[:n])
			require.ErrorIs(t, err, ErrMalformedProof, "length %d", n)
		}
	})

	t.Run("TrailingBytes", func(t *testing.T) {
		extended := append(append([]byte{}, proof...), 0x00)
		_, err := ParseSig(curve, or, extended)
		require.ErrorIs(t, err, ErrMalformedProof)
	})

	t.Run("WrongShape", func(t *testing.T) {
		// an OR proof is longer than an AND proof over the same leaves
		_, err := ParseSig(curve, and, proof)
		require.ErrorIs(t, err, ErrMalformedProof)
	})

	t.Run("TrivialProposition", func(t *testing.T) {
		_, err := ParseSig(curve, TrueProp, proof)
		require.ErrorIs(t, err, ErrUnsupportedProposition)
	})

	t.Run("NonCanonicalEd25519Response", func(t *testing.T) {
		ed := NewEd25519Curve()
		key := generateDlogSecrets(t, ed, 1)[0]
		bad := make([]byte, SoundnessBytes+GroupSize)
		for i := SoundnessBytes; i < len(bad); i++ {
			bad[i] = 0xFF
		}
		_, err := ParseSig(ed, key.PublicImage(), bad)
		require.ErrorIs(t, err, ErrMalformedProof)
	})
}

func TestTamperedProofsRejected(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 3)
	prop := mustOr(t,
		mustAnd(t, keys[0].PublicImage(), keys[1].PublicImage()),
		mustThreshold(t, 2, keys[0].PublicImage(), keys[1].PublicImage(), keys[2].PublicImage()),
	)
	message := []byte("tamper")

	prover := newTestProver(t, []PrivateInput{keys[1], keys[2]})
	verifier := newTestVerifier(t)
	proof, err := prover.Sign(prop, message)
	require.NoError(t, err)
	require.NoError(t, verifier.Verify(prop, message, proof))

	for i := range proof {
		tampered := append([]byte{}, proof...)
		tampered[i] ^= 0x01
		require.Error(t, verifier.Verify(prop, message, tampered), "byte %d", i)
	}
}
