package sigma

import (
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func generateDlogSecrets(t *testing.T, curve Curve, n int) []*DlogProverInput {
	t.Helper()
	secrets := make([]*DlogProverInput, n)
	for i := range secrets {
		s, err := GenerateDlogProverInput(curve, nil)
		require.NoError(t, err)
		secrets[i] = s
	}
	return secrets
}

func newTestProver(t *testing.T, secrets []PrivateInput, opts ...OptionFunc) *Prover {
	t.Helper()
	opts = append([]OptionFunc{WithLogger(zaptest.NewLogger(t))}, opts...)
	prover, err := NewProver(secrets, opts...)
	require.NoError(t, err)
	return prover
}

func newTestVerifier(t *testing.T, opts ...OptionFunc) *Verifier {
	t.Helper()
	opts = append([]OptionFunc{WithLogger(zaptest.NewLogger(t))}, opts...)
	verifier, err := NewVerifier(opts...)
	require.NoError(t, err)
	return verifier
}

func mustOr(t *testing.T, children ...SigmaBoolean) *COr {
	t.Helper()
	or, err := NewCOr(children...)
	require.NoError(t, err)
	return or
}

func mustAnd(t *testing.T, children ...SigmaBoolean) *CAnd {
	t.Helper()
	and, err := NewCAnd(children...)
	require.NoError(t, err)
	return and
}

func mustThreshold(t *testing.T, k int, children ...SigmaBoolean) *CThreshold {
	t.Helper()
	th, err := NewCThreshold(k, children...)
	require.NoError(t, err)
	return th
}

func TestProveVerifyRoundTrip(t *testing.T) {
	for _, curveType := range []CurveType{Secp256k1, Ed25519} {
		t.Run(string(curveType), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CurveType = curveType
			curve, err := NewCurve(curveType)
			require.NoError(t, err)

			keys := generateDlogSecrets(t, curve, 4)
			dht, err := GenerateDhTupleProverInput(curve, nil)
			require.NoError(t, err)
			h := func(i int) SigmaBoolean { return keys[i].PublicImage() }

			cases := []struct {
				name    string
				prop    SigmaBoolean
				secrets []PrivateInput
			}{
				{"Dlog", h(0), []PrivateInput{keys[0]}},
				{"DhTuple", dht.PublicImage(), []PrivateInput{dht}},
				{"AndBothKnown", mustAnd(t, h(0), h(1)), []PrivateInput{keys[0], keys[1]}},
				{"OrFirstKnown", mustOr(t, h(0), h(1)), []PrivateInput{keys[0]}},
				{"OrSecondKnown", mustOr(t, h(0), h(1)), []PrivateInput{keys[1]}},
				{"OrBothKnown", mustOr(t, h(0), h(1)), []PrivateInput{keys[0], keys[1]}},
				{"OrOfThreeMiddleKnown", mustOr(t, h(0), h(1), h(2)), []PrivateInput{keys[1]}},
				{"Threshold2of3", mustThreshold(t, 2, h(0), h(1), h(2)), []PrivateInput{keys[0], keys[2]}},
				{"Threshold2of4AllKnown", mustThreshold(t, 2, h(0), h(1), h(2), h(3)), []PrivateInput{keys[0], keys[1], keys[2], keys[3]}},
				{"Threshold3of4", mustThreshold(t, 3, h(0), h(1), h(2), h(3)), []PrivateInput{keys[1], keys[2], keys[3]}},
				{"AndOfOr", mustAnd(t, h(0), mustOr(t, h(1), h(2))), []PrivateInput{keys[0], keys[2]}},
				{"OrOfAnd", mustOr(t, mustAnd(t, h(0), h(1)), mustAnd(t, h(2), h(3))), []PrivateInput{keys[2], keys[3]}},
				{"OrWithSimulatedThreshold", mustOr(t, mustThreshold(t, 2, h(0), h(1), h(2)), h(3)), []PrivateInput{keys[3]}},
				{"OrWithSimulatedOr", mustOr(t, mustAnd(t, h(0), mustOr(t, h(1), h(2))), h(3)), []PrivateInput{keys[3]}},
				{"ThresholdOfMixed", mustThreshold(t, 2, dht.PublicImage(), mustAnd(t, h(0), h(1)), h(2)), []PrivateInput{dht, keys[2]}},
			}

			verifier := newTestVerifier(t, WithConfig(cfg))
			message := []byte("round trip message")
			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					prover := newTestProver(t, tc.secrets, WithConfig(cfg))
					proof, err := prover.Sign(tc.prop, message)
					require.NoError(t, err)
					require.Len(t, proof, AssessProposition(tc.prop).ProofSize)
					require.NoError(t, verifier.Verify(tc.prop, message, proof))

					tree, err := prover.Prove(tc.prop, message)
					require.NoError(t, err)
					require.NoError(t, verifier.VerifyTree(tc.prop, message, tree))
				})
			}
		})
	}
}

func TestOrWrongMessage(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 2)
	prop := mustOr(t, keys[0].PublicImage(), keys[1].PublicImage())

	prover := newTestProver(t, []PrivateInput{keys[0]})
	verifier := newTestVerifier(t)

	proof, err := prover.Sign(prop, []byte("test"))
	require.NoError(t, err)
	require.NoError(t, verifier.Verify(prop, []byte("test"), proof))

	err = verifier.Verify(prop, []byte("test2"), proof)
	require.ErrorIs(t, err, ErrChallengeMismatch)
}

func TestProveInsufficientSecrets(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 3)
	h := func(i int) SigmaBoolean { return keys[i].PublicImage() }

	props := map[string]SigmaBoolean{
		"Dlog":          h(1),
		"AndMissingOne": mustAnd(t, h(0), h(1)),
		"OrNoneKnown":   mustOr(t, h(1), h(2)),
		"Threshold2of3": mustThreshold(t, 2, h(0), h(1), h(2)),
	}

	prover := newTestProver(t, []PrivateInput{keys[0]})
	for name, prop := range props {
		t.Run(name, func(t *testing.T) {
			_, err := prover.Sign(prop, []byte("msg"))
			require.ErrorIs(t, err, ErrProofGenerationFailed)
		})
	}
}

func TestTrivialPropositions(t *testing.T) {
	prover := newTestProver(t, nil)
	verifier := newTestVerifier(t)

	t.Run("TrueHasEmptyProof", func(t *testing.T) {
		proof, err := prover.Sign(TrueProp, []byte("msg"))
		require.NoError(t, err)
		require.Empty(t, proof)
		require.NoError(t, verifier.Verify(TrueProp, []byte("msg"), proof))
		require.NoError(t, verifier.Verify(TrueProp, []byte("msg"), []byte{1, 2, 3}))
	})

	t.Run("FalseCannotBeProven", func(t *testing.T) {
		_, err := prover.Sign(FalseProp, []byte("msg"))
		require.ErrorIs(t, err, ErrProofGenerationFailed)
		require.Error(t, verifier.Verify(FalseProp, []byte("msg"), nil))
	})

	t.Run("NormalizesToTrue", func(t *testing.T) {
		key := generateDlogSecrets(t, NewSecp256k1Curve(), 1)[0]
		prop := mustOr(t, key.PublicImage(), TrueProp)
		proof, err := prover.Sign(prop, []byte("msg"))
		require.NoError(t, err)
		require.Empty(t, proof)
		require.NoError(t, verifier.Verify(prop, []byte("msg"), proof))
	})

	t.Run("TrivialChildrenDropped", func(t *testing.T) {
		keys := generateDlogSecrets(t, NewSecp256k1Curve(), 2)
		prop := mustAnd(t, keys[0].PublicImage(), TrueProp, mustOr(t, FalseProp, keys[1].PublicImage()))
		p := newTestProver(t, []PrivateInput{keys[0], keys[1]})

		proof, err := p.Sign(prop, []byte("msg"))
		require.NoError(t, err)
		require.NoError(t, verifier.Verify(prop, []byte("msg"), proof))

		normalized, err := Normalize(prop)
		require.NoError(t, err)
		require.NoError(t, verifier.Verify(normalized, []byte("msg"), proof))
	})
}

func TestThresholdChallengesLieOnPolynomial(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 3)
	prop := mustThreshold(t, 2, keys[0].PublicImage(), keys[1].PublicImage(), keys[2].PublicImage())

	prover := newTestProver(t, []PrivateInput{keys[0], keys[2]})
	tree, err := prover.Prove(prop, []byte("threshold"))
	require.NoError(t, err)

	node, ok := tree.(*CThresholdUncheckedNode)
	require.True(t, ok)
	require.Equal(t, 2, node.K)
	require.Equal(t, 1, node.Polynomial.Degree())
	require.True(t, ChallengeFromGF(node.Polynomial.Coefficient(0)).Equal(node.E))
	for i, child := range node.Children {
		expected := ChallengeFromGF(node.Polynomial.Evaluate(byte(i + 1)))
		require.True(t, child.Challenge().Equal(expected), "child %d", i)
	}
}

func TestOrChallengesXorToRoot(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 3)
	prop := mustOr(t, keys[0].PublicImage(), keys[1].PublicImage(), keys[2].PublicImage())

	prover := newTestProver(t, []PrivateInput{keys[2]})
	tree, err := prover.Prove(prop, []byte("xor"))
	require.NoError(t, err)

	node, ok := tree.(*COrUncheckedNode)
	require.True(t, ok)
	var acc Challenge
	for _, c := range node.Children {
		acc = acc.Xor(c.Challenge())
	}
	require.True(t, acc.Equal(node.E))
}

func TestAndChildrenShareChallenge(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 2)
	prop := mustAnd(t, keys[0].PublicImage(), keys[1].PublicImage())

	prover := newTestProver(t, []PrivateInput{keys[0], keys[1]})
	tree, err := prover.Prove(prop, []byte("and"))
	require.NoError(t, err)

	node, ok := tree.(*CAndUncheckedNode)
	require.True(t, ok)
	for _, c := range node.Children {
		require.Equal(t, node.E, c.Challenge())
	}
}

// The real branch of an OR must not be recognizable from the proof: the
// challenges of both branches are uniformly distributed whichever secret
// was used.
func TestOrProofsHideRealBranch(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 2)
	prop := mustOr(t, keys[0].PublicImage(), keys[1].PublicImage())

	const samples = 200
	for realIdx := range keys {
		prover := newTestProver(t, []PrivateInput{keys[realIdx]})

		var sums [2]int
		firstSmaller := 0
		for i := 0; i < samples; i++ {
			tree, err := prover.Prove(prop, []byte{byte(i)})
			require.NoError(t, err)
			node := tree.(*COrUncheckedNode)
			e0, e1 := node.Children[0].Challenge(), node.Children[1].Challenge()
			sums[0] += int(e0[0])
			sums[1] += int(e1[0])
			if e0[0] < e1[0] {
				firstSmaller++
			}
		}

		for child, sum := range sums {
			mean := float64(sum) / samples
			require.InDelta(t, 127.5, mean, 30, "real=%d child=%d", realIdx, child)
		}
		require.InDelta(t, 0.5, float64(firstSmaller)/samples, 0.2, "real=%d", realIdx)
	}
}

func TestDeterministicProofs(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 3)
	prop := mustThreshold(t, 2, keys[0].PublicImage(), keys[1].PublicImage(), keys[2].PublicImage())
	secrets := []PrivateInput{keys[0], keys[1]}
	message := []byte("reproducible")

	sign := func(seed string) []byte {
		reader, err := NewDeterministicReader([]byte(seed), "prover-test")
		require.NoError(t, err)
		prover := newTestProver(t, secrets, WithRandomness(reader))
		proof, err := prover.Sign(prop, message)
		require.NoError(t, err)
		return proof
	}

	first := sign("0123456789abcdef-seed-a")
	require.Equal(t, first, sign("0123456789abcdef-seed-a"))
	require.NotEqual(t, first, sign("0123456789abcdef-seed-b"))

	verifier := newTestVerifier(t)
	require.NoError(t, verifier.Verify(prop, message, first))
}

func TestSerializationIsDeterministic(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 3)
	prop := mustOr(t, mustAnd(t, keys[0].PublicImage(), keys[1].PublicImage()), keys[2].PublicImage())

	prover := newTestProver(t, []PrivateInput{keys[2]})
	tree, err := prover.Prove(prop, []byte("bytes"))
	require.NoError(t, err)

	a, err := SerializeSig(tree)
	require.NoError(t, err)
	b, err := SerializeSig(tree)
	require.NoError(t, err)
	require.Equal(t, a, b)

	parsed, err := ParseSig(curve, prop, a)
	require.NoError(t, err)
	c, err := SerializeSig(parsed)
	require.NoError(t, err)
	require.Equal(t, a, c)
}

func TestProveRandomnessFailure(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 2)
	prop := mustOr(t, keys[0].PublicImage(), keys[1].PublicImage())

	prover := newTestProver(t, []PrivateInput{keys[0]},
		WithRandomness(iotest.ErrReader(errors.New("entropy exhausted"))))
	_, err := prover.Sign(prop, []byte("msg"))
	require.ErrorIs(t, err, ErrRandomnessGeneration)
	require.False(t, IsRecoverableError(err))
}

func TestProverRejectsNilSecret(t *testing.T) {
	_, err := NewProver([]PrivateInput{nil})
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestProverAuditEvents(t *testing.T) {
	curve := NewSecp256k1Curve()
	keys := generateDlogSecrets(t, curve, 2)
	prop := mustOr(t, keys[0].PublicImage(), keys[1].PublicImage())

	handler := NewMockAuditHandler()
	prover := newTestProver(t, []PrivateInput{keys[0]}, WithAuditHandler(handler))

	proof, err := prover.Sign(prop, []byte("audited"))
	require.NoError(t, err)
	require.Len(t, handler.generated, 1)
	event := handler.generated[0]
	require.True(t, event.Success)
	require.Equal(t, len(proof), event.ProofSize)
	require.Equal(t, 2, event.Leaves)
	require.Equal(t, "secp256k1", event.CurveName)

	_, err = prover.Sign(mustAnd(t, keys[0].PublicImage(), keys[1].PublicImage()), []byte("audited"))
	require.Error(t, err)
	require.Len(t, handler.errors, 1)
	require.False(t, handler.errors[0].Success)
	require.Equal(t, "PROOF_GENERATION_FAILED", handler.errors[0].ErrorCode)
}
