package sigma

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Verifier checks proofs produced by a Prover with the same configuration.
// A Verifier is safe for concurrent use.
type Verifier struct {
	curve Curve
	opts  *option
}

// NewVerifier creates a verifier
func NewVerifier(options ...OptionFunc) (*Verifier, error) {
	opts := applyOpts(options...)
	if err := validateConfig(opts.config); err != nil {
		return nil, err
	}

	curve, err := NewCurve(opts.config.CurveType)
	if err != nil {
		return nil, ErrInvalidConfiguration.WithCause(err)
	}
	return &Verifier{curve: curve, opts: opts}, nil
}

// Curve returns the group the verifier works in
func (v *Verifier) Curve() Curve {
	return v.curve
}

// Verify checks that proof proves prop for message. It returns nil on
// acceptance; every rejection is a *SigmaError.
func (v *Verifier) Verify(prop SigmaBoolean, message, proof []byte) error {
	start := time.Now()
	err := v.verify(prop, message, proof)
	v.report(prop, len(proof), start, err)
	return err
}

// VerifyTree checks an in-memory proof tree. Unlike Verify, the tree's
// challenges are not implied by a wire layout, so the conjecture
// equations are checked before the Fiat-Shamir challenge.
func (v *Verifier) VerifyTree(prop SigmaBoolean, message []byte, tree UncheckedTree) error {
	start := time.Now()
	err := v.verifyTree(prop, message, tree)
	v.report(prop, 0, start, err)
	return err
}

func (v *Verifier) report(prop SigmaBoolean, proofSize int, start time.Time, err error) {
	if err != nil {
		v.opts.logger.Debug("proof rejected", zap.Int("proof_size", proofSize), zap.Error(err))
	}
	if !v.opts.auditing() {
		return
	}

	builder := NewAuditEventBuilder(AuditEventProofVerified).
		WithConfig(v.opts.config).
		WithProposition(prop).
		WithProofSize(proofSize).
		WithDuration(start)

	if err != nil {
		event := builder.WithError(err).Build()
		event.EventType = AuditEventVerificationFailure
		v.opts.audit.OnVerificationFailure(event)
		return
	}
	v.opts.audit.OnProofVerified(builder.Build())
}

// normalizeForVerification returns the normalized proposition, or done
// when a trivial proposition already decides the outcome.
func (v *Verifier) normalizeForVerification(prop SigmaBoolean) (normalized SigmaBoolean, done bool, err error) {
	if prop == nil {
		return nil, true, ErrInvalidProposition.WithDetails("proposition cannot be nil")
	}
	normalized, err = Normalize(prop)
	if err != nil {
		return nil, true, err
	}
	if t, ok := normalized.(TrivialProp); ok {
		if t {
			return normalized, true, nil
		}
		return normalized, true, ErrConsistencyCheckFailed.WithDetails("proposition is false")
	}
	if err := validateProposition(v.opts.config, v.curve, normalized); err != nil {
		return nil, true, err
	}
	return normalized, false, nil
}

func (v *Verifier) verify(prop SigmaBoolean, message, proof []byte) error {
	if len(proof) > v.opts.config.MaxProofSize {
		return ErrMalformedProof.WithDetails("proof of %d bytes exceeds limit %d", len(proof), v.opts.config.MaxProofSize)
	}

	normalized, done, err := v.normalizeForVerification(prop)
	if done {
		return err
	}

	tree, err := ParseSig(v.curve, normalized, proof)
	if err != nil {
		return err
	}
	return v.checkChallenge(tree, message)
}

func (v *Verifier) verifyTree(prop SigmaBoolean, message []byte, tree UncheckedTree) error {
	normalized, done, err := v.normalizeForVerification(prop)
	if done {
		return err
	}
	if tree == nil {
		return ErrMalformedProof.WithDetails("missing proof tree")
	}
	if err := CheckConsistency(v.curve, normalized, tree); err != nil {
		return err
	}
	return v.checkChallenge(tree, message)
}

// checkChallenge recomputes every leaf commitment from its challenge and
// response, then compares the Fiat-Shamir hash of the resulting tree with
// the root challenge.
func (v *Verifier) checkChallenge(tree UncheckedTree, message []byte) error {
	withCommitments, err := computeCommitments(v.curve, tree)
	if err != nil {
		return err
	}
	fsBytes, err := uncheckedFiatShamirBytes(withCommitments)
	if err != nil {
		return err
	}
	expected, err := v.opts.config.HashAlgorithm.FiatShamirChallenge(fsBytes, message)
	if err != nil {
		return err
	}
	if !expected.Equal(tree.Challenge()) {
		return ErrChallengeMismatch
	}
	return nil
}

// VerificationRequest is one entry of a batch
type VerificationRequest struct {
	Proposition SigmaBoolean
	Message     []byte
	Proof       []byte
}

// VerifyBatch verifies independent requests concurrently, bounded by
// Config.MaxConcurrentVerifications. results[i] is the outcome of
// requests[i]. The returned error is non-nil only when ctx was cancelled;
// requests not started by then carry the context error.
func (v *Verifier) VerifyBatch(ctx context.Context, requests []VerificationRequest) ([]error, error) {
	results := make([]error, len(requests))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(v.opts.config.MaxConcurrentVerifications)
	for i := range requests {
		i := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				results[i] = err
				return err
			}
			req := requests[i]
			results[i] = v.Verify(req.Proposition, req.Message, req.Proof)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
