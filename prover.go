package sigma

import (
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
)

// Prover produces non-interactive proofs for propositions it holds enough
// secrets for. A Prover is safe for concurrent use.
type Prover struct {
	curve   Curve
	secrets []PrivateInput
	opts    *option
}

// NewProver creates a prover over the given secrets
func NewProver(secrets []PrivateInput, options ...OptionFunc) (*Prover, error) {
	opts := applyOpts(options...)
	if err := validateConfig(opts.config); err != nil {
		return nil, err
	}

	curve, err := NewCurve(opts.config.CurveType)
	if err != nil {
		return nil, ErrInvalidConfiguration.WithCause(err)
	}

	for i, s := range secrets {
		if s == nil || s.PublicImage() == nil {
			return nil, ErrInvalidConfiguration.WithDetails("secret %d is nil", i)
		}
		if err := checkCurveMembership(curve, s.PublicImage(), nil); err != nil {
			return nil, ErrInvalidConfiguration.WithDetails("secret %d is not a %s key", i, curve.Name()).WithCause(err)
		}
	}

	return &Prover{
		curve:   curve,
		secrets: append([]PrivateInput{}, secrets...),
		opts:    opts,
	}, nil
}

// Curve returns the group the prover works in
func (p *Prover) Curve() Curve {
	return p.curve
}

// Prove builds the proof tree for prop bound to message. A proposition that
// normalizes to true has no proof and yields a nil tree.
func (p *Prover) Prove(prop SigmaBoolean, message []byte) (UncheckedTree, error) {
	start := time.Now()
	tree, err := p.prove(prop, message)
	if err != nil {
		p.reportFailure(prop, start, err)
		return nil, err
	}

	if p.opts.auditing() {
		p.opts.audit.OnProofGenerated(NewAuditEventBuilder(AuditEventProofGenerated).
			WithConfig(p.opts.config).
			WithProposition(prop).
			WithDuration(start).
			Build())
	}
	return tree, nil
}

// Sign proves prop for message and serializes the proof. A proposition
// that normalizes to true yields an empty proof.
func (p *Prover) Sign(prop SigmaBoolean, message []byte) ([]byte, error) {
	start := time.Now()
	tree, err := p.prove(prop, message)
	if err != nil {
		p.reportFailure(prop, start, err)
		return nil, err
	}

	proof, err := SerializeSig(tree)
	if err != nil {
		p.reportFailure(prop, start, err)
		return nil, err
	}

	p.opts.logger.Debug("proof generated",
		zap.Int("proof_size", len(proof)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if p.opts.auditing() {
		p.opts.audit.OnProofGenerated(NewAuditEventBuilder(AuditEventProofGenerated).
			WithConfig(p.opts.config).
			WithProposition(prop).
			WithProofSize(len(proof)).
			WithDuration(start).
			Build())
	}
	return proof, nil
}

func (p *Prover) reportFailure(prop SigmaBoolean, start time.Time, err error) {
	p.opts.logger.Warn("proving failed", zap.Error(err))
	if !p.opts.auditing() {
		return
	}
	p.opts.audit.OnError(NewAuditEventBuilder(AuditEventProvingFailure).
		WithConfig(p.opts.config).
		WithProposition(prop).
		WithDuration(start).
		WithError(err).
		Build())
}

func (p *Prover) prove(prop SigmaBoolean, message []byte) (UncheckedTree, error) {
	if prop == nil {
		return nil, ErrInvalidProposition.WithDetails("proposition cannot be nil")
	}
	normalized, err := Normalize(prop)
	if err != nil {
		return nil, err
	}
	if t, ok := normalized.(TrivialProp); ok {
		if t {
			return nil, nil
		}
		return nil, ErrProofGenerationFailed.WithDetails("proposition is false")
	}
	if err := validateProposition(p.opts.config, p.curve, normalized); err != nil {
		return nil, err
	}

	tree, err := buildUnprovenTree(normalized, p.secrets, nil, p.opts.config.MaxTreeDepth)
	if err != nil {
		return nil, err
	}
	if tree.isSimulated() {
		return nil, ErrProofGenerationFailed.WithDetails("secrets are not sufficient to prove the proposition")
	}
	tree = polishSimulated(tree)
	p.opts.logger.Debug("proving", zap.Stringer("proposition", normalized))

	committed, err := simulateAndCommit(p.curve, tree, p.opts.rand)
	if err != nil {
		return nil, proofGenerationError(err)
	}
	defer func() { zeroizeUnproven(committed) }()

	fsBytes, err := fiatShamirTreeBytes(committed)
	if err != nil {
		return nil, proofGenerationError(err)
	}
	rootChallenge, err := p.opts.config.HashAlgorithm.FiatShamirChallenge(fsBytes, message)
	if err != nil {
		return nil, err
	}

	proof, err := proving(p.curve, committed.withChallenge(rootChallenge))
	if err != nil {
		return nil, proofGenerationError(err)
	}
	return proof, nil
}

// proofGenerationError keeps structured errors and wraps anything else
func proofGenerationError(err error) error {
	var sigmaErr *SigmaError
	if errors.As(err, &sigmaErr) {
		return err
	}
	return ErrProofGenerationFailed.WithCause(err)
}

// simulateAndCommit walks the polished tree top-down. Simulated conjectures
// hand challenges to their children, real conjectures hand random
// challenges to their simulated children, real leaves commit to fresh
// randomness and simulated leaves produce an accepting transcript for their
// challenge.
func simulateAndCommit(curve Curve, t unprovenTree, rand io.Reader) (unprovenTree, error) {
	switch n := t.(type) {
	case *unprovenLeaf:
		return commitLeaf(curve, n, rand)
	case *unprovenConjecture:
		return commitConjecture(curve, n, rand)
	default:
		return nil, ErrUnsupportedProposition.WithDetails("unproven node %T", t)
	}
}

func commitLeaf(curve Curve, n *unprovenLeaf, rand io.Reader) (unprovenTree, error) {
	out := *n
	witness := leafWitness{}
	if n.witness != nil {
		witness = *n.witness
	}
	out.witness = &witness

	if n.simulated {
		e, ok := n.challenge()
		if !ok {
			return nil, ErrProofGenerationFailed.WithContext("position", n.pos.String()).
				WithDetails("simulated leaf has no challenge")
		}
		switch prop := n.prop.(type) {
		case *ProveDlog:
			a, z, err := dlogSimulate(curve, prop, e, rand)
			if err != nil {
				return nil, err
			}
			out.commitment, witness.response = a, z
		case *ProveDhTuple:
			a, z, err := dhtSimulate(curve, prop, e, rand)
			if err != nil {
				return nil, err
			}
			out.commitment, witness.response = a, z
		default:
			return nil, ErrUnsupportedProposition.WithDetails("%T", n.prop)
		}
		return &out, nil
	}

	switch prop := n.prop.(type) {
	case *ProveDlog:
		r, a, err := dlogCommit(curve, rand)
		if err != nil {
			return nil, err
		}
		out.commitment, witness.randomness = a, r
	case *ProveDhTuple:
		r, a, err := dhtCommit(curve, prop, rand)
		if err != nil {
			return nil, err
		}
		out.commitment, witness.randomness = a, r
	default:
		return nil, ErrUnsupportedProposition.WithDetails("%T", n.prop)
	}
	return &out, nil
}

func commitConjecture(curve Curve, n *unprovenConjecture, rand io.Reader) (unprovenTree, error) {
	children := append([]unprovenTree{}, n.children...)
	e, hasChallenge := n.challenge()
	if n.simulated && !hasChallenge {
		return nil, ErrProofGenerationFailed.WithContext("position", n.pos.String()).
			WithDetails("simulated %s has no challenge", n.kind)
	}

	var polynomial *Polynomial
	switch {
	case n.simulated && n.kind == conjectureAnd:
		for i := range children {
			children[i] = children[i].withChallenge(e)
		}
	case n.simulated && n.kind == conjectureOr:
		last := len(children) - 1
		acc := e
		for i := 0; i < last; i++ {
			c, err := randomChallenge(rand)
			if err != nil {
				return nil, err
			}
			acc = acc.Xor(c)
			children[i] = children[i].withChallenge(c)
		}
		children[last] = children[last].withChallenge(acc)
	case n.simulated && n.kind == conjectureThreshold:
		var err error
		polynomial, err = NewRandomPolynomial(rand, len(children)-n.k, e.GF())
		if err != nil {
			return nil, err
		}
		for i := range children {
			children[i] = children[i].withChallenge(ChallengeFromGF(polynomial.Evaluate(byte(i + 1))))
		}
	case n.kind == conjectureOr, n.kind == conjectureThreshold:
		// real: simulated children get random challenges now, real ones
		// receive theirs once the root challenge is known
		for i, c := range children {
			if !c.isSimulated() {
				continue
			}
			rc, err := randomChallenge(rand)
			if err != nil {
				return nil, err
			}
			children[i] = c.withChallenge(rc)
		}
	}

	for i, c := range children {
		var err error
		if children[i], err = simulateAndCommit(curve, c, rand); err != nil {
			return nil, err
		}
	}

	out := n.withChildren(children)
	out.polynomial = polynomial
	return out, nil
}

// proving walks the committed tree top-down once the root challenge is set,
// completing the challenges of real children and computing responses.
func proving(curve Curve, t unprovenTree) (UncheckedTree, error) {
	switch n := t.(type) {
	case *unprovenLeaf:
		return proveLeaf(curve, n)
	case *unprovenConjecture:
		return proveConjecture(curve, n)
	default:
		return nil, ErrUnsupportedProposition.WithDetails("unproven node %T", t)
	}
}

func proveLeaf(curve Curve, n *unprovenLeaf) (UncheckedTree, error) {
	e, ok := n.challenge()
	if !ok || n.witness == nil {
		return nil, ErrProofGenerationFailed.WithContext("position", n.pos.String()).
			WithDetails("leaf reached the response step without a challenge")
	}

	switch prop := n.prop.(type) {
	case *ProveDlog:
		z := n.witness.response
		if !n.simulated {
			secret, ok := n.witness.secret.(*DlogProverInput)
			if !ok || n.witness.randomness == nil {
				return nil, ErrProofGenerationFailed.WithContext("position", n.pos.String()).
					WithDetails("real leaf without a discrete-log secret")
			}
			z = dlogResponse(curve, secret, n.witness.randomness, e)
		}
		commitment, _ := n.commitment.(*FirstDlogProverMessage)
		return &UncheckedSchnorr{Prop: prop, Commitment: commitment, E: e, Z: z}, nil
	case *ProveDhTuple:
		z := n.witness.response
		if !n.simulated {
			secret, ok := n.witness.secret.(*DhTupleProverInput)
			if !ok || n.witness.randomness == nil {
				return nil, ErrProofGenerationFailed.WithContext("position", n.pos.String()).
					WithDetails("real leaf without a Diffie-Hellman tuple secret")
			}
			z = dhtResponse(curve, secret, n.witness.randomness, e)
		}
		commitment, _ := n.commitment.(*FirstDhTupleProverMessage)
		return &UncheckedDhTuple{Prop: prop, Commitment: commitment, E: e, Z: z}, nil
	default:
		return nil, ErrUnsupportedProposition.WithDetails("%T", n.prop)
	}
}

func proveConjecture(curve Curve, n *unprovenConjecture) (UncheckedTree, error) {
	e, ok := n.challenge()
	if !ok {
		return nil, ErrProofGenerationFailed.WithContext("position", n.pos.String()).
			WithDetails("%s reached the response step without a challenge", n.kind)
	}

	children := append([]unprovenTree{}, n.children...)
	polynomial := n.polynomial
	if !n.simulated {
		switch n.kind {
		case conjectureAnd:
			for i := range children {
				children[i] = children[i].withChallenge(e)
			}
		case conjectureOr:
			acc := e
			realIdx := -1
			for i, c := range children {
				if !c.isSimulated() {
					realIdx = i
					continue
				}
				ce, _ := c.challenge()
				acc = acc.Xor(ce)
			}
			if realIdx < 0 {
				return nil, ErrProofGenerationFailed.WithContext("position", n.pos.String()).
					WithDetails("real OR without a real child")
			}
			children[realIdx] = children[realIdx].withChallenge(acc)
		case conjectureThreshold:
			var (
				points []byte
				values []GF2_192
			)
			for i, c := range children {
				if c.isSimulated() {
					ce, _ := c.challenge()
					points = append(points, byte(i+1))
					values = append(values, ce.GF())
				}
			}
			var err error
			polynomial, err = InterpolatePolynomial(points, values, e.GF())
			if err != nil {
				return nil, err
			}
			for i, c := range children {
				if !c.isSimulated() {
					children[i] = c.withChallenge(ChallengeFromGF(polynomial.Evaluate(byte(i + 1))))
				}
			}
		}
	}

	proven := make([]UncheckedTree, len(children))
	for i, c := range children {
		var err error
		if proven[i], err = proving(curve, c); err != nil {
			return nil, err
		}
	}

	switch n.kind {
	case conjectureAnd:
		return &CAndUncheckedNode{E: e, Children: proven}, nil
	case conjectureOr:
		return &COrUncheckedNode{E: e, Children: proven}, nil
	default:
		return &CThresholdUncheckedNode{E: e, K: n.k, Children: proven, Polynomial: polynomial}, nil
	}
}
