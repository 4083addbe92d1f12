package sigma

import "fmt"

// UncheckedTree is a finished proof tree: every node carries its
// challenge and every leaf its response. It holds no secrets.
type UncheckedTree interface {
	// Challenge returns the node's challenge
	Challenge() Challenge
	// Proposition returns the statement proven by this subtree
	Proposition() SigmaBoolean
	isUncheckedTree()
}

// UncheckedSchnorr is a proven discrete-log leaf
type UncheckedSchnorr struct {
	Prop       *ProveDlog
	Commitment *FirstDlogProverMessage // nil until recomputed by a verifier
	E          Challenge
	Z          Scalar
}

// UncheckedDhTuple is a proven Diffie-Hellman tuple leaf
type UncheckedDhTuple struct {
	Prop       *ProveDhTuple
	Commitment *FirstDhTupleProverMessage // nil until recomputed by a verifier
	E          Challenge
	Z          Scalar
}

// CAndUncheckedNode is a proven conjunction; every child shares E
type CAndUncheckedNode struct {
	E        Challenge
	Children []UncheckedTree
}

// COrUncheckedNode is a proven disjunction; children challenges XOR to E
type COrUncheckedNode struct {
	E        Challenge
	Children []UncheckedTree
}

// CThresholdUncheckedNode is a proven k-out-of-n conjecture; child i has
// challenge Polynomial(i+1) and Polynomial(0) == E
type CThresholdUncheckedNode struct {
	E          Challenge
	K          int
	Children   []UncheckedTree
	Polynomial *Polynomial
}

func (*UncheckedSchnorr) isUncheckedTree()        {}
func (*UncheckedDhTuple) isUncheckedTree()        {}
func (*CAndUncheckedNode) isUncheckedTree()       {}
func (*COrUncheckedNode) isUncheckedTree()        {}
func (*CThresholdUncheckedNode) isUncheckedTree() {}

func (n *UncheckedSchnorr) Challenge() Challenge        { return n.E }
func (n *UncheckedDhTuple) Challenge() Challenge        { return n.E }
func (n *CAndUncheckedNode) Challenge() Challenge       { return n.E }
func (n *COrUncheckedNode) Challenge() Challenge        { return n.E }
func (n *CThresholdUncheckedNode) Challenge() Challenge { return n.E }

func (n *UncheckedSchnorr) Proposition() SigmaBoolean { return n.Prop }
func (n *UncheckedDhTuple) Proposition() SigmaBoolean { return n.Prop }

func (n *CAndUncheckedNode) Proposition() SigmaBoolean {
	return &CAnd{Children: childPropositions(n.Children)}
}

func (n *COrUncheckedNode) Proposition() SigmaBoolean {
	return &COr{Children: childPropositions(n.Children)}
}

func (n *CThresholdUncheckedNode) Proposition() SigmaBoolean {
	return &CThreshold{K: n.K, Children: childPropositions(n.Children)}
}

func childPropositions(children []UncheckedTree) []SigmaBoolean {
	props := make([]SigmaBoolean, len(children))
	for i, c := range children {
		if !isNilTree(c) {
			props[i] = c.Proposition()
		}
	}
	return props
}

// isNilTree reports whether node is a nil interface or a typed nil pointer
func isNilTree(node UncheckedTree) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *UncheckedSchnorr:
		return n == nil
	case *UncheckedDhTuple:
		return n == nil
	case *CAndUncheckedNode:
		return n == nil
	case *COrUncheckedNode:
		return n == nil
	case *CThresholdUncheckedNode:
		return n == nil
	}
	return false
}

func missingNode(pos NodePosition) error {
	return ErrMalformedProof.WithContext("position", pos.String()).WithDetails("missing proof node at %s", pos)
}

// computeCommitments returns a copy of the tree where every leaf carries
// the commitment implied by its challenge and response.
func computeCommitments(curve Curve, tree UncheckedTree) (UncheckedTree, error) {
	return computeNodeCommitments(curve, tree, nil)
}

func computeNodeCommitments(curve Curve, tree UncheckedTree, pos NodePosition) (UncheckedTree, error) {
	if isNilTree(tree) {
		return nil, missingNode(pos)
	}
	switch n := tree.(type) {
	case *UncheckedSchnorr:
		if n.Prop == nil || n.Z == nil {
			return nil, ErrMalformedProof.WithContext("position", pos.String()).WithDetails("incomplete schnorr leaf")
		}
		out := *n
		out.Commitment = dlogComputeCommitment(curve, n.Prop, n.E, n.Z)
		return &out, nil
	case *UncheckedDhTuple:
		if n.Prop == nil || n.Z == nil {
			return nil, ErrMalformedProof.WithContext("position", pos.String()).WithDetails("incomplete dh tuple leaf")
		}
		out := *n
		out.Commitment = dhtComputeCommitment(curve, n.Prop, n.E, n.Z)
		return &out, nil
	case *CAndUncheckedNode:
		children, err := computeChildCommitments(curve, n.Children, pos)
		if err != nil {
			return nil, err
		}
		return &CAndUncheckedNode{E: n.E, Children: children}, nil
	case *COrUncheckedNode:
		children, err := computeChildCommitments(curve, n.Children, pos)
		if err != nil {
			return nil, err
		}
		return &COrUncheckedNode{E: n.E, Children: children}, nil
	case *CThresholdUncheckedNode:
		children, err := computeChildCommitments(curve, n.Children, pos)
		if err != nil {
			return nil, err
		}
		return &CThresholdUncheckedNode{E: n.E, K: n.K, Children: children, Polynomial: n.Polynomial}, nil
	default:
		return nil, ErrUnsupportedProposition.WithDetails("unchecked node %T", tree)
	}
}

func computeChildCommitments(curve Curve, children []UncheckedTree, pos NodePosition) ([]UncheckedTree, error) {
	out := make([]UncheckedTree, len(children))
	for i, c := range children {
		var err error
		if out[i], err = computeNodeCommitments(curve, c, pos.Child(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CheckConsistency verifies the challenge equations of every conjecture
// and, for leaves that carry a commitment, the leaf verification equation.
// The tree's shape must match prop exactly.
func CheckConsistency(curve Curve, prop SigmaBoolean, tree UncheckedTree) error {
	return checkConsistency(curve, prop, tree, nil)
}

func checkConsistency(curve Curve, prop SigmaBoolean, tree UncheckedTree, pos NodePosition) error {
	fail := func(format string, args ...interface{}) error {
		return ErrConsistencyCheckFailed.WithContext("position", pos.String()).WithDetails(format, args...)
	}
	malformed := func() error {
		return ErrMalformedProof.WithContext("position", pos.String()).
			WithDetails("proof node %T does not match proposition %T", tree, prop)
	}
	if isNilTree(tree) {
		return missingNode(pos)
	}

	switch p := prop.(type) {
	case *ProveDlog:
		n, ok := tree.(*UncheckedSchnorr)
		if !ok || n.Prop == nil || !SigmaBooleanEqual(p, n.Prop) {
			return malformed()
		}
		if n.Z == nil {
			return fail("missing response")
		}
		if n.Commitment != nil && !VerifyDlogTranscript(curve, p, n.Commitment, n.E, n.Z) {
			return fail("schnorr equation does not hold")
		}
		return nil
	case *ProveDhTuple:
		n, ok := tree.(*UncheckedDhTuple)
		if !ok || n.Prop == nil || !SigmaBooleanEqual(p, n.Prop) {
			return malformed()
		}
		if n.Z == nil {
			return fail("missing response")
		}
		if n.Commitment != nil && !VerifyDhTupleTranscript(curve, p, n.Commitment, n.E, n.Z) {
			return fail("dh tuple equations do not hold")
		}
		return nil
	case *CAnd:
		n, ok := tree.(*CAndUncheckedNode)
		if !ok || len(n.Children) != len(p.Children) {
			return malformed()
		}
		for i, c := range n.Children {
			if isNilTree(c) {
				return missingNode(pos.Child(i))
			}
			if !c.Challenge().Equal(n.E) {
				return fail("child %d challenge differs from AND challenge", i)
			}
			if err := checkConsistency(curve, p.Children[i], c, pos.Child(i)); err != nil {
				return err
			}
		}
		return nil
	case *COr:
		n, ok := tree.(*COrUncheckedNode)
		if !ok || len(n.Children) != len(p.Children) {
			return malformed()
		}
		var acc Challenge
		for i, c := range n.Children {
			if isNilTree(c) {
				return missingNode(pos.Child(i))
			}
			acc = acc.Xor(c.Challenge())
			if err := checkConsistency(curve, p.Children[i], c, pos.Child(i)); err != nil {
				return err
			}
		}
		if !acc.Equal(n.E) {
			return fail("OR children challenges do not XOR to %s", n.E)
		}
		return nil
	case *CThreshold:
		n, ok := tree.(*CThresholdUncheckedNode)
		if !ok || len(n.Children) != len(p.Children) || n.K != p.K {
			return malformed()
		}
		if n.Polynomial == nil || n.Polynomial.Degree() != len(n.Children)-n.K {
			return fail("threshold polynomial missing or of wrong degree")
		}
		if !ChallengeFromGF(n.Polynomial.Coefficient(0)).Equal(n.E) {
			return fail("polynomial constant term differs from threshold challenge")
		}
		for i, c := range n.Children {
			if isNilTree(c) {
				return missingNode(pos.Child(i))
			}
			expected := ChallengeFromGF(n.Polynomial.Evaluate(byte(i + 1)))
			if !c.Challenge().Equal(expected) {
				return fail("child %d challenge is not on the threshold polynomial", i)
			}
			if err := checkConsistency(curve, p.Children[i], c, pos.Child(i)); err != nil {
				return err
			}
		}
		return nil
	case TrivialProp:
		return ErrUnsupportedProposition.WithDetails("trivial proposition inside a proof tree")
	default:
		return ErrUnsupportedProposition.WithDetails("%T", prop)
	}
}

func (n *UncheckedSchnorr) String() string {
	return fmt.Sprintf("UncheckedSchnorr(e=%s)", n.E)
}
