package sigma

import (
	"errors"
	"fmt"
)

// SerializeSig writes a proof tree in pre-order. The root challenge is
// written; AND children inherit it; OR children write theirs except the
// last, which is implied by XOR; THRESHOLD writes the non-constant
// polynomial coefficients and its children's challenges are implied.
// Commitments are never written. A nil tree serializes to an empty proof.
func SerializeSig(tree UncheckedTree) ([]byte, error) {
	if tree == nil {
		return []byte{}, nil
	}
	return appendSig(nil, tree, true)
}

func appendSig(buf []byte, node UncheckedTree, writeChallenge bool) ([]byte, error) {
	if isNilTree(node) {
		return nil, ErrMalformedProof.WithDetails("missing proof node")
	}
	if writeChallenge {
		e := node.Challenge()
		buf = append(buf, e[:]...)
	}

	var err error
	switch n := node.(type) {
	case *UncheckedSchnorr:
		return appendResponse(buf, n.Z)
	case *UncheckedDhTuple:
		return appendResponse(buf, n.Z)
	case *CAndUncheckedNode:
		for _, c := range n.Children {
			if buf, err = appendSig(buf, c, false); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case *COrUncheckedNode:
		last := len(n.Children) - 1
		for i, c := range n.Children {
			if buf, err = appendSig(buf, c, i != last); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case *CThresholdUncheckedNode:
		if n.Polynomial == nil || n.Polynomial.Degree() != len(n.Children)-n.K {
			return nil, ErrConsistencyCheckFailed.WithDetails("threshold node has no polynomial of degree %d", len(n.Children)-n.K)
		}
		buf = append(buf, n.Polynomial.Bytes(false)...)
		for _, c := range n.Children {
			if buf, err = appendSig(buf, c, false); err != nil {
				return nil, err
			}
		}
		return buf, nil
	default:
		return nil, ErrUnsupportedProposition.WithDetails("unchecked node %T", node)
	}
}

func appendResponse(buf []byte, z Scalar) ([]byte, error) {
	if z == nil {
		return nil, ErrConsistencyCheckFailed.WithDetails("leaf without response")
	}
	b := groupSizedBytesOf(z)
	return append(buf, b[:]...), nil
}

// ParseSig reads a proof for prop, which must be normalized and
// non-trivial. The shape comes entirely from prop: truncated input,
// trailing bytes and out-of-range responses are rejected with
// ErrMalformedProof. Leaf commitments are left unset.
func ParseSig(curve Curve, prop SigmaBoolean, proof []byte) (UncheckedTree, error) {
	if _, ok := prop.(TrivialProp); ok {
		return nil, ErrUnsupportedProposition.WithDetails("trivial propositions have no proof")
	}

	r := &byteReader{data: proof}
	tree, err := parseSigNode(curve, r, prop, nil, nil)
	if err != nil {
		var sigmaErr *SigmaError
		if errors.As(err, &sigmaErr) {
			return nil, err
		}
		return nil, ErrMalformedProof.WithCause(err)
	}
	if r.remaining() != 0 {
		return nil, ErrMalformedProof.WithDetails("%d trailing bytes", r.remaining())
	}
	return tree, nil
}

// parseSigNode parses one node. A nil challenge means the challenge is
// read from the input.
func parseSigNode(curve Curve, r *byteReader, prop SigmaBoolean, challenge *Challenge, pos NodePosition) (UncheckedTree, error) {
	var e Challenge
	if challenge != nil {
		e = *challenge
	} else {
		raw, err := r.readBytes(SoundnessBytes)
		if err != nil {
			return nil, fmt.Errorf("challenge at %s: %w", pos, err)
		}
		copy(e[:], raw)
	}

	switch p := prop.(type) {
	case *ProveDlog:
		z, err := readResponse(curve, r, pos)
		if err != nil {
			return nil, err
		}
		return &UncheckedSchnorr{Prop: p, E: e, Z: z}, nil
	case *ProveDhTuple:
		z, err := readResponse(curve, r, pos)
		if err != nil {
			return nil, err
		}
		return &UncheckedDhTuple{Prop: p, E: e, Z: z}, nil
	case *CAnd:
		children := make([]UncheckedTree, len(p.Children))
		for i, c := range p.Children {
			var err error
			if children[i], err = parseSigNode(curve, r, c, &e, pos.Child(i)); err != nil {
				return nil, err
			}
		}
		return &CAndUncheckedNode{E: e, Children: children}, nil
	case *COr:
		if len(p.Children) == 0 {
			return nil, ErrInvalidProposition.WithDetails("OR at %s has no children", pos)
		}
		children := make([]UncheckedTree, len(p.Children))
		last := len(p.Children) - 1
		acc := e
		for i := 0; i < last; i++ {
			child, err := parseSigNode(curve, r, p.Children[i], nil, pos.Child(i))
			if err != nil {
				return nil, err
			}
			acc = acc.Xor(child.Challenge())
			children[i] = child
		}
		child, err := parseSigNode(curve, r, p.Children[last], &acc, pos.Child(last))
		if err != nil {
			return nil, err
		}
		children[last] = child
		return &COrUncheckedNode{E: e, Children: children}, nil
	case *CThreshold:
		n := len(p.Children)
		if p.K < 1 || p.K > n {
			return nil, ErrInvalidProposition.WithDetails("threshold %d of %d at %s", p.K, n, pos)
		}
		coefficients, err := r.readBytes((n - p.K) * SoundnessBytes)
		if err != nil {
			return nil, fmt.Errorf("polynomial at %s: %w", pos, err)
		}
		polynomial, err := PolynomialFromBytes(e.GF(), coefficients)
		if err != nil {
			return nil, err
		}
		children := make([]UncheckedTree, n)
		for i, c := range p.Children {
			ce := ChallengeFromGF(polynomial.Evaluate(byte(i + 1)))
			if children[i], err = parseSigNode(curve, r, c, &ce, pos.Child(i)); err != nil {
				return nil, err
			}
		}
		return &CThresholdUncheckedNode{E: e, K: p.K, Children: children, Polynomial: polynomial}, nil
	case TrivialProp:
		return nil, ErrUnsupportedProposition.WithDetails("trivial proposition at %s; normalize first", pos)
	default:
		return nil, ErrUnsupportedProposition.WithDetails("%T", prop)
	}
}

func readResponse(curve Curve, r *byteReader, pos NodePosition) (Scalar, error) {
	raw, err := r.readBytes(GroupSize)
	if err != nil {
		return nil, fmt.Errorf("response at %s: %w", pos, err)
	}
	var b GroupSizedBytes
	copy(b[:], raw)
	z, err := b.Scalar(curve)
	if err != nil {
		return nil, fmt.Errorf("response at %s: %w", pos, err)
	}
	return z, nil
}
