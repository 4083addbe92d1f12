package sigma

// Fiat-Shamir tree encoding prefixes
const (
	fsLeafPrefix       byte = 1
	fsConjecturePrefix byte = 0
)

// appendFiatShamirLeaf writes
//
//	0x01 | u16 len | proposition tree bytes | u16 len | commitment bytes
func appendFiatShamirLeaf(buf []byte, prop SigmaBoolean, commitment FirstProverMessage) ([]byte, error) {
	if commitment == nil {
		return nil, ErrProofGenerationFailed.WithDetails("leaf %s has no commitment", prop)
	}
	propBytes, err := PropositionTreeBytes(prop)
	if err != nil {
		return nil, err
	}
	commitmentBytes := commitment.Bytes()

	buf = append(buf, fsLeafPrefix)
	if buf, err = putUint16(buf, len(propBytes)); err != nil {
		return nil, err
	}
	buf = append(buf, propBytes...)
	if buf, err = putUint16(buf, len(commitmentBytes)); err != nil {
		return nil, err
	}
	return append(buf, commitmentBytes...), nil
}

// appendFiatShamirConjecture writes the conjecture header
//
//	0x00 | kind | [k, threshold only] | u16 child count
func appendFiatShamirConjecture(buf []byte, kind conjectureKind, k, childCount int) ([]byte, error) {
	buf = append(buf, fsConjecturePrefix, byte(kind))
	if kind == conjectureThreshold {
		buf = append(buf, byte(k))
	}
	return putUint16(buf, childCount)
}

// fiatShamirTreeBytes encodes the prover's tree with its commitments
func fiatShamirTreeBytes(t unprovenTree) ([]byte, error) {
	return appendFiatShamirUnproven(nil, t)
}

func appendFiatShamirUnproven(buf []byte, t unprovenTree) ([]byte, error) {
	switch n := t.(type) {
	case *unprovenLeaf:
		return appendFiatShamirLeaf(buf, n.prop, n.commitment)
	case *unprovenConjecture:
		buf, err := appendFiatShamirConjecture(buf, n.kind, n.k, len(n.children))
		if err != nil {
			return nil, err
		}
		for _, c := range n.children {
			if buf, err = appendFiatShamirUnproven(buf, c); err != nil {
				return nil, err
			}
		}
		return buf, nil
	default:
		return nil, ErrUnsupportedProposition.WithDetails("unproven node %T", t)
	}
}

// uncheckedFiatShamirBytes encodes a verifier's tree; leaf commitments must
// already be computed.
func uncheckedFiatShamirBytes(t UncheckedTree) ([]byte, error) {
	return appendFiatShamirUnchecked(nil, t)
}

func appendFiatShamirUnchecked(buf []byte, t UncheckedTree) ([]byte, error) {
	var (
		kind     conjectureKind
		k        int
		children []UncheckedTree
	)
	switch n := t.(type) {
	case *UncheckedSchnorr:
		if n.Commitment == nil {
			return nil, ErrConsistencyCheckFailed.WithDetails("schnorr leaf without commitment")
		}
		return appendFiatShamirLeaf(buf, n.Prop, n.Commitment)
	case *UncheckedDhTuple:
		if n.Commitment == nil {
			return nil, ErrConsistencyCheckFailed.WithDetails("dh tuple leaf without commitment")
		}
		return appendFiatShamirLeaf(buf, n.Prop, n.Commitment)
	case *CAndUncheckedNode:
		kind, children = conjectureAnd, n.Children
	case *COrUncheckedNode:
		kind, children = conjectureOr, n.Children
	case *CThresholdUncheckedNode:
		kind, k, children = conjectureThreshold, n.K, n.Children
	default:
		return nil, ErrUnsupportedProposition.WithDetails("unchecked node %T", t)
	}

	buf, err := appendFiatShamirConjecture(buf, kind, k, len(children))
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if buf, err = appendFiatShamirUnchecked(buf, c); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
