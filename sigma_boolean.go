package sigma

import (
	"bytes"
	"fmt"
	"strings"
)

// MaxConjectureChildren bounds the arity of a conjecture. Threshold
// children are addressed by a one-byte interpolation point.
const MaxConjectureChildren = 255

// SigmaBoolean is a proposition over sigma-protocol statements. The set of
// implementations is closed; every switch over it must be exhaustive.
type SigmaBoolean interface {
	fmt.Stringer
	isSigmaBoolean()
}

// TrivialProp is a constant proposition
type TrivialProp bool

const (
	TrueProp  TrivialProp = true
	FalseProp TrivialProp = false
)

// ProveDlog states knowledge of w such that H = g^w
type ProveDlog struct {
	H Point
}

// ProveDhTuple states knowledge of w such that U = G^w and V = H^w
type ProveDhTuple struct {
	G Point
	H Point
	U Point
	V Point
}

// CAnd requires every child to be proven
type CAnd struct {
	Children []SigmaBoolean
}

// COr requires at least one child to be proven
type COr struct {
	Children []SigmaBoolean
}

// CThreshold requires at least K children to be proven
type CThreshold struct {
	K        int
	Children []SigmaBoolean
}

func (TrivialProp) isSigmaBoolean()   {}
func (*ProveDlog) isSigmaBoolean()    {}
func (*ProveDhTuple) isSigmaBoolean() {}
func (*CAnd) isSigmaBoolean()         {}
func (*COr) isSigmaBoolean()          {}
func (*CThreshold) isSigmaBoolean()   {}

// NewProveDlog creates a discrete-log statement for public key h
func NewProveDlog(h Point) (*ProveDlog, error) {
	if h == nil {
		return nil, ErrInvalidProposition.WithDetails("ProveDlog: nil point")
	}
	return &ProveDlog{H: h}, nil
}

// NewProveDhTuple creates a Diffie-Hellman tuple statement
func NewProveDhTuple(g, h, u, v Point) (*ProveDhTuple, error) {
	if g == nil || h == nil || u == nil || v == nil {
		return nil, ErrInvalidProposition.WithDetails("ProveDhTuple: nil point")
	}
	return &ProveDhTuple{G: g, H: h, U: u, V: v}, nil
}

// NewCAnd creates a conjunction
func NewCAnd(children ...SigmaBoolean) (*CAnd, error) {
	if err := validateChildren("CAND", children); err != nil {
		return nil, err
	}
	return &CAnd{Children: children}, nil
}

// NewCOr creates a disjunction
func NewCOr(children ...SigmaBoolean) (*COr, error) {
	if err := validateChildren("COR", children); err != nil {
		return nil, err
	}
	return &COr{Children: children}, nil
}

// NewCThreshold creates a k-out-of-n conjecture. Any k is accepted;
// Normalize turns out-of-range bounds into trivial propositions.
func NewCThreshold(k int, children ...SigmaBoolean) (*CThreshold, error) {
	if err := validateChildren("CTHRESHOLD", children); err != nil {
		return nil, err
	}
	return &CThreshold{K: k, Children: children}, nil
}

func validateChildren(kind string, children []SigmaBoolean) error {
	if len(children) == 0 {
		return ErrInvalidProposition.WithDetails("%s: no children", kind)
	}
	if len(children) > MaxConjectureChildren {
		return ErrInvalidProposition.WithDetails("%s: %d children exceeds %d", kind, len(children), MaxConjectureChildren)
	}
	for i, c := range children {
		if c == nil {
			return ErrInvalidProposition.WithDetails("%s: child %d is nil", kind, i)
		}
	}
	return nil
}

func (t TrivialProp) String() string {
	if t {
		return "TrueProp"
	}
	return "FalseProp"
}

func (p *ProveDlog) String() string {
	return fmt.Sprintf("ProveDlog(%s)", p.H)
}

func (p *ProveDhTuple) String() string {
	return fmt.Sprintf("ProveDhTuple(%s, %s, %s, %s)", p.G, p.H, p.U, p.V)
}

func (c *CAnd) String() string {
	return "CAND(" + joinChildren(c.Children) + ")"
}

func (c *COr) String() string {
	return "COR(" + joinChildren(c.Children) + ")"
}

func (c *CThreshold) String() string {
	return fmt.Sprintf("CTHRESHOLD(%d; %s)", c.K, joinChildren(c.Children))
}

func joinChildren(children []SigmaBoolean) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// SigmaBooleanEqual reports whether two propositions have the same
// canonical encoding.
func SigmaBooleanEqual(a, b SigmaBoolean) bool {
	ab, errA := SerializeSigmaBoolean(a)
	bb, errB := SerializeSigmaBoolean(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// Normalize removes trivial propositions from conjectures and rewrites
// degenerate conjectures into simpler ones:
//
//	CAND: any false -> false, drop true, one child -> child, none -> true
//	COR: any true -> true, drop false, one child -> child, none -> false
//	CTHRESHOLD(k): each true child lowers k, false children are dropped;
//	  k <= 0 -> true, k > n -> false, k == 1 -> COR, k == n -> CAND
func Normalize(sb SigmaBoolean) (SigmaBoolean, error) {
	switch s := sb.(type) {
	case TrivialProp, *ProveDlog, *ProveDhTuple:
		return sb, nil
	case *CAnd:
		if s == nil {
			return nil, ErrInvalidProposition.WithDetails("nil CAnd")
		}
		kept := make([]SigmaBoolean, 0, len(s.Children))
		for _, child := range s.Children {
			n, err := Normalize(child)
			if err != nil {
				return nil, err
			}
			if t, ok := n.(TrivialProp); ok {
				if !t {
					return FalseProp, nil
				}
				continue
			}
			kept = append(kept, n)
		}
		switch len(kept) {
		case 0:
			return TrueProp, nil
		case 1:
			return kept[0], nil
		}
		return &CAnd{Children: kept}, nil
	case *COr:
		if s == nil {
			return nil, ErrInvalidProposition.WithDetails("nil COr")
		}
		kept := make([]SigmaBoolean, 0, len(s.Children))
		for _, child := range s.Children {
			n, err := Normalize(child)
			if err != nil {
				return nil, err
			}
			if t, ok := n.(TrivialProp); ok {
				if t {
					return TrueProp, nil
				}
				continue
			}
			kept = append(kept, n)
		}
		switch len(kept) {
		case 0:
			return FalseProp, nil
		case 1:
			return kept[0], nil
		}
		return &COr{Children: kept}, nil
	case *CThreshold:
		if s == nil {
			return nil, ErrInvalidProposition.WithDetails("nil CThreshold")
		}
		k := s.K
		kept := make([]SigmaBoolean, 0, len(s.Children))
		for _, child := range s.Children {
			n, err := Normalize(child)
			if err != nil {
				return nil, err
			}
			if t, ok := n.(TrivialProp); ok {
				if t {
					k--
				}
				continue
			}
			kept = append(kept, n)
		}
		switch {
		case k <= 0:
			return TrueProp, nil
		case k > len(kept):
			return FalseProp, nil
		case k == 1:
			return Normalize(&COr{Children: kept})
		case k == len(kept):
			return Normalize(&CAnd{Children: kept})
		}
		return &CThreshold{K: k, Children: kept}, nil
	default:
		return nil, ErrUnsupportedProposition.WithDetails("%T", sb)
	}
}
