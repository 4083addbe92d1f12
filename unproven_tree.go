package sigma

// conjectureKind identifies a connective in the Fiat-Shamir tree encoding
type conjectureKind byte

const (
	conjectureAnd       conjectureKind = 0
	conjectureOr        conjectureKind = 1
	conjectureThreshold conjectureKind = 2
)

func (k conjectureKind) String() string {
	switch k {
	case conjectureAnd:
		return "AND"
	case conjectureOr:
		return "OR"
	default:
		return "THRESHOLD"
	}
}

// unprovenTree is the prover's working tree. Every pass returns a new tree;
// nodes are never mutated after construction.
type unprovenTree interface {
	proposition() SigmaBoolean
	position() NodePosition
	isSimulated() bool
	challenge() (Challenge, bool)
	withChallenge(Challenge) unprovenTree
	withSimulated() unprovenTree
}

// leafWitness holds the prover-only data of a leaf. It never reaches an
// UncheckedTree.
type leafWitness struct {
	secret     PrivateInput // real leaves only
	randomness Scalar       // r for real leaves
	response   Scalar       // z chosen while simulating
}

type unprovenLeaf struct {
	prop         SigmaBoolean // *ProveDlog or *ProveDhTuple
	pos          NodePosition
	simulated    bool
	commitment   FirstProverMessage
	e            Challenge
	hasChallenge bool
	witness      *leafWitness
}

type unprovenConjecture struct {
	kind         conjectureKind
	k            int
	pos          NodePosition
	simulated    bool
	e            Challenge
	hasChallenge bool
	children     []unprovenTree
	polynomial   *Polynomial
}

func (l *unprovenLeaf) proposition() SigmaBoolean    { return l.prop }
func (l *unprovenLeaf) position() NodePosition       { return l.pos }
func (l *unprovenLeaf) isSimulated() bool            { return l.simulated }
func (l *unprovenLeaf) challenge() (Challenge, bool) { return l.e, l.hasChallenge }

func (c *unprovenConjecture) position() NodePosition       { return c.pos }
func (c *unprovenConjecture) isSimulated() bool            { return c.simulated }
func (c *unprovenConjecture) challenge() (Challenge, bool) { return c.e, c.hasChallenge }

func (l *unprovenLeaf) withChallenge(e Challenge) unprovenTree {
	out := *l
	out.e, out.hasChallenge = e, true
	return &out
}

func (l *unprovenLeaf) withSimulated() unprovenTree {
	out := *l
	out.simulated = true
	out.witness = &leafWitness{}
	return &out
}

func (c *unprovenConjecture) withChallenge(e Challenge) unprovenTree {
	out := *c
	out.e, out.hasChallenge = e, true
	return &out
}

// withSimulated marks the whole subtree simulated
func (c *unprovenConjecture) withSimulated() unprovenTree {
	out := *c
	out.simulated = true
	out.children = make([]unprovenTree, len(c.children))
	for i, child := range c.children {
		out.children[i] = child.withSimulated()
	}
	return &out
}

func (c *unprovenConjecture) withChildren(children []unprovenTree) *unprovenConjecture {
	out := *c
	out.children = children
	return &out
}

func (c *unprovenConjecture) proposition() SigmaBoolean {
	props := make([]SigmaBoolean, len(c.children))
	for i, child := range c.children {
		props[i] = child.proposition()
	}
	switch c.kind {
	case conjectureAnd:
		return &CAnd{Children: props}
	case conjectureOr:
		return &COr{Children: props}
	default:
		return &CThreshold{K: c.k, Children: props}
	}
}

// buildUnprovenTree converts a normalized proposition into an unproven tree
// and marks every node real or simulated bottom-up: a leaf is real when a
// secret for it is known, AND is real when all children are, OR when any
// child is, and THRESHOLD(k) when at least k children are.
func buildUnprovenTree(sb SigmaBoolean, secrets []PrivateInput, pos NodePosition, depth int) (unprovenTree, error) {
	if depth <= 0 {
		return nil, ErrInvalidProposition.WithContext("position", pos.String()).
			WithDetails("proposition nesting too deep")
	}

	switch s := sb.(type) {
	case *ProveDlog, *ProveDhTuple:
		secret := findSecret(secrets, s)
		return &unprovenLeaf{
			prop:      s,
			pos:       pos,
			simulated: secret == nil,
			witness:   &leafWitness{secret: secret},
		}, nil
	case *CAnd:
		return buildConjecture(conjectureAnd, 0, s.Children, secrets, pos, depth)
	case *COr:
		return buildConjecture(conjectureOr, 0, s.Children, secrets, pos, depth)
	case *CThreshold:
		if s.K < 1 || s.K > len(s.Children) {
			return nil, ErrInvalidProposition.WithContext("position", pos.String()).
				WithDetails("threshold %d of %d children", s.K, len(s.Children))
		}
		return buildConjecture(conjectureThreshold, s.K, s.Children, secrets, pos, depth)
	case TrivialProp:
		return nil, ErrUnsupportedProposition.WithContext("position", pos.String()).
			WithDetails("trivial proposition inside a conjecture; normalize first")
	default:
		return nil, ErrUnsupportedProposition.WithDetails("%T", sb)
	}
}

func buildConjecture(kind conjectureKind, k int, props []SigmaBoolean, secrets []PrivateInput, pos NodePosition, depth int) (unprovenTree, error) {
	if len(props) == 0 {
		return nil, ErrInvalidProposition.WithContext("position", pos.String()).
			WithDetails("%s without children", kind)
	}

	children := make([]unprovenTree, len(props))
	realCount := 0
	for i, p := range props {
		child, err := buildUnprovenTree(p, secrets, pos.Child(i), depth-1)
		if err != nil {
			return nil, err
		}
		if !child.isSimulated() {
			realCount++
		}
		children[i] = child
	}

	var simulated bool
	switch kind {
	case conjectureAnd:
		simulated = realCount < len(children)
	case conjectureOr:
		simulated = realCount == 0
	case conjectureThreshold:
		simulated = realCount < k
	}

	return &unprovenConjecture{
		kind:      kind,
		k:         k,
		pos:       pos,
		simulated: simulated,
		children:  children,
	}, nil
}

// polishSimulated walks top-down so that a real OR keeps exactly one real
// child and a real THRESHOLD(k) exactly k, choosing the lowest indices.
// Children of simulated nodes are simulated as well.
func polishSimulated(t unprovenTree) unprovenTree {
	c, ok := t.(*unprovenConjecture)
	if !ok {
		return t
	}
	if c.simulated {
		return c.withSimulated()
	}

	keep := len(c.children)
	switch c.kind {
	case conjectureOr:
		keep = 1
	case conjectureThreshold:
		keep = c.k
	}

	children := make([]unprovenTree, len(c.children))
	kept := 0
	for i, child := range c.children {
		if !child.isSimulated() && kept < keep {
			kept++
			children[i] = polishSimulated(child)
			continue
		}
		children[i] = child.withSimulated()
	}
	return c.withChildren(children)
}

// zeroizeUnproven clears prover randomness left in a tree
func zeroizeUnproven(t unprovenTree) {
	switch n := t.(type) {
	case *unprovenLeaf:
		if n.witness == nil {
			return
		}
		if n.witness.randomness != nil {
			n.witness.randomness.Zeroize()
		}
	case *unprovenConjecture:
		for _, c := range n.children {
			zeroizeUnproven(c)
		}
	}
}
