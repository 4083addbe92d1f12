package sigma

import (
	"bytes"
	"fmt"
	"sort"
)

// SecurityLevel rates a configuration or proposition
type SecurityLevel string

const (
	SecurityLevelLow    SecurityLevel = "low"
	SecurityLevelMedium SecurityLevel = "medium"
	SecurityLevelHigh   SecurityLevel = "high"
)

// ValidationResult contains the result of parameter validation
type ValidationResult struct {
	Valid           bool          `json:"valid"`
	SecurityLevel   SecurityLevel `json:"security_level"`
	Warnings        []string      `json:"warnings,omitempty"`
	Errors          []string      `json:"errors,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
}

func newValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:           true,
		SecurityLevel:   SecurityLevelHigh,
		Warnings:        []string{},
		Errors:          []string{},
		Recommendations: []string{},
	}
}

func (r *ValidationResult) fail(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

// merge folds other into r, keeping the lower security level
func (r *ValidationResult) merge(other *ValidationResult) {
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Recommendations = append(r.Recommendations, other.Recommendations...)
	r.SecurityLevel = minSecurityLevel(r.SecurityLevel, other.SecurityLevel)
}

// PropositionValidator checks the structural limits of a proposition
type PropositionValidator struct {
	MaxDepth    int `json:"max_depth"`
	MaxChildren int `json:"max_children"`
}

// NewPropositionValidator creates a validator with the limits from cfg
func NewPropositionValidator(cfg Config) *PropositionValidator {
	return &PropositionValidator{
		MaxDepth:    cfg.MaxTreeDepth,
		MaxChildren: cfg.MaxChildren,
	}
}

// ValidateThresholdParameters validates k-out-of-n parameters
func (pv *PropositionValidator) ValidateThresholdParameters(childCount, k int) *ValidationResult {
	result := newValidationResult()

	if k <= 0 {
		result.fail("threshold must be positive")
	}
	if childCount <= 0 {
		result.fail("threshold needs at least one child")
	}
	if k > childCount {
		result.fail(fmt.Sprintf("threshold %d exceeds child count %d", k, childCount))
	}
	if childCount > pv.MaxChildren {
		result.fail(fmt.Sprintf("child count %d exceeds maximum of %d", childCount, pv.MaxChildren))
	}
	if !result.Valid {
		result.SecurityLevel = SecurityLevelLow
		return result
	}

	if k == 1 {
		result.Warnings = append(result.Warnings, "threshold of 1 is equivalent to OR")
		result.Recommendations = append(result.Recommendations, "use COr for a smaller proof")
	}
	if k == childCount {
		result.Warnings = append(result.Warnings, "threshold equals child count - equivalent to AND")
		result.Recommendations = append(result.Recommendations, "use CAnd for a smaller proof")
	}

	return result
}

// ValidateProposition walks the proposition and reports depth, arity and
// threshold violations. Duplicate leaves and trivial children only warn.
func (pv *PropositionValidator) ValidateProposition(sb SigmaBoolean) *ValidationResult {
	result := newValidationResult()
	if sb == nil {
		result.fail("proposition cannot be nil")
		result.SecurityLevel = SecurityLevelLow
		return result
	}

	pv.validateNode(sb, nil, 1, result)

	if dups := findDuplicateLeaves(sb); len(dups) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("leaves repeated at positions %v", dups))
		result.SecurityLevel = minSecurityLevel(result.SecurityLevel, SecurityLevelMedium)
	}
	if !result.Valid {
		result.SecurityLevel = SecurityLevelLow
	}
	return result
}

func (pv *PropositionValidator) validateNode(sb SigmaBoolean, pos NodePosition, depth int, result *ValidationResult) {
	if depth > pv.MaxDepth {
		result.fail(fmt.Sprintf("proposition at %s exceeds depth %d", pos, pv.MaxDepth))
		return
	}

	var children []SigmaBoolean
	switch s := sb.(type) {
	case TrivialProp:
		if pos != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("trivial proposition at %s", pos))
			result.Recommendations = append(result.Recommendations, "normalize the proposition before proving")
		}
		return
	case *ProveDlog:
		if s == nil || s.H == nil {
			result.fail(fmt.Sprintf("ProveDlog at %s has no public key", pos))
		}
		return
	case *ProveDhTuple:
		if s == nil || s.G == nil || s.H == nil || s.U == nil || s.V == nil {
			result.fail(fmt.Sprintf("ProveDhTuple at %s is incomplete", pos))
		}
		return
	case *CAnd:
		if s == nil {
			result.fail(fmt.Sprintf("nil CAnd at %s", pos))
			return
		}
		children = s.Children
	case *COr:
		if s == nil {
			result.fail(fmt.Sprintf("nil COr at %s", pos))
			return
		}
		children = s.Children
	case *CThreshold:
		if s == nil {
			result.fail(fmt.Sprintf("nil CThreshold at %s", pos))
			return
		}
		children = s.Children
		result.merge(pv.ValidateThresholdParameters(len(children), s.K))
	default:
		result.fail(fmt.Sprintf("unsupported proposition %T at %s", sb, pos))
		return
	}

	if len(children) == 0 {
		result.fail(fmt.Sprintf("conjecture at %s has no children", pos))
	}
	if len(children) > pv.MaxChildren {
		result.fail(fmt.Sprintf("conjecture at %s has %d children, maximum is %d", pos, len(children), pv.MaxChildren))
	}
	for i, c := range children {
		if c == nil {
			result.fail(fmt.Sprintf("nil child at %s", pos.Child(i)))
			continue
		}
		pv.validateNode(c, pos.Child(i), depth+1, result)
	}
}

// findDuplicateLeaves returns the positions of leaves that appear more than once
func findDuplicateLeaves(sb SigmaBoolean) []string {
	positions := make(map[string][]string)
	var walk func(SigmaBoolean, NodePosition)
	walk = func(node SigmaBoolean, pos NodePosition) {
		switch s := node.(type) {
		case *ProveDlog, *ProveDhTuple:
			key, err := SerializeSigmaBoolean(s)
			if err == nil {
				positions[string(key)] = append(positions[string(key)], pos.String())
			}
		case *CAnd:
			for i, c := range s.Children {
				walk(c, pos.Child(i))
			}
		case *COr:
			for i, c := range s.Children {
				walk(c, pos.Child(i))
			}
		case *CThreshold:
			for i, c := range s.Children {
				walk(c, pos.Child(i))
			}
		}
	}
	walk(sb, nil)

	var dups []string
	for _, p := range positions {
		if len(p) > 1 {
			dups = append(dups, p...)
		}
	}
	sort.Strings(dups)
	return dups
}

// PropositionAssessment summarizes what a proposition demands of a prover
type PropositionAssessment struct {
	Leaves             int `json:"leaves"`
	Depth              int `json:"depth"`
	MaxArity           int `json:"max_arity"`
	MinSecretsRequired int `json:"min_secrets_required"` // fewest leaf secrets that make the root real
	ProofSize          int `json:"proof_size"`           // serialized proof length in bytes
}

// AssessProposition computes the shape statistics of a proposition. The
// proof size is exact since the signature layout depends only on the shape.
func AssessProposition(sb SigmaBoolean) *PropositionAssessment {
	a := &PropositionAssessment{}
	a.MinSecretsRequired = assessNode(sb, 1, a)
	a.ProofSize = proofSize(sb, true)
	return a
}

func assessNode(sb SigmaBoolean, depth int, a *PropositionAssessment) int {
	if depth > a.Depth {
		a.Depth = depth
	}

	var children []SigmaBoolean
	switch s := sb.(type) {
	case TrivialProp:
		return 0
	case *ProveDlog, *ProveDhTuple:
		a.Leaves++
		return 1
	case *CAnd:
		children = s.Children
	case *COr:
		children = s.Children
	case *CThreshold:
		children = s.Children
	default:
		return 0
	}
	if len(children) > a.MaxArity {
		a.MaxArity = len(children)
	}

	costs := make([]int, len(children))
	for i, c := range children {
		costs[i] = assessNode(c, depth+1, a)
	}
	sort.Ints(costs)

	need := len(costs)
	switch s := sb.(type) {
	case *COr:
		need = 1
	case *CThreshold:
		need = s.K
	}
	total := 0
	for i := 0; i < need && i < len(costs); i++ {
		total += costs[i]
	}
	return total
}

func proofSize(sb SigmaBoolean, writeChallenge bool) int {
	size := 0
	if writeChallenge {
		size = SoundnessBytes
	}
	switch s := sb.(type) {
	case TrivialProp:
		return 0
	case *ProveDlog, *ProveDhTuple:
		return size + GroupSize
	case *CAnd:
		for _, c := range s.Children {
			size += proofSize(c, false)
		}
	case *COr:
		for i, c := range s.Children {
			size += proofSize(c, i < len(s.Children)-1)
		}
	case *CThreshold:
		size += (len(s.Children) - s.K) * SoundnessBytes
		for _, c := range s.Children {
			size += proofSize(c, false)
		}
	}
	return size
}

// validateProposition turns an invalid ValidationResult, or a point from
// another group, into an error
func validateProposition(cfg Config, curve Curve, sb SigmaBoolean) error {
	result := NewPropositionValidator(cfg).ValidateProposition(sb)
	if !result.Valid {
		return ErrInvalidProposition.WithDetails("%v", result.Errors)
	}
	return checkCurveMembership(curve, sb, nil)
}

// checkCurveMembership rejects propositions whose points belong to a group
// other than curve. Scalars and points of different curves must never meet.
func checkCurveMembership(curve Curve, sb SigmaBoolean, pos NodePosition) error {
	var points []Point
	var children []SigmaBoolean
	switch s := sb.(type) {
	case *ProveDlog:
		points = []Point{s.H}
	case *ProveDhTuple:
		points = []Point{s.G, s.H, s.U, s.V}
	case *CAnd:
		children = s.Children
	case *COr:
		children = s.Children
	case *CThreshold:
		children = s.Children
	}

	for _, p := range points {
		if !pointOnCurve(curve, p) {
			return ErrInvalidProposition.WithContext("position", pos.String()).
				WithDetails("%T at %s is not a %s point", p, pos, curve.Name())
		}
	}
	for i, c := range children {
		if err := checkCurveMembership(curve, c, pos.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

func pointOnCurve(curve Curve, p Point) bool {
	switch curve.(type) {
	case *Secp256k1Curve:
		q, ok := p.(*Secp256k1Point)
		return ok && q != nil
	case *Ed25519Curve:
		q, ok := p.(*Ed25519Point)
		return ok && q != nil && q.inner != nil
	}
	if p == nil {
		return false
	}
	decoded, err := curve.PointFromBytes(p.CompressedBytes())
	return err == nil && bytes.Equal(decoded.CompressedBytes(), p.CompressedBytes())
}

// minSecurityLevel returns the minimum security level between two SecurityLevel values
func minSecurityLevel(level1, level2 SecurityLevel) SecurityLevel {
	levelRanking := map[SecurityLevel]int{
		SecurityLevelLow:    1,
		SecurityLevelMedium: 2,
		SecurityLevelHigh:   3,
	}

	rank1, exists1 := levelRanking[level1]
	if !exists1 {
		rank1 = 2 // Default to medium if unknown
	}

	rank2, exists2 := levelRanking[level2]
	if !exists2 {
		rank2 = 2 // Default to medium if unknown
	}

	if rank1 <= rank2 {
		return level1
	}
	return level2
}
