package sigma

import (
	"bytes"
	"io"
)

// PrivateInput is a secret the prover can open a leaf statement with
type PrivateInput interface {
	// PublicImage is the leaf proposition this secret proves
	PublicImage() SigmaBoolean
	// Zeroize clears the secret
	Zeroize()
}

// DlogProverInput holds w for the statement ProveDlog(g^w)
type DlogProverInput struct {
	W     Scalar
	image *ProveDlog
}

// NewDlogProverInput wraps an existing secret exponent
func NewDlogProverInput(curve Curve, w Scalar) *DlogProverInput {
	return &DlogProverInput{
		W:     w,
		image: &ProveDlog{H: curve.BasePoint().Mul(w)},
	}
}

// GenerateDlogProverInput draws a fresh secret from r (crypto/rand if nil)
func GenerateDlogProverInput(curve Curve, r io.Reader) (*DlogProverInput, error) {
	w, err := curve.ScalarRandom(r)
	if err != nil {
		return nil, err
	}
	return NewDlogProverInput(curve, w), nil
}

func (d *DlogProverInput) PublicImage() SigmaBoolean {
	return d.image
}

// ProveDlog returns the public image with its concrete type
func (d *DlogProverInput) ProveDlog() *ProveDlog {
	return d.image
}

func (d *DlogProverInput) Zeroize() {
	if d.W != nil {
		d.W.Zeroize()
	}
}

// DhTupleProverInput holds w for the statement (g, h, g^w, h^w)
type DhTupleProverInput struct {
	W      Scalar
	Common *ProveDhTuple
}

// NewDhTupleProverInput binds w to the tuple (g, h, g^w, h^w)
func NewDhTupleProverInput(g, h Point, w Scalar) *DhTupleProverInput {
	return &DhTupleProverInput{
		W:      w,
		Common: &ProveDhTuple{G: g, H: h, U: g.Mul(w), V: h.Mul(w)},
	}
}

// GenerateDhTupleProverInput draws a random h and a random w, using the
// curve base point as g.
func GenerateDhTupleProverInput(curve Curve, r io.Reader) (*DhTupleProverInput, error) {
	hExp, err := curve.ScalarRandom(r)
	if err != nil {
		return nil, err
	}
	defer hExp.Zeroize()

	w, err := curve.ScalarRandom(r)
	if err != nil {
		return nil, err
	}

	g := curve.BasePoint()
	return NewDhTupleProverInput(g, g.Mul(hExp), w), nil
}

func (d *DhTupleProverInput) PublicImage() SigmaBoolean {
	return d.Common
}

func (d *DhTupleProverInput) Zeroize() {
	if d.W != nil {
		d.W.Zeroize()
	}
}

// findSecret returns the input whose public image equals the leaf
func findSecret(secrets []PrivateInput, leaf SigmaBoolean) PrivateInput {
	leafBytes, err := SerializeSigmaBoolean(leaf)
	if err != nil {
		return nil
	}
	for _, s := range secrets {
		imageBytes, err := SerializeSigmaBoolean(s.PublicImage())
		if err != nil {
			continue
		}
		if bytes.Equal(leafBytes, imageBytes) {
			return s
		}
	}
	return nil
}
