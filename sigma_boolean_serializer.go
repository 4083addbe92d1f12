package sigma

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Proposition opcodes, shared with the contract expression format
const (
	opAnd          byte = 0x96
	opOr           byte = 0x97
	opAtLeast      byte = 0x98
	opTrivialFalse byte = 0x9E
	opTrivialTrue  byte = 0x9F
	opProveDlog    byte = 0xCD
	opProveDhTuple byte = 0xCE
)

// Expression-tree framing used to embed a leaf proposition in the
// Fiat-Shamir transcript: a header with constant segregation, one
// SigmaProp constant, and a root referencing constant 0.
const (
	treeHeaderConstantSegregation byte = 0x10
	typeCodeSigmaProp             byte = 0x08
	opConstantPlaceholder         byte = 0x73
)

var errUnexpectedEOF = errors.New("unexpected end of input")

// SerializeSigmaBoolean encodes a proposition in its canonical byte form
func SerializeSigmaBoolean(sb SigmaBoolean) ([]byte, error) {
	return appendSigmaBoolean(nil, sb)
}

func appendSigmaBoolean(buf []byte, sb SigmaBoolean) ([]byte, error) {
	var err error
	switch s := sb.(type) {
	case TrivialProp:
		if s {
			return append(buf, opTrivialTrue), nil
		}
		return append(buf, opTrivialFalse), nil
	case *ProveDlog:
		if s == nil || s.H == nil {
			return nil, ErrInvalidProposition.WithDetails("ProveDlog without public key")
		}
		buf = append(buf, opProveDlog)
		return append(buf, s.H.CompressedBytes()...), nil
	case *ProveDhTuple:
		if s == nil || s.G == nil || s.H == nil || s.U == nil || s.V == nil {
			return nil, ErrInvalidProposition.WithDetails("incomplete ProveDhTuple")
		}
		buf = append(buf, opProveDhTuple)
		for _, p := range []Point{s.G, s.H, s.U, s.V} {
			buf = append(buf, p.CompressedBytes()...)
		}
		return buf, nil
	case *CAnd:
		buf = append(buf, opAnd)
		buf = binary.AppendUvarint(buf, uint64(len(s.Children)))
		for _, c := range s.Children {
			if buf, err = appendSigmaBoolean(buf, c); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case *COr:
		buf = append(buf, opOr)
		buf = binary.AppendUvarint(buf, uint64(len(s.Children)))
		for _, c := range s.Children {
			if buf, err = appendSigmaBoolean(buf, c); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case *CThreshold:
		if s.K < 0 {
			return nil, ErrInvalidProposition.WithDetails("negative threshold %d", s.K)
		}
		buf = append(buf, opAtLeast)
		buf = binary.AppendUvarint(buf, uint64(s.K))
		buf = binary.AppendUvarint(buf, uint64(len(s.Children)))
		for _, c := range s.Children {
			if buf, err = appendSigmaBoolean(buf, c); err != nil {
				return nil, err
			}
		}
		return buf, nil
	default:
		return nil, ErrUnsupportedProposition.WithDetails("%T", sb)
	}
}

// PropositionTreeBytes wraps a proposition into the constant-segregated
// expression-tree form hashed by the Fiat-Shamir transform.
func PropositionTreeBytes(sb SigmaBoolean) ([]byte, error) {
	buf := []byte{treeHeaderConstantSegregation}
	buf = binary.AppendUvarint(buf, 1)
	buf = append(buf, typeCodeSigmaProp)
	buf, err := appendSigmaBoolean(buf, sb)
	if err != nil {
		return nil, err
	}
	buf = append(buf, opConstantPlaceholder)
	return binary.AppendUvarint(buf, 0), nil
}

// ParseSigmaBoolean decodes a canonical proposition. Nesting deeper than
// maxDepth and trailing bytes are rejected.
func ParseSigmaBoolean(curve Curve, data []byte, maxDepth int) (SigmaBoolean, error) {
	r := &byteReader{data: data}
	sb, err := parseSigmaBoolean(curve, r, maxDepth)
	if err != nil {
		return nil, ErrInvalidProposition.WithCause(err)
	}
	if r.remaining() != 0 {
		return nil, ErrInvalidProposition.WithDetails("%d trailing bytes", r.remaining())
	}
	return sb, nil
}

func parseSigmaBoolean(curve Curve, r *byteReader, depth int) (SigmaBoolean, error) {
	if depth <= 0 {
		return nil, errors.New("proposition nesting too deep")
	}
	op, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch op {
	case opTrivialTrue:
		return TrueProp, nil
	case opTrivialFalse:
		return FalseProp, nil
	case opProveDlog:
		h, err := readPoint(curve, r)
		if err != nil {
			return nil, err
		}
		return &ProveDlog{H: h}, nil
	case opProveDhTuple:
		points := make([]Point, 4)
		for i := range points {
			if points[i], err = readPoint(curve, r); err != nil {
				return nil, err
			}
		}
		return &ProveDhTuple{G: points[0], H: points[1], U: points[2], V: points[3]}, nil
	case opAnd, opOr:
		children, err := parseChildren(curve, r, depth)
		if err != nil {
			return nil, err
		}
		if op == opAnd {
			return &CAnd{Children: children}, nil
		}
		return &COr{Children: children}, nil
	case opAtLeast:
		k, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		if k > MaxConjectureChildren {
			return nil, fmt.Errorf("threshold %d out of range", k)
		}
		children, err := parseChildren(curve, r, depth)
		if err != nil {
			return nil, err
		}
		return &CThreshold{K: int(k), Children: children}, nil
	default:
		return nil, fmt.Errorf("unknown proposition opcode 0x%02x", op)
	}
}

func parseChildren(curve Curve, r *byteReader, depth int) ([]SigmaBoolean, error) {
	n, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	if n == 0 || n > MaxConjectureChildren {
		return nil, fmt.Errorf("conjecture arity %d out of range", n)
	}
	children := make([]SigmaBoolean, n)
	for i := range children {
		if children[i], err = parseSigmaBoolean(curve, r, depth-1); err != nil {
			return nil, err
		}
	}
	return children, nil
}

func readPoint(curve Curve, r *byteReader) (Point, error) {
	raw, err := r.readBytes(curve.PointSize())
	if err != nil {
		return nil, err
	}
	return curve.PointFromBytes(raw)
}

// byteReader is a bounds-checked cursor over a byte slice
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *byteReader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, errUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errUnexpectedEOF
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *byteReader) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid VLQ integer")
	}
	r.pos += n
	return v, nil
}
