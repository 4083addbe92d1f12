package sigma

import (
    "crypto/sha256"
    "encoding/binary"
    "fmt"
    "io"

    "golang.org/x/crypto/hkdf"
)

// hkdfBlockSize is how much output one HKDF instance yields before the
// reader moves to the next block. HKDF-SHA256 caps output at 255*32 bytes.
const hkdfBlockSize = 255 * sha256.Size

// DeterministicReader is an io.Reader producing an HKDF-SHA256 keystream
// from a seed. Feeding it to WithRandomness makes proofs reproducible,
// which is useful for test vectors. It must never be used with a seed an
// attacker can guess: reusing nonces across messages leaks the secret.
type DeterministicReader struct {
    seed    []byte
    context []byte
    block   uint64
    current io.Reader
    used    int
}

// NewDeterministicReader creates a keystream bound to seed and context
func NewDeterministicReader(seed []byte, context string) (*DeterministicReader, error) {
    if len(seed) < 16 {
        return nil, fmt.Errorf("seed must be at least 16 bytes, got %d", len(seed))
    }
    r := &DeterministicReader{
        seed:    append([]byte{}, seed...),
        context: []byte(context),
    }
    r.nextBlock()
    return r, nil
}

func (r *DeterministicReader) nextBlock() {
    info := make([]byte, 0, len(r.context)+8)
    info = append(info, r.context...)
    info = binary.BigEndian.AppendUint64(info, r.block)
    r.current = hkdf.New(sha256.New, r.seed, []byte("sigma-deterministic-v1"), info)
    r.block++
    r.used = 0
}

func (r *DeterministicReader) Read(p []byte) (int, error) {
    total := 0
    for total < len(p) {
        if r.used == hkdfBlockSize {
            r.nextBlock()
        }
        n := len(p) - total
        if left := hkdfBlockSize - r.used; n > left {
            n = left
        }
        if _, err := io.ReadFull(r.current, p[total:total+n]); err != nil {
            return total, fmt.Errorf("failed to derive bytes from HKDF: %w", err)
        }
        r.used += n
        total += n
    }
    return total, nil
}

// Zeroize clears the seed
func (r *DeterministicReader) Zeroize() {
    ZeroizeBytes(r.seed)
}

// DeriveScalar derives a non-zero scalar from seed and context
func DeriveScalar(curve Curve, seed []byte, context string) (Scalar, error) {
    if curve == nil {
        return nil, fmt.Errorf("curve cannot be nil")
    }
    if len(seed) == 0 {
        return nil, fmt.Errorf("seed cannot be empty")
    }

    hkdfReader := hkdf.New(sha256.New, seed, []byte("sigma-secret-v1"), []byte(context))
    scalarBytes := make([]byte, 64)
    defer ZeroizeBytes(scalarBytes)

    if _, err := io.ReadFull(hkdfReader, scalarBytes); err != nil {
        return nil, fmt.Errorf("failed to derive bytes from HKDF: %w", err)
    }

    scalar := curve.ScalarFromBigEndian(scalarBytes)
    if scalar.IsZero() {
        return nil, fmt.Errorf("derived scalar is zero")
    }
    return scalar, nil
}

// DeriveDlogProverInput derives a discrete-log secret from a seed, so that
// the same seed and context always produce the same ProveDlog key.
func DeriveDlogProverInput(curve Curve, seed []byte, context string) (*DlogProverInput, error) {
    w, err := DeriveScalar(curve, seed, context)
    if err != nil {
        return nil, err
    }
    return NewDlogProverInput(curve, w), nil
}
