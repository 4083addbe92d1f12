package sigma

import (
    "bytes"
    "io"
    "testing"
)

func TestDeterministicReader(t *testing.T) {
    seed := []byte("deterministic-reader-test-seed")

    t.Run("SameSeedSameStream", func(t *testing.T) {
        r1, err := NewDeterministicReader(seed, "ctx")
        if err != nil {
            t.Fatalf("Failed to create reader: %v", err)
        }
        r2, err := NewDeterministicReader(seed, "ctx")
        if err != nil {
            t.Fatalf("Failed to create reader: %v", err)
        }

        out1 := make([]byte, 100)
        out2 := make([]byte, 100)
        if _, err := io.ReadFull(r1, out1); err != nil {
            t.Fatalf("Read failed: %v", err)
        }
        // read in uneven pieces
        if _, err := io.ReadFull(r2, out2[:7]); err != nil {
            t.Fatalf("Read failed: %v", err)
        }
        if _, err := io.ReadFull(r2, out2[7:]); err != nil {
            t.Fatalf("Read failed: %v", err)
        }

        if !bytes.Equal(out1, out2) {
            t.Error("Streams from the same seed and context should match")
        }
    })

    t.Run("ContextSeparatesStreams", func(t *testing.T) {
        r1, _ := NewDeterministicReader(seed, "ctx-a")
        r2, _ := NewDeterministicReader(seed, "ctx-b")

        out1 := make([]byte, 32)
        out2 := make([]byte, 32)
        io.ReadFull(r1, out1)
        io.ReadFull(r2, out2)

        if bytes.Equal(out1, out2) {
            t.Error("Different contexts should produce different streams")
        }
    })

    t.Run("CrossesBlockBoundary", func(t *testing.T) {
        r, _ := NewDeterministicReader(seed, "long")
        out := make([]byte, 3*hkdfBlockSize+17)
        n, err := io.ReadFull(r, out)
        if err != nil {
            t.Fatalf("Read across blocks failed: %v", err)
        }
        if n != len(out) {
            t.Fatalf("Expected %d bytes, got %d", len(out), n)
        }

        first := out[:32]
        second := out[hkdfBlockSize : hkdfBlockSize+32]
        if bytes.Equal(first, second) {
            t.Error("Consecutive blocks should not repeat")
        }
    })

    t.Run("ShortSeedRejected", func(t *testing.T) {
        if _, err := NewDeterministicReader([]byte("short"), "ctx"); err == nil {
            t.Error("Seed shorter than 16 bytes should be rejected")
        }
    })
}

func TestDeriveDlogProverInput(t *testing.T) {
    seed := []byte("validator-seed-material-0001")

    for _, curve := range []Curve{NewSecp256k1Curve(), NewEd25519Curve()} {
        t.Run(curve.Name(), func(t *testing.T) {
            key1, err := DeriveDlogProverInput(curve, seed, "key/0")
            if err != nil {
                t.Fatalf("Failed to derive key: %v", err)
            }
            key2, err := DeriveDlogProverInput(curve, seed, "key/0")
            if err != nil {
                t.Fatalf("Failed to derive key: %v", err)
            }
            key3, err := DeriveDlogProverInput(curve, seed, "key/1")
            if err != nil {
                t.Fatalf("Failed to derive key: %v", err)
            }

            if !SigmaBooleanEqual(key1.PublicImage(), key2.PublicImage()) {
                t.Error("Same seed and context should derive the same key")
            }
            if SigmaBooleanEqual(key1.PublicImage(), key3.PublicImage()) {
                t.Error("Different contexts should derive different keys")
            }
        })
    }

    t.Run("EmptySeedRejected", func(t *testing.T) {
        if _, err := DeriveScalar(NewSecp256k1Curve(), nil, "ctx"); err == nil {
            t.Error("Empty seed should be rejected")
        }
    })

    t.Run("NilCurveRejected", func(t *testing.T) {
        if _, err := DeriveScalar(nil, seed, "ctx"); err == nil {
            t.Error("Nil curve should be rejected")
        }
    })
}

func TestDeterministicProofVerifies(t *testing.T) {
    curve := NewSecp256k1Curve()
    key, err := DeriveDlogProverInput(curve, []byte("deterministic-proof-seed"), "signer")
    if err != nil {
        t.Fatalf("Failed to derive key: %v", err)
    }

    reader, err := NewDeterministicReader([]byte("nonce-seed-for-vectors"), "vectors")
    if err != nil {
        t.Fatalf("Failed to create reader: %v", err)
    }
    defer reader.Zeroize()

    prover, err := NewProver([]PrivateInput{key}, WithRandomness(reader))
    if err != nil {
        t.Fatalf("Failed to create prover: %v", err)
    }
    proof, err := prover.Sign(key.PublicImage(), []byte("vector"))
    if err != nil {
        t.Fatalf("Failed to sign: %v", err)
    }

    verifier, err := NewVerifier()
    if err != nil {
        t.Fatalf("Failed to create verifier: %v", err)
    }
    if err := verifier.Verify(key.PublicImage(), []byte("vector"), proof); err != nil {
        t.Errorf("Deterministic proof should verify: %v", err)
    }
}
