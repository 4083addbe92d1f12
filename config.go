package sigma

import (
	"fmt"
	"io"
	"runtime"

	"go.uber.org/zap"
)

// Configuration defaults
const (
	DefaultMaxTreeDepth = 110       // nesting limit for propositions and proofs
	DefaultMaxProofSize = 64 * 1024 // bytes
)

// Config holds the parameters shared by provers and verifiers
type Config struct {
	CurveType     CurveType     `json:"curve_type"`
	HashAlgorithm HashAlgorithm `json:"hash_algorithm"`

	// Parsing limits
	MaxTreeDepth int `json:"max_tree_depth"`
	MaxChildren  int `json:"max_children"`
	MaxProofSize int `json:"max_proof_size"`

	// Upper bound on goroutines used by VerifyBatch
	MaxConcurrentVerifications int `json:"max_concurrent_verifications"`
}

// DefaultConfig returns the on-chain compatible configuration: secp256k1
// with Blake2b256 challenges.
func DefaultConfig() Config {
	return Config{
		CurveType:                  Secp256k1,
		HashAlgorithm:              Blake2b256,
		MaxTreeDepth:               DefaultMaxTreeDepth,
		MaxChildren:                MaxConjectureChildren,
		MaxProofSize:               DefaultMaxProofSize,
		MaxConcurrentVerifications: runtime.NumCPU(),
	}
}

type option struct {
	config Config
	logger *zap.Logger
	audit  AuditEventHandler
	rand   io.Reader // nil means crypto/rand
}

func applyOpts(options ...OptionFunc) *option {
	opts := &option{
		config: DefaultConfig(),
		logger: zap.NewNop(),
		audit:  &NullAuditHandler{},
	}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}

// auditing reports whether a real audit handler is installed. Events are
// not built for the null handler.
func (o *option) auditing() bool {
	_, null := o.audit.(*NullAuditHandler)
	return !null
}

// OptionFunc configures a Prover or Verifier
type OptionFunc func(*option)

func WithConfig(cfg Config) OptionFunc {
	return func(o *option) {
		o.config = cfg
	}
}

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithAuditHandler(handler AuditEventHandler) OptionFunc {
	return func(o *option) {
		if handler != nil {
			o.audit = handler
		}
	}
}

// WithRandomness replaces crypto/rand as the source of nonces, simulated
// responses and simulated challenges. Only for tests and reproducible
// vectors; see NewDeterministicReader.
func WithRandomness(r io.Reader) OptionFunc {
	return func(o *option) {
		o.rand = r
	}
}

// ConfigurationValidator checks Config values against hard limits
type ConfigurationValidator struct {
	supportedCurves map[CurveType]bool
	supportedHashes map[HashAlgorithm]bool

	maxTreeDepth int
	maxChildren  int
}

// NewDefaultConfigurationValidator creates a validator with the library limits
func NewDefaultConfigurationValidator() *ConfigurationValidator {
	return &ConfigurationValidator{
		supportedCurves: map[CurveType]bool{
			Secp256k1: true,
			Ed25519:   true,
		},
		supportedHashes: map[HashAlgorithm]bool{
			Blake2b256: true,
			SHA256:     true,
			SHA3_256:   true,
		},
		maxTreeDepth: 1024,
		maxChildren:  MaxConjectureChildren,
	}
}

// Validate reports every problem with cfg. Warnings flag settings that are
// valid but not compatible with the on-chain proof format.
func (cv *ConfigurationValidator) Validate(cfg Config) *ValidationResult {
	result := newValidationResult()

	if !cv.supportedCurves[cfg.CurveType] {
		result.fail(fmt.Sprintf("unsupported curve: %q", cfg.CurveType))
		result.Recommendations = append(result.Recommendations, "use a supported curve: secp256k1 or ed25519")
	} else if cfg.CurveType != Secp256k1 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("curve %s proofs are not verifiable on-chain", cfg.CurveType))
	}

	if !cv.supportedHashes[cfg.HashAlgorithm] {
		result.fail(fmt.Sprintf("unsupported hash algorithm: %s", cfg.HashAlgorithm))
	} else if cfg.HashAlgorithm != Blake2b256 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("hash %s proofs are not verifiable on-chain", cfg.HashAlgorithm))
	}

	if cfg.MaxTreeDepth <= 0 {
		result.fail("max tree depth must be positive")
	} else if cfg.MaxTreeDepth > cv.maxTreeDepth {
		result.fail(fmt.Sprintf("max tree depth %d exceeds limit %d", cfg.MaxTreeDepth, cv.maxTreeDepth))
	}

	if cfg.MaxChildren < 2 || cfg.MaxChildren > cv.maxChildren {
		result.fail(fmt.Sprintf("max children must be in [2, %d], got %d", cv.maxChildren, cfg.MaxChildren))
	}

	if cfg.MaxProofSize < SoundnessBytes+GroupSize {
		result.fail(fmt.Sprintf("max proof size %d cannot hold a single leaf proof", cfg.MaxProofSize))
	}

	if cfg.MaxConcurrentVerifications <= 0 {
		result.fail("max concurrent verifications must be positive")
	} else if cfg.MaxConcurrentVerifications > 4*runtime.NumCPU() {
		result.Warnings = append(result.Warnings, "max concurrent verifications far exceeds available CPUs")
	}

	if !result.Valid {
		result.SecurityLevel = SecurityLevelLow
	}
	return result
}

// validateConfig turns an invalid ValidationResult into an error
func validateConfig(cfg Config) error {
	result := NewDefaultConfigurationValidator().Validate(cfg)
	if result.Valid {
		return nil
	}
	return ErrInvalidConfiguration.WithDetails("%v", result.Errors)
}
