package sigma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	result := NewDefaultConfigurationValidator().Validate(DefaultConfig())
	require.True(t, result.Valid, "errors: %v", result.Errors)
	require.Empty(t, result.Warnings)
	require.Equal(t, SecurityLevelHigh, result.SecurityLevel)
}

func TestConfigurationValidator(t *testing.T) {
	cv := NewDefaultConfigurationValidator()

	invalid := map[string]func(*Config){
		"UnknownCurve":      func(c *Config) { c.CurveType = "p256" },
		"UnknownHash":       func(c *Config) { c.HashAlgorithm = HashAlgorithm(9) },
		"ZeroDepth":         func(c *Config) { c.MaxTreeDepth = 0 },
		"HugeDepth":         func(c *Config) { c.MaxTreeDepth = 5000 },
		"OneChild":          func(c *Config) { c.MaxChildren = 1 },
		"TooManyChildren":   func(c *Config) { c.MaxChildren = 256 },
		"TinyProofSize":     func(c *Config) { c.MaxProofSize = 10 },
		"NoConcurrency":     func(c *Config) { c.MaxConcurrentVerifications = 0 },
		"NegativeProofSize": func(c *Config) { c.MaxProofSize = -1 },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)

			result := cv.Validate(cfg)
			assert.False(t, result.Valid)
			assert.NotEmpty(t, result.Errors)
			assert.Equal(t, SecurityLevelLow, result.SecurityLevel)

			_, err := NewVerifier(WithConfig(cfg))
			require.ErrorIs(t, err, ErrInvalidConfiguration)
			_, err = NewProver(nil, WithConfig(cfg))
			require.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}

	t.Run("OffChainSettingsWarn", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CurveType = Ed25519
		cfg.HashAlgorithm = SHA256

		result := cv.Validate(cfg)
		assert.True(t, result.Valid)
		assert.Len(t, result.Warnings, 2)
	})
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CurveType = Ed25519

	verifier, err := NewVerifier(WithConfig(cfg), WithLogger(nil), WithAuditHandler(nil))
	require.NoError(t, err)
	require.Equal(t, "ed25519", verifier.Curve().Name())

	prover, err := NewProver(nil)
	require.NoError(t, err)
	require.Equal(t, "secp256k1", prover.Curve().Name())
}

func TestAuditEventsOnlyForRealHandlers(t *testing.T) {
	assert.False(t, applyOpts().auditing())
	assert.False(t, applyOpts(WithAuditHandler(nil)).auditing())

	handler := NewMockAuditHandler()
	require.True(t, applyOpts(WithAuditHandler(handler)).auditing())

	key := generateDlogSecrets(t, NewSecp256k1Curve(), 1)[0]
	verifier, err := NewVerifier(WithAuditHandler(handler))
	require.NoError(t, err)
	require.Error(t, verifier.Verify(key.PublicImage(), []byte("audit"), nil))
	assert.Equal(t, 1, handler.GetEventCount())
}
