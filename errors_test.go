package sigma

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigmaErrorMatching(t *testing.T) {
	cause := errors.New("short read")
	err := ErrMalformedProof.WithDetails("at %s", NodePosition{0, 1}).WithCause(cause).WithContext("size", 12)

	assert.ErrorIs(t, err, ErrMalformedProof)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrChallengeMismatch)
	assert.Contains(t, err.Error(), "MALFORMED_PROOF")
	assert.Contains(t, err.Error(), "at 0-1")
	assert.Contains(t, err.Error(), "short read")

	// the sentinel is never mutated by the builders
	assert.Empty(t, ErrMalformedProof.Details)
	assert.Nil(t, ErrMalformedProof.Cause)
	assert.Empty(t, ErrMalformedProof.Context)

	wrapped := fmt.Errorf("verify: %w", err)
	assert.ErrorIs(t, wrapped, ErrMalformedProof)
	assert.True(t, IsErrorCategory(wrapped, ErrorCategorySerialization))
	assert.Equal(t, "MALFORMED_PROOF", errorCode(wrapped))
	assert.Equal(t, "", errorCode(cause))
}

func TestErrorRecoverability(t *testing.T) {
	assert.False(t, IsRecoverableError(ErrRandomnessGeneration))
	assert.True(t, IsRecoverableError(ErrChallengeMismatch))
	assert.True(t, IsRecoverableError(errors.New("foreign")))

	custom := WrapError(errors.New("disk"), ErrorCategoryConfiguration, ErrorSeverityCritical, "LOAD_FAILED", "could not load")
	require.False(t, custom.IsRecoverable())
	require.True(t, IsErrorCategory(custom, ErrorCategoryConfiguration))
	require.False(t, IsErrorCategory(errors.New("x"), ErrorCategoryConfiguration))
}

func TestNodePosition(t *testing.T) {
	var root NodePosition
	assert.Equal(t, "root", root.String())

	child := root.Child(2).Child(0)
	assert.Equal(t, "2-0", child.String())

	// siblings do not share storage
	a, b := child.Child(1), child.Child(3)
	assert.Equal(t, "2-0-1", a.String())
	assert.Equal(t, "2-0-3", b.String())
}
