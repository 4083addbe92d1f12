package sigma

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of a sigma protocol error
type ErrorCategory string

const (
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategoryProposition   ErrorCategory = "proposition"
	ErrorCategoryProving       ErrorCategory = "proving"
	ErrorCategoryVerification  ErrorCategory = "verification"
	ErrorCategorySerialization ErrorCategory = "serialization"
	ErrorCategoryCryptographic ErrorCategory = "cryptographic"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"      // Non-critical, operation can continue
	ErrorSeverityMedium   ErrorSeverity = "medium"   // Important, may affect functionality
	ErrorSeverityHigh     ErrorSeverity = "high"     // Critical, operation should stop
	ErrorSeverityCritical ErrorSeverity = "critical" // System-level failure
)

// SigmaError represents a structured error in the sigma library
type SigmaError struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"-"` // Original error, not serialized
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface
func (e *SigmaError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *SigmaError) Unwrap() error {
	return e.Cause
}

// Is matches any SigmaError carrying the same code, so copies produced by
// WithCause, WithDetails and WithContext still satisfy errors.Is against
// the package sentinels.
func (e *SigmaError) Is(target error) bool {
	var other *SigmaError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func (e *SigmaError) clone() *SigmaError {
	newError := &SigmaError{
		Category:    e.Category,
		Severity:    e.Severity,
		Code:        e.Code,
		Message:     e.Message,
		Details:     e.Details,
		Recoverable: e.Recoverable,
		Cause:       e.Cause,
		Context:     make(map[string]interface{}, len(e.Context)),
	}
	for k, v := range e.Context {
		newError.Context[k] = v
	}
	return newError
}

// WithContext adds context information to the error
func (e *SigmaError) WithContext(key string, value interface{}) *SigmaError {
	newError := e.clone()
	newError.Context[key] = value
	return newError
}

// WithCause sets the underlying cause of the error
func (e *SigmaError) WithCause(cause error) *SigmaError {
	newError := e.clone()
	newError.Cause = cause
	return newError
}

// WithDetails returns a copy carrying a formatted detail message
func (e *SigmaError) WithDetails(format string, args ...interface{}) *SigmaError {
	newError := e.clone()
	newError.Details = fmt.Sprintf(format, args...)
	return newError
}

// IsRecoverable returns whether the error is recoverable
func (e *SigmaError) IsRecoverable() bool {
	return e.Recoverable
}

// NewSigmaError creates a new sigma error
func NewSigmaError(category ErrorCategory, severity ErrorSeverity, code, message string) *SigmaError {
	return &SigmaError{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Context:     make(map[string]interface{}),
		Recoverable: severity != ErrorSeverityCritical,
	}
}

// Proposition errors
var (
	ErrUnsupportedProposition = NewSigmaError(
		ErrorCategoryProposition, ErrorSeverityHigh, "UNSUPPORTED_PROPOSITION",
		"proposition kind is not supported")

	ErrInvalidProposition = NewSigmaError(
		ErrorCategoryProposition, ErrorSeverityHigh, "INVALID_PROPOSITION",
		"proposition is invalid")
)

// Proving errors
var (
	ErrProofGenerationFailed = NewSigmaError(
		ErrorCategoryProving, ErrorSeverityHigh, "PROOF_GENERATION_FAILED",
		"proof generation failed")
)

// Verification errors
var (
	ErrMalformedProof = NewSigmaError(
		ErrorCategorySerialization, ErrorSeverityHigh, "MALFORMED_PROOF",
		"proof bytes do not match the proposition")

	ErrChallengeMismatch = NewSigmaError(
		ErrorCategoryVerification, ErrorSeverityHigh, "CHALLENGE_MISMATCH",
		"recomputed Fiat-Shamir challenge does not match the proof")

	ErrConsistencyCheckFailed = NewSigmaError(
		ErrorCategoryVerification, ErrorSeverityHigh, "CONSISTENCY_CHECK_FAILED",
		"proof tree challenges are inconsistent")
)

// Cryptographic errors
var (
	ErrRandomnessGeneration = NewSigmaError(
		ErrorCategoryCryptographic, ErrorSeverityCritical, "RANDOMNESS_GENERATION_FAILED",
		"failed to generate secure randomness")

	ErrHashComputation = NewSigmaError(
		ErrorCategoryCryptographic, ErrorSeverityHigh, "HASH_COMPUTATION_FAILED",
		"hash computation failed")
)

// Configuration errors
var (
	ErrInvalidConfiguration = NewSigmaError(
		ErrorCategoryConfiguration, ErrorSeverityHigh, "INVALID_CONFIGURATION",
		"configuration parameters are invalid")
)

// WrapError wraps an existing error with sigma error context
func WrapError(err error, category ErrorCategory, severity ErrorSeverity, code, message string) *SigmaError {
	return NewSigmaError(category, severity, code, message).WithCause(err)
}

// IsErrorCategory checks if an error belongs to a specific category
func IsErrorCategory(err error, category ErrorCategory) bool {
	var sigmaErr *SigmaError
	if errors.As(err, &sigmaErr) {
		return sigmaErr.Category == category
	}
	return false
}

// IsRecoverableError checks if an error is recoverable
func IsRecoverableError(err error) bool {
	var sigmaErr *SigmaError
	if errors.As(err, &sigmaErr) {
		return sigmaErr.IsRecoverable()
	}
	return true // Foreign errors are assumed recoverable
}

// errorCode returns the code of a SigmaError in err's chain, or ""
func errorCode(err error) string {
	var sigmaErr *SigmaError
	if errors.As(err, &sigmaErr) {
		return sigmaErr.Code
	}
	return ""
}
