package sigma

import (
	"crypto/rand"
	"fmt"
	"time"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	AuditEventProofGenerated      AuditEventType = "proof_generated"
	AuditEventProofVerified       AuditEventType = "proof_verified"
	AuditEventVerificationFailure AuditEventType = "verification_failure"
	AuditEventProvingFailure      AuditEventType = "proving_failure"
)

// AuditEvent represents a single proving or verification event. It never
// carries secrets, nonces or the signed message.
type AuditEvent struct {
	// Event metadata
	EventID   string         `json:"event_id"`
	Timestamp time.Time      `json:"timestamp"`
	EventType AuditEventType `json:"event_type"`

	// Context information
	CurveName     string `json:"curve_name,omitempty"`
	HashAlgorithm string `json:"hash_algorithm,omitempty"`
	Proposition   string `json:"proposition,omitempty"`

	// Proof information
	ProofSize int           `json:"proof_size,omitempty"`
	Leaves    int           `json:"leaves,omitempty"`
	Duration  time.Duration `json:"duration"`

	// Success/failure information
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`

	// Additional context
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AuditEventHandler defines the interface for handling audit events.
// Applications implement this interface to record events according to their needs.
// Handlers may be called from several goroutines during VerifyBatch.
type AuditEventHandler interface {
	// OnProofGenerated is called after a proof was produced
	OnProofGenerated(event *AuditEvent)

	// OnProofVerified is called after a proof was accepted
	OnProofVerified(event *AuditEvent)

	// OnVerificationFailure is called when a proof is rejected
	OnVerificationFailure(event *AuditEvent)

	// OnError is called when proving fails
	OnError(event *AuditEvent)
}

// NullAuditHandler is a no-op implementation of AuditEventHandler
type NullAuditHandler struct{}

func (n *NullAuditHandler) OnProofGenerated(event *AuditEvent)      {}
func (n *NullAuditHandler) OnProofVerified(event *AuditEvent)       {}
func (n *NullAuditHandler) OnVerificationFailure(event *AuditEvent) {}
func (n *NullAuditHandler) OnError(event *AuditEvent)               {}

// AuditEventBuilder helps construct audit events with proper defaults
type AuditEventBuilder struct {
	event *AuditEvent
}

// NewAuditEventBuilder creates a new audit event builder
func NewAuditEventBuilder(eventType AuditEventType) *AuditEventBuilder {
	return &AuditEventBuilder{
		event: &AuditEvent{
			EventID:   generateEventID(),
			Timestamp: time.Now(),
			EventType: eventType,
			Success:   true, // Default to success, can be overridden
			Metadata:  make(map[string]interface{}),
		},
	}
}

// WithConfig records the curve and hash in use
func (b *AuditEventBuilder) WithConfig(cfg Config) *AuditEventBuilder {
	b.event.CurveName = string(cfg.CurveType)
	b.event.HashAlgorithm = cfg.HashAlgorithm.String()
	return b
}

// WithProposition records the proposition and its leaf count
func (b *AuditEventBuilder) WithProposition(sb SigmaBoolean) *AuditEventBuilder {
	if sb == nil {
		return b
	}
	b.event.Proposition = sb.String()
	b.event.Leaves = AssessProposition(sb).Leaves
	return b
}

// WithProofSize sets the serialized proof length
func (b *AuditEventBuilder) WithProofSize(size int) *AuditEventBuilder {
	b.event.ProofSize = size
	return b
}

// WithDuration sets the elapsed time since start
func (b *AuditEventBuilder) WithDuration(start time.Time) *AuditEventBuilder {
	b.event.Duration = time.Since(start)
	return b
}

// WithError marks the event as failed and sets error information
func (b *AuditEventBuilder) WithError(err error) *AuditEventBuilder {
	b.event.Success = false
	if err != nil {
		b.event.Error = err.Error()
		if code := errorCode(err); code != "" {
			b.event.ErrorCode = code
		}
	}
	return b
}

// WithMetadata adds metadata to the event
func (b *AuditEventBuilder) WithMetadata(key string, value interface{}) *AuditEventBuilder {
	b.event.Metadata[key] = value
	return b
}

// Build returns the constructed audit event
func (b *AuditEventBuilder) Build() *AuditEvent {
	return b.event
}

// generateEventID generates a unique event ID
// Uses a combination of timestamp and random bytes to ensure uniqueness
func generateEventID() string {
	timestamp := time.Now().Format("20060102150405.000000")

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Sprintf("%s.%d", timestamp, time.Now().UnixNano()%10000)
	}

	return fmt.Sprintf("%s.%x", timestamp, randomBytes)
}
