// Package analytics defines the data structures for tiered conversation analytics.
package analytics

import "time"

// CompletionMarker is the payload type emitted when a widget turn finishes.
const CompletionMarker = "QA_COMPLETE"

// QAEvent is one answered user turn reconstructed from a hot-tier log line
// or carried as a raw sample in a cold-tier archive record.
type QAEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	TenantHash     string    `json:"tenant_hash"`
	TenantID       string    `json:"tenant_id,omitempty"`
	SessionID      string    `json:"session_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer,omitempty"`
	Streaming      bool      `json:"streaming,omitempty"`

	// Timing fields are independently optional; nil means the source
	// never recorded that measurement.
	FirstTokenMs   *float64 `json:"first_token_ms,omitempty"`
	TotalTimeMs    *float64 `json:"total_time_ms,omitempty"`
	ResponseTimeMs *float64 `json:"response_time_ms,omitempty"`
}

// HasTimestamp reports whether the event carries a parsable timestamp.
// Events without one still count toward message totals but are excluded
// from hour and weekday bucketing.
func (ev *QAEvent) HasTimestamp() bool {
	return !ev.Timestamp.IsZero()
}
