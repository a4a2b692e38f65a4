// Package logstore implements the hot tier: asynchronous searches against
// the completion log store and parsing of the returned lines.
package logstore

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
)

var (
	// ErrNotCompletion marks lines whose payload is valid JSON but not a
	// completion event.
	ErrNotCompletion = errors.New("not a completion event")
	// ErrMissingTenantHash marks completion events with no tenant hash.
	ErrMissingTenantHash = errors.New("missing tenant hash")
	// ErrUnparsable marks lines from which no JSON object could be
	// extracted.
	ErrUnparsable = errors.New("no json payload in line")
)

// rowTimeFormats are the timestamp shapes the log store emits on result
// rows, tried in order.
var rowTimeFormats = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// wireEvent is the payload shape logged by the completion handlers.
type wireEvent struct {
	Type           string   `json:"type"`
	TenantHash     string   `json:"tenantHash"`
	TenantID       string   `json:"tenantId"`
	SessionID      string   `json:"sessionId"`
	ConversationID string   `json:"conversationId"`
	Question       string   `json:"question"`
	Answer         string   `json:"answer"`
	Streaming      bool     `json:"streaming"`
	FirstTokenMs   *float64 `json:"firstTokenMs"`
	TotalTimeMs    *float64 `json:"totalTimeMs"`
	ResponseTimeMs *float64 `json:"responseTimeMs"`
	Timestamp      string   `json:"timestamp"`
}

// ParseLine decodes one raw log line into a QA event. Lines arrive with
// arbitrary prefixes (ingest timestamp, request id, level markers) ahead of
// the JSON payload, so decoding falls back to the outermost brace pair.
// rowTimestamp is the log store's own timestamp column and wins over any
// timestamp embedded in the payload.
func ParseLine(rowTimestamp, message string) (*analytics.QAEvent, error) {
	payload := strings.TrimSpace(message)

	var wire wireEvent
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		open := strings.Index(payload, "{")
		close := strings.LastIndex(payload, "}")
		if open < 0 || close <= open {
			return nil, ErrUnparsable
		}
		if err := json.Unmarshal([]byte(payload[open:close+1]), &wire); err != nil {
			return nil, ErrUnparsable
		}
	}

	if wire.Type != analytics.CompletionMarker {
		return nil, ErrNotCompletion
	}
	if wire.TenantHash == "" {
		return nil, ErrMissingTenantHash
	}

	ev := &analytics.QAEvent{
		Timestamp:      resolveTimestamp(rowTimestamp, wire.Timestamp),
		TenantHash:     wire.TenantHash,
		TenantID:       wire.TenantID,
		SessionID:      wire.SessionID,
		ConversationID: wire.ConversationID,
		Question:       wire.Question,
		Answer:         wire.Answer,
		Streaming:      wire.Streaming,
		FirstTokenMs:   wire.FirstTokenMs,
		TotalTimeMs:    wire.TotalTimeMs,
		ResponseTimeMs: wire.ResponseTimeMs,
	}
	return ev, nil
}

// resolveTimestamp prefers the store's row timestamp; events keep a zero
// time when neither source parses, which excludes them from hour bucketing
// but not from totals.
func resolveTimestamp(rowTimestamp, payloadTimestamp string) time.Time {
	for _, candidate := range []string{rowTimestamp, payloadTimestamp} {
		if candidate == "" {
			continue
		}
		for _, format := range rowTimeFormats {
			if ts, err := time.Parse(format, candidate); err == nil {
				return ts.UTC()
			}
		}
	}
	return time.Time{}
}
