// Package types defines shared cache entry shapes.
package types

import (
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
)

// QueryResultEntry is one cached hot-tier query result. Events are shared
// by reference across requests; callers fold from the slice and must never
// mutate it.
type QueryResultEntry struct {
	Events   []analytics.QAEvent
	CachedAt time.Time
}

// IsExpired reports whether the entry is past its TTL
func (e *QueryResultEntry) IsExpired(ttl time.Duration) bool {
	return time.Since(e.CachedAt) > ttl
}

// TenantSnapshot caches the resolved tenant lookup used on the widget
// query path, avoiding a registry read per request.
type TenantSnapshot struct {
	TenantID           string
	Hash               string
	Timezone           string
	TimezoneConfigured bool
	CachedAt           time.Time
}

// IsExpired reports whether the snapshot is past its TTL
func (s *TenantSnapshot) IsExpired(ttl time.Duration) bool {
	return time.Since(s.CachedAt) > ttl
}
