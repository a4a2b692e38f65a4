// Package stores contains the concrete cache stores.
package stores

import (
	"fmt"
	"sync"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/types"
)

// QueryStore caches completed hot-tier query results. Hot tier reads cost
// seconds of polling, so identical windows within the TTL are served from
// memory. Bounded by insertion order, oldest evicted first.
type QueryStore struct {
	mu      sync.RWMutex
	entries map[string]*types.QueryResultEntry
	order   []string
	ttl     time.Duration
	max     int
}

// NewQueryStore creates a bounded query result store
func NewQueryStore(ttl time.Duration, max int) *QueryStore {
	return &QueryStore{
		entries: make(map[string]*types.QueryResultEntry),
		ttl:     ttl,
		max:     max,
	}
}

func queryKey(tenantHash string, w analytics.Window) string {
	return fmt.Sprintf("%s|%d|%d", tenantHash, w.Start.Unix(), w.End.Unix())
}

// Get returns the cached events for an identical window, if fresh
func (s *QueryStore) Get(tenantHash string, w analytics.Window) ([]analytics.QAEvent, bool) {
	key := queryKey(tenantHash, w)

	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if entry.IsExpired(s.ttl) {
		s.mu.Lock()
		s.removeLocked(key)
		s.mu.Unlock()
		return nil, false
	}
	return entry.Events, true
}

// Set stores a completed query result, evicting the oldest insertion when full
func (s *QueryStore) Set(tenantHash string, w analytics.Window, events []analytics.QAEvent) {
	key := queryKey(tenantHash, w)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists {
		for s.max > 0 && len(s.order) >= s.max {
			s.removeLocked(s.order[0])
		}
		s.order = append(s.order, key)
	}
	s.entries[key] = &types.QueryResultEntry{
		Events:   events,
		CachedAt: time.Now(),
	}
}

// PurgeExpired drops all entries past their TTL and returns how many
func (s *QueryStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.IsExpired(s.ttl) {
			s.removeLocked(key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries
func (s *QueryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *QueryStore) removeLocked(key string) {
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
