package stores

import (
	"sync"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/types"
)

// TenantStore caches resolved tenant snapshots keyed by embed hash. The
// TTL is short so registry edits propagate without a restart.
type TenantStore struct {
	mu      sync.RWMutex
	entries map[string]*types.TenantSnapshot
	ttl     time.Duration
}

// NewTenantStore creates a tenant snapshot store
func NewTenantStore(ttl time.Duration) *TenantStore {
	return &TenantStore{
		entries: make(map[string]*types.TenantSnapshot),
		ttl:     ttl,
	}
}

// Get returns the cached snapshot for a hash, if fresh
func (s *TenantStore) Get(hash string) (*types.TenantSnapshot, bool) {
	s.mu.RLock()
	snap, exists := s.entries[hash]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if snap.IsExpired(s.ttl) {
		s.mu.Lock()
		delete(s.entries, hash)
		s.mu.Unlock()
		return nil, false
	}
	return snap, true
}

// Set stores a tenant snapshot
func (s *TenantStore) Set(snap *types.TenantSnapshot) {
	if snap == nil || snap.Hash == "" {
		return
	}
	snap.CachedAt = time.Now()

	s.mu.Lock()
	s.entries[snap.Hash] = snap
	s.mu.Unlock()
}

// PurgeExpired drops all snapshots past their TTL and returns how many
func (s *TenantStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for hash, snap := range s.entries {
		if snap.IsExpired(s.ttl) {
			delete(s.entries, hash)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached snapshots
func (s *TenantStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
