// Package manager provides the unified cache facade used across the
// application.
package manager

import (
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/stores"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/types"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// Manager owns all cache stores and instruments access to them
type Manager struct {
	queries *stores.QueryStore
	tenants *stores.TenantStore
	logger  *logging.ChanneledLogger
	metrics *metrics.Registry
}

// NewManager creates the cache manager with stores sized from config
func NewManager(logger *logging.ChanneledLogger, m *metrics.Registry) *Manager {
	return &Manager{
		queries: stores.NewQueryStore(config.QueryResultTTL, config.MaxCachedQueries),
		tenants: stores.NewTenantStore(config.TenantConfigTTL),
		logger:  logger,
		metrics: m,
	}
}

// GetQueryResult returns cached hot-tier events for an identical window
func (m *Manager) GetQueryResult(tenantHash string, w analytics.Window) ([]analytics.QAEvent, bool) {
	start := time.Now()
	events, hit := m.queries.Get(tenantHash, w)

	m.countAccess("queries", hit)
	if m.logger != nil {
		m.logger.LogCacheOperation("get", tenantHash, hit, time.Since(start), tenantHash)
	}
	return events, hit
}

// SetQueryResult caches the parsed events of a completed hot-tier query
func (m *Manager) SetQueryResult(tenantHash string, w analytics.Window, events []analytics.QAEvent) {
	m.queries.Set(tenantHash, w, events)
}

// GetTenantSnapshot returns a cached tenant lookup by embed hash
func (m *Manager) GetTenantSnapshot(hash string) (*types.TenantSnapshot, bool) {
	snap, hit := m.tenants.Get(hash)
	m.countAccess("tenants", hit)
	return snap, hit
}

// SetTenantSnapshot caches a resolved tenant lookup
func (m *Manager) SetTenantSnapshot(snap *types.TenantSnapshot) {
	m.tenants.Set(snap)
}

// PurgeExpired sweeps all stores and returns the total entries removed
func (m *Manager) PurgeExpired() int {
	removed := m.queries.PurgeExpired() + m.tenants.PurgeExpired()
	if removed > 0 && m.logger != nil {
		m.logger.Cache().Info("Cache sweep completed", "removed", removed)
	}
	return removed
}

// Stats reports current store sizes
func (m *Manager) Stats() map[string]int {
	return map[string]int{
		"queries": m.queries.Len(),
		"tenants": m.tenants.Len(),
	}
}

func (m *Manager) countAccess(store string, hit bool) {
	if m.metrics == nil {
		return
	}
	if hit {
		m.metrics.CacheHits.WithLabelValues(store).Inc()
	} else {
		m.metrics.CacheMisses.WithLabelValues(store).Inc()
	}
}
