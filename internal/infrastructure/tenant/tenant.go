// Package tenant manages tenant-specific configurations and context,
// isolating multi-tenancy logic from the rest of the application.
package tenant

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/manager"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/types"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	appconfig "github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// Manager coordinates tenant detection and context creation
type Manager struct {
	detector       *Detector
	cacheManager   *manager.Manager
	contexts       map[string]*Context
	contextMutexes sync.Map // Per-tenant mutexes for fine-grained locking
	globalMutex    sync.RWMutex
	logger         *logging.ChanneledLogger
}

// NewManager creates and initializes a new tenant manager.
func NewManager(logger *logging.ChanneledLogger, cacheManager *manager.Manager) *Manager {
	detector, err := NewDetector(logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize tenant detector: %v", err))
	}

	return &Manager{
		detector:     detector,
		cacheManager: cacheManager,
		contexts:     make(map[string]*Context),
		logger:       logger,
	}
}

// GetContext creates or retrieves a tenant context for the request
func (m *Manager) GetContext(c *gin.Context) (*Context, error) {
	tenantID, err := m.detector.DetectTenant(c)
	if err != nil {
		return nil, fmt.Errorf("tenant detection failed: %w", err)
	}

	return m.GetContextByID(tenantID)
}

// GetContextByID creates or retrieves a tenant context for a known tenant ID
func (m *Manager) GetContextByID(tenantID string) (*Context, error) {
	if ctx, ok := m.cachedContext(tenantID); ok {
		return ctx, nil
	}

	tenantMutexInterface, _ := m.contextMutexes.LoadOrStore(tenantID, &sync.Mutex{})
	tenantMutex := tenantMutexInterface.(*sync.Mutex)

	tenantMutex.Lock()
	defer tenantMutex.Unlock()

	if ctx, ok := m.cachedContext(tenantID); ok {
		return ctx, nil
	}

	// Missing or stale; re-read the registry so status edits propagate
	// along with the per-tenant config.
	if err := m.detector.RefreshRegistry(); err != nil && m.logger != nil {
		m.logger.Tenant().Warn("Registry refresh failed, using cached registry",
			"tenantId", tenantID, "error", err.Error())
	}

	return m.createContext(tenantID)
}

// cachedContext returns a usable cached context, if one exists and is
// still within the config TTL.
func (m *Manager) cachedContext(tenantID string) (*Context, bool) {
	m.globalMutex.RLock()
	ctx, exists := m.contexts[tenantID]
	m.globalMutex.RUnlock()

	if !exists || !m.contextFresh(ctx) {
		return nil, false
	}
	if ctx.Database == nil || ctx.Database.Conn == nil {
		return nil, false
	}
	return ctx, true
}

// contextFresh reports whether a cached context is within the config TTL
func (m *Manager) contextFresh(ctx *Context) bool {
	return time.Since(ctx.LoadedAt) < appconfig.TenantConfigTTL
}

// GetContextByHash resolves a widget embed hash and returns that tenant's context
func (m *Manager) GetContextByHash(hash string) (*Context, error) {
	tenantID, ok := m.resolveHash(hash)
	if !ok {
		return nil, fmt.Errorf("unknown tenant hash: %s", hash)
	}
	return m.GetContextByID(tenantID)
}

// resolveHash consults the snapshot cache before the registry index, so
// the widget query path skips the registry on repeat lookups.
func (m *Manager) resolveHash(hash string) (string, bool) {
	if m.cacheManager != nil {
		if snap, hit := m.cacheManager.GetTenantSnapshot(hash); hit {
			return snap.TenantID, true
		}
	}
	return m.detector.ResolveHash(hash)
}

// createContext creates a new tenant context
func (m *Manager) createContext(tenantID string) (*Context, error) {
	config, err := LoadTenantConfig(tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant config: %w", err)
	}

	db, err := NewDatabase(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	status := m.detector.GetTenantStatus(tenantID)

	loc := time.UTC
	configured := false
	if config.Timezone != "" {
		if parsed, err := time.LoadLocation(config.Timezone); err == nil {
			loc = parsed
			configured = true
		} else if m.logger != nil {
			m.logger.Tenant().Warn("Invalid tenant timezone, falling back to UTC",
				"tenantId", tenantID, "timezone", config.Timezone)
		}
	}

	ctx := &Context{
		TenantID:           tenantID,
		Hash:               config.Hash,
		Config:             config,
		Database:           db,
		Status:             status,
		CacheManager:       m.cacheManager,
		Location:           loc,
		TimezoneConfigured: configured,
		LoadedAt:           time.Now(),
	}

	// Idempotent; lazily created contexts must be able to serve warm
	// reads immediately, not only pre-activated ones.
	if err := ctx.DailyAggregateRepo().EnsureSchema(); err != nil {
		return nil, fmt.Errorf("schema migration failed for tenant %s: %w", tenantID, err)
	}

	if m.cacheManager != nil && config.Hash != "" {
		m.cacheManager.SetTenantSnapshot(&types.TenantSnapshot{
			TenantID:           tenantID,
			Hash:               config.Hash,
			Timezone:           loc.String(),
			TimezoneConfigured: configured,
		})
	}

	m.globalMutex.Lock()
	m.contexts[tenantID] = ctx
	m.globalMutex.Unlock()

	return ctx, nil
}

// PreActivateAllTenants activates all tenants in the registry during startup
func (m *Manager) PreActivateAllTenants() error {
	registry, err := LoadTenantRegistry()
	if err != nil {
		return fmt.Errorf("failed to load tenant registry for pre-activation: %w", err)
	}

	if len(registry.Tenants) == 0 {
		return nil
	}

	var failedTenants []string

	for tenantID, tenantInfo := range registry.Tenants {
		if tenantInfo.Status == "active" {
			continue
		}

		if err := m.preActivateSingleTenant(tenantID); err != nil {
			failedTenants = append(failedTenants, tenantID)
			continue
		}
	}

	if err := m.detector.RefreshRegistry(); err != nil {
		return fmt.Errorf("failed to refresh detector registry: %w", err)
	}

	if len(failedTenants) > 0 {
		return fmt.Errorf("pre-activation failed for tenants: %v", failedTenants)
	}

	return nil
}

// preActivateSingleTenant activates a single tenant during startup
func (m *Manager) preActivateSingleTenant(tenantID string) error {
	ctx, err := m.createContext(tenantID)
	if err != nil {
		return fmt.Errorf("failed to create context for tenant %s: %w", tenantID, err)
	}

	if err := ctx.Database.Conn.Ping(); err != nil {
		return fmt.Errorf("database connection test failed for tenant %s: %w", tenantID, err)
	}

	dbType := "sqlite3"
	if ctx.Database.UseTurso {
		dbType = "turso"
	}
	m.detector.UpdateTenantStatus(tenantID, "active", dbType)

	return nil
}

// GetActiveTenantCount returns the number of active tenants
func (m *Manager) GetActiveTenantCount() (int, error) {
	registry, err := LoadTenantRegistry()
	if err != nil {
		return 0, fmt.Errorf("failed to load tenant registry: %w", err)
	}

	activeCount := 0
	for _, tenantInfo := range registry.Tenants {
		if tenantInfo.Status == "active" {
			activeCount++
		}
	}

	return activeCount, nil
}

// GetCacheManager returns the cache manager for external access
func (m *Manager) GetCacheManager() *manager.Manager {
	return m.cacheManager
}

// GetDetector returns the detector for external access
func (m *Manager) GetDetector() *Detector {
	return m.detector
}

// GetLogger returns the logger for middleware access
func (m *Manager) GetLogger() *logging.ChanneledLogger {
	return m.logger
}

// Close cleans up all tenant contexts
func (m *Manager) Close() error {
	m.globalMutex.Lock()
	defer m.globalMutex.Unlock()

	for _, ctx := range m.contexts {
		if err := ctx.Close(); err != nil {
			continue
		}
	}

	m.contexts = make(map[string]*Context)
	return nil
}
