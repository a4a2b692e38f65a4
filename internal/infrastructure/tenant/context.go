// Package tenant provides tenant context management for multi-tenant support.
package tenant

import (
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/manager"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/persistence/warm"
)

// Context holds tenant-specific request context
type Context struct {
	TenantID     string
	Hash         string
	Config       *Config
	Database     *Database
	Status       string
	CacheManager *manager.Manager

	// Location is the tenant's IANA zone resolved at activation. When no
	// zone is configured or it fails to load, Location is UTC and
	// TimezoneConfigured is false; responses surface that distinction.
	Location           *time.Location
	TimezoneConfigured bool

	// LoadedAt stamps when the config was read. Contexts older than the
	// config TTL are rebuilt so registry and timezone edits propagate
	// without a restart.
	LoadedAt time.Time
}

// Close cleans up the tenant context
func (ctx *Context) Close() error {
	if ctx.Database != nil {
		return ctx.Database.Close()
	}
	return nil
}

// GetTenantID returns the tenant ID for this context
func (ctx *Context) GetTenantID() string {
	return ctx.TenantID
}

// GetConfig returns the tenant configuration
func (ctx *Context) GetConfig() *Config {
	return ctx.Config
}

// GetDatabase returns the tenant database connection
func (ctx *Context) GetDatabase() *Database {
	return ctx.Database
}

// GetStatus returns the tenant status
func (ctx *Context) GetStatus() string {
	return ctx.Status
}

// IsActive returns true if the tenant is active
func (ctx *Context) IsActive() bool {
	return ctx.Status == "active"
}

// TimezoneName returns the IANA name of the resolved zone
func (ctx *Context) TimezoneName() string {
	if ctx.Location == nil {
		return "UTC"
	}
	return ctx.Location.String()
}

// GetDatabaseInfo returns database connection information for logging
func (ctx *Context) GetDatabaseInfo() string {
	if ctx.Database != nil {
		return ctx.Database.GetConnectionInfo()
	}
	return "no database connection"
}

// DailyAggregateRepo returns the warm tier repository for this tenant,
// or nil when the tenant has no database attached
func (ctx *Context) DailyAggregateRepo() *warm.DailyAggregateRepository {
	if ctx.Database == nil || ctx.Database.Conn == nil {
		return nil
	}
	return warm.NewDailyAggregateRepository(ctx.Database.Conn)
}
