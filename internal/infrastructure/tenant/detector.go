// Package tenant provides tenant detection and validation.
package tenant

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// Detector resolves tenants from HTTP requests. Dashboard requests carry
// an X-Tenant-ID header; widget-facing requests carry only the public
// embed hash, so the detector keeps a hash index over the registry.
type Detector struct {
	registry    *TenantRegistry
	byHash      map[string]string
	multiTenant bool
	logger      *logging.ChanneledLogger
}

// NewDetector creates a new tenant detector
func NewDetector(logger *logging.ChanneledLogger) (*Detector, error) {
	registry, err := LoadTenantRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant registry: %w", err)
	}

	d := &Detector{
		registry:    registry,
		multiTenant: config.MultiTenantEnabled,
		logger:      logger,
	}
	d.rebuildHashIndex()

	return d, nil
}

// DetectTenant extracts the tenant ID from a request
func (d *Detector) DetectTenant(c *gin.Context) (string, error) {
	if !d.multiTenant {
		return "default", nil
	}

	tenantID := c.GetHeader("X-Tenant-ID")
	if tenantID == "" {
		if hash := c.Query("hash"); hash != "" {
			if id, ok := d.byHash[hash]; ok {
				tenantID = id
			} else {
				return "", fmt.Errorf("unknown tenant hash: %s", hash)
			}
		}
	}

	if tenantID == "" {
		return "", fmt.Errorf("missing tenant ID header in multi-tenant mode")
	}

	if _, exists := d.registry.Tenants[tenantID]; !exists {
		return "", fmt.Errorf("unknown tenant: %s", tenantID)
	}

	return tenantID, nil
}

// ResolveHash maps a widget embed hash to its tenant ID
func (d *Detector) ResolveHash(hash string) (string, bool) {
	id, ok := d.byHash[hash]
	return id, ok
}

// ValidateDomain checks if the request domain is allowed for the tenant
func (d *Detector) ValidateDomain(tenantID, domain string) bool {
	tenantInfo, exists := d.registry.Tenants[tenantID]
	if !exists {
		return false
	}

	for _, allowedDomain := range tenantInfo.Domains {
		if allowedDomain == "*" {
			return true
		}
		if strings.EqualFold(allowedDomain, domain) {
			return true
		}
	}

	return false
}

// GetTenantStatus returns the current status of a tenant
func (d *Detector) GetTenantStatus(tenantID string) string {
	if tenantInfo, exists := d.registry.Tenants[tenantID]; exists {
		return tenantInfo.Status
	}
	return "unknown"
}

// UpdateTenantStatus updates the cached registry status
func (d *Detector) UpdateTenantStatus(tenantID, status, dbType string) {
	if tenantInfo, exists := d.registry.Tenants[tenantID]; exists {
		tenantInfo.Status = status
		if dbType != "" {
			tenantInfo.DatabaseType = dbType
		}
		d.registry.Tenants[tenantID] = tenantInfo
	}
}

// RefreshRegistry reloads the tenant registry from disk
func (d *Detector) RefreshRegistry() error {
	registry, err := LoadTenantRegistry()
	if err != nil {
		return fmt.Errorf("failed to refresh tenant registry: %w", err)
	}
	d.registry = registry
	d.rebuildHashIndex()
	return nil
}

// GetRegistry returns the current registry (for external access)
func (d *Detector) GetRegistry() *TenantRegistry {
	return d.registry
}

func (d *Detector) rebuildHashIndex() {
	index := make(map[string]string, len(d.registry.Tenants))
	for id, info := range d.registry.Tenants {
		if info.Hash != "" {
			index[info.Hash] = id
		}
	}
	d.byHash = index
}
