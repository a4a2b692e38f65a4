// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/performance"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/tenant"
)

// TenantMiddleware resolves the tenant for every request and stores a full
// tenant context on the gin context. Resolution accepts the X-Tenant-ID
// header or the widget embed hash query param.
func TenantMiddleware(tenantManager *tenant.Manager, perfTracker *performance.Tracker) gin.HandlerFunc {
	logger := tenantManager.GetLogger()

	return func(c *gin.Context) {
		start := time.Now()
		marker := perfTracker.StartOperation("middleware_tenant_resolution", "unknown")
		defer marker.Complete()

		marker.AddMetadata("path", c.Request.URL.Path)
		marker.AddMetadata("method", c.Request.Method)

		tenantCtx, err := tenantManager.GetContext(c)
		if err != nil {
			if logger != nil {
				logger.Tenant().Warn("Tenant resolution failed",
					"path", c.Request.URL.Path, "error", err.Error())
			}
			marker.SetSuccess(false)
			marker.SetError(fmt.Errorf("tenant resolution failed: %w", err))
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			c.Abort()
			return
		}

		marker.TenantID = tenantCtx.TenantID
		marker.SetSuccess(true)
		if logger != nil {
			logger.Tenant().Debug("Tenant context resolved",
				"tenantId", tenantCtx.TenantID,
				"duration", time.Since(start))
		}

		c.Set("tenant", tenantCtx)
		c.Next()
	}
}

// GetTenantContext retrieves the tenant context stored by TenantMiddleware
func GetTenantContext(c *gin.Context) (*tenant.Context, bool) {
	value, exists := c.Get("tenant")
	if !exists {
		return nil, false
	}
	tenantCtx, ok := value.(*tenant.Context)
	return tenantCtx, ok
}
