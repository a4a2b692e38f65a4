package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/manager"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/performance"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/tenant"
)

// StatusHandlers exposes operational status for the service
type StatusHandlers struct {
	tenantManager *tenant.Manager
	cacheManager  *manager.Manager
	perfTracker   *performance.Tracker
	logger        *logging.ChanneledLogger
	startedAt     time.Time
}

// NewStatusHandlers creates status handlers with injected dependencies
func NewStatusHandlers(tenantManager *tenant.Manager, cacheManager *manager.Manager, perfTracker *performance.Tracker, logger *logging.ChanneledLogger) *StatusHandlers {
	return &StatusHandlers{
		tenantManager: tenantManager,
		cacheManager:  cacheManager,
		perfTracker:   perfTracker,
		logger:        logger,
		startedAt:     time.Now(),
	}
}

// GetHealth handles GET /health
func (h *StatusHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStatus handles GET /api/v1/status
func (h *StatusHandlers) GetStatus(c *gin.Context) {
	activeTenants, err := h.tenantManager.GetActiveTenantCount()
	if err != nil {
		h.logger.System().Warn("Status endpoint could not count tenants", "error", err.Error())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptimeSeconds": int64(time.Since(h.startedAt).Seconds()),
		"activeTenants": activeTenants,
		"cache":         h.cacheManager.Stats(),
		"databasePools": tenant.GetPoolStats(),
		"performance":   h.perfTracker.GetOverallStats(),
	})
}
