// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ParleyLabs/chatdeck-go/internal/application/container"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/manager"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/tenant"
	"github.com/ParleyLabs/chatdeck-go/internal/presentation/http/server"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// Initialize performs the complete multi-tenant startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	// Step 1: Structured logging and metrics come up first so every later
	// step can report through them
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Startup().Info("Chatdeck analytics server starting")

	metricsRegistry := metrics.New(prometheus.DefaultRegisterer)

	// Step 2: Cache and tenant systems
	logger.Startup().Info("Initializing cache system...")
	cacheManager := manager.NewManager(logger, metricsRegistry)

	logger.Startup().Info("Initializing tenant system...")
	tenantManager := tenant.NewManager(logger, cacheManager)

	// Step 3: Load tenant registry to discover all tenants
	registry, err := tenant.LoadTenantRegistry()
	if err != nil {
		return fmt.Errorf("failed to load tenant registry: %w", err)
	}

	if len(registry.Tenants) == 0 {
		logger.Startup().Info("No tenants found in registry, creating default tenant")
		if err := tenant.RegisterTenant("default"); err != nil {
			return fmt.Errorf("failed to register default tenant: %w", err)
		}
		registry, err = tenant.LoadTenantRegistry()
		if err != nil {
			return fmt.Errorf("failed to reload registry: %w", err)
		}
	}
	logger.Startup().Info("Tenant registry loaded", "tenants", len(registry.Tenants))

	// Step 4: Pre-activate inactive tenants
	logger.Startup().Info("Starting tenant pre-activation...")
	if err := tenantManager.PreActivateAllTenants(); err != nil {
		return fmt.Errorf("tenant pre-activation failed: %w", err)
	}

	activeCount, err := tenantManager.GetActiveTenantCount()
	if err != nil {
		return fmt.Errorf("failed to get active tenant count: %w", err)
	}
	logger.Startup().Info("Tenant pre-activation complete", "activeTenants", activeCount)

	// Step 5: Create dependency injection container
	appContainer := container.NewContainer(tenantManager, cacheManager, logger, metricsRegistry)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 6: Start background workers
	logger.Startup().Info("Starting background cache cleanup worker...",
		"interval", config.CleanupInterval)
	appContainer.CleanupWorker.Start()

	logger.Startup().Info("Starting retention sweep scheduler...",
		"schedule", config.RetentionSchedule)
	if err := appContainer.RetentionService.Start(); err != nil {
		return fmt.Errorf("failed to start retention scheduler: %w", err)
	}

	// Step 7: Start HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"activeTenants", activeCount,
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped")
	}

	appContainer.RetentionService.Stop()
	appContainer.CleanupWorker.Stop()
	logger.Shutdown().Info("Background workers stopped")

	if err := tenantManager.Close(); err != nil {
		logger.Shutdown().Error("Error closing tenant manager", "error", err.Error())
	} else {
		logger.Shutdown().Info("Tenant manager closed")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures process-level logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
