// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ParleyLabs/chatdeck-go/internal/application/container"
	"github.com/ParleyLabs/chatdeck-go/internal/presentation/http/handlers"
	"github.com/ParleyLabs/chatdeck-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestMetricsMiddleware(container.Metrics))

	// Initialize handlers
	analyticsHandlers := handlers.NewAnalyticsHandlers(container.AnalyticsService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	statusHandlers := handlers.NewStatusHandlers(container.TenantManager, container.CacheManager, container.PerfTracker, container.Logger)

	// Operational endpoints, no tenant required
	r.GET("/health", statusHandlers.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/v1/status", statusHandlers.GetStatus)

	// API routes with tenant middleware
	api := r.Group("/api/v1")
	api.Use(middleware.TenantMiddleware(container.TenantManager, container.PerfTracker))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
		}

		// Analytics endpoints
		analytics := api.Group("/analytics")
		analytics.Use(authHandlers.AuthMiddleware())
		{
			analytics.GET("/conversations", analyticsHandlers.GetConversations)
			analytics.POST("/conversations/batch", analyticsHandlers.PostConversationsBatch)
		}
	}

	return r
}
