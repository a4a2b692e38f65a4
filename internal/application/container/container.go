// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/ParleyLabs/chatdeck-go/internal/application/services"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/archive"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/cleanup"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/manager"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/logstore"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/performance"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/tenant"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services (stateless singletons)
	AnalyticsService *services.ConversationAnalyticsService
	AuthService      *services.AuthService
	RetentionService *services.RetentionService

	// Tier infrastructure
	HotClient     *logstore.Client
	ArchiveReader *archive.Reader

	// Infrastructure dependencies
	TenantManager *tenant.Manager
	CacheManager  *manager.Manager
	CleanupWorker *cleanup.Worker
	Logger        *logging.ChanneledLogger
	Metrics       *metrics.Registry
	PerfTracker   *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(tenantManager *tenant.Manager, cacheManager *manager.Manager, logger *logging.ChanneledLogger, m *metrics.Registry) *Container {
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	sources := []logstore.Source{
		logstore.NewHTTPSource(config.LogQueryEndpoint, config.StreamingLogGroup),
		logstore.NewHTTPSource(config.LogQueryEndpoint, config.RequestLogGroup),
	}
	hotClient := logstore.NewClient(sources, cacheManager, logger, m)

	archiveReader := archive.NewReader(archive.NewFSStore(config.ArchiveRoot), logger, m)

	analyticsService := services.NewConversationAnalyticsService(
		hotClient,
		services.NewWarmReader(logger, m),
		services.NewColdReader(archiveReader, logger, m),
		logger,
		m,
		perfTracker,
	)

	return &Container{
		AnalyticsService: analyticsService,
		AuthService:      services.NewAuthService(logger),
		RetentionService: services.NewRetentionService(tenantManager, logger, m, perfTracker),

		HotClient:     hotClient,
		ArchiveReader: archiveReader,

		TenantManager: tenantManager,
		CacheManager:  cacheManager,
		CleanupWorker: cleanup.NewWorker(cacheManager, config.CleanupInterval, logger),
		Logger:        logger,
		Metrics:       m,
		PerfTracker:   perfTracker,
	}
}
