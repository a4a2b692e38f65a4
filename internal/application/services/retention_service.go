package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/performance"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/tenant"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// RetentionService sweeps expired warm tier rows on a cron schedule. The
// table carries expiry timestamps and expired rows already read as absent,
// so the sweep reclaims space rather than enforcing correctness.
type RetentionService struct {
	tenantManager *tenant.Manager
	logger        *logging.ChanneledLogger
	metrics       *metrics.Registry
	perf          *performance.Tracker
	cron          *cron.Cron
}

// NewRetentionService creates the sweep service; Start schedules it
func NewRetentionService(tenantManager *tenant.Manager, logger *logging.ChanneledLogger, m *metrics.Registry, perf *performance.Tracker) *RetentionService {
	return &RetentionService{
		tenantManager: tenantManager,
		logger:        logger,
		metrics:       m,
		perf:          perf,
		cron:          cron.New(),
	}
}

// Start registers the sweep on the configured schedule and starts cron
func (s *RetentionService) Start() error {
	_, err := s.cron.AddFunc(config.RetentionSchedule, func() {
		s.SweepAll(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()

	if s.logger != nil {
		s.logger.Startup().Info("Retention sweep scheduled", "schedule", config.RetentionSchedule)
	}
	return nil
}

// Stop halts the cron scheduler and waits for a running sweep to finish
func (s *RetentionService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// SweepAll removes expired rows for every registered tenant and returns
// the total removed. Per-tenant failures are logged and skipped.
func (s *RetentionService) SweepAll(ctx context.Context) int64 {
	var marker *performance.Marker
	if s.perf != nil {
		marker = s.perf.StartOperation("retention:sweep", "system")
		defer s.perf.CompleteOperation(marker)
	}

	registry, err := tenant.LoadTenantRegistry()
	if err != nil {
		if s.logger != nil {
			s.logger.Alert().Error("Retention sweep could not load registry", "error", err.Error())
		}
		return 0
	}

	var total int64
	now := time.Now()

	for tenantID, info := range registry.Tenants {
		if info.Status != "active" {
			continue
		}

		tenantCtx, err := s.tenantManager.GetContextByID(tenantID)
		if err != nil {
			if s.logger != nil {
				s.logger.Database().Warn("Retention sweep skipped tenant",
					"tenantId", tenantID, "error", err.Error())
			}
			continue
		}

		removed, err := tenantCtx.DailyAggregateRepo().DeleteExpired(ctx, now)
		if err != nil {
			if s.logger != nil {
				s.logger.Database().Warn("Retention sweep failed for tenant",
					"tenantId", tenantID, "error", err.Error())
			}
			continue
		}
		total += removed
		if s.metrics != nil && removed > 0 {
			s.metrics.RetentionDeletes.Add(float64(removed))
		}
	}

	if s.logger != nil {
		s.logger.Database().Info("Retention sweep completed", "removed", total)
	}
	return total
}
