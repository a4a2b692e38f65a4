package services

import (
	"context"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/persistence/warm"
)

// WarmReader folds per-day warm tier records into an accumulator. Missing
// days contribute nothing; a failing day is logged, counted, and skipped.
type WarmReader struct {
	logger  *logging.ChanneledLogger
	metrics *metrics.Registry
}

// NewWarmReader creates a warm tier reader
func NewWarmReader(logger *logging.ChanneledLogger, m *metrics.Registry) *WarmReader {
	return &WarmReader{logger: logger, metrics: m}
}

// Read collects every day of the sub-window from the tenant's daily
// aggregate repository.
func (r *WarmReader) Read(ctx context.Context, repo *warm.DailyAggregateRepository, tenantID string, w analytics.Window, maxConversations int) *analytics.Accumulator {
	acc := analytics.NewAccumulator(maxConversations)
	if w.IsEmpty() || repo == nil {
		return acc
	}

	for _, day := range w.Days() {
		agg, err := repo.Get(ctx, tenantID, day.Format(analytics.DayKeyFormat))
		if err != nil {
			if r.metrics != nil {
				r.metrics.TierFailures.WithLabelValues("warm", "database").Inc()
			}
			if r.logger != nil {
				r.logger.LogTierFailure("warm", "database", tenantID, err)
			}
			continue
		}
		if agg == nil {
			continue
		}
		acc.AddDaily(agg, day)
	}
	return acc
}
