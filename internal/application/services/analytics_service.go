package services

import (
	"context"
	"sync"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/logstore"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/performance"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/tenant"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// ConversationAnalyticsService is the query pipeline: split the window
// across tiers, read each tier, merge, derive, format. Tier reads run
// concurrently and every tier failure degrades to a partial result.
type ConversationAnalyticsService struct {
	router     *TierRouter
	hotClient  *logstore.Client
	warmReader *WarmReader
	coldReader *ColdReader
	formatter  *Formatter
	logger     *logging.ChanneledLogger
	metrics    *metrics.Registry
	perf       *performance.Tracker

	// now is swappable for tests.
	now func() time.Time
}

// NewConversationAnalyticsService wires the full pipeline
func NewConversationAnalyticsService(
	hotClient *logstore.Client,
	warmReader *WarmReader,
	coldReader *ColdReader,
	logger *logging.ChanneledLogger,
	m *metrics.Registry,
	perf *performance.Tracker,
) *ConversationAnalyticsService {
	return &ConversationAnalyticsService{
		router:     NewTierRouter(),
		hotClient:  hotClient,
		warmReader: warmReader,
		coldReader: coldReader,
		formatter:  NewFormatter(NewAggregator()),
		logger:     logger,
		metrics:    m,
		perf:       perf,
		now:        time.Now,
	}
}

// GetConversationAnalytics answers one dashboard query for an arbitrary
// window.
func (s *ConversationAnalyticsService) GetConversationAnalytics(ctx context.Context, tenantCtx *tenant.Context, w analytics.Window, opts ReportOptions) (*analytics.Report, error) {
	if tenantCtx == nil || tenantCtx.TenantID == "" {
		return nil, ErrMissingTenant
	}
	if w.IsEmpty() {
		return nil, ErrInvalidWindow
	}

	var marker *performance.Marker
	if s.perf != nil {
		marker = s.perf.StartOperation("analytics:aggregate", tenantCtx.TenantID)
		defer s.perf.CompleteOperation(marker)
	}

	merged := s.collect(ctx, tenantCtx, w, opts)

	identity := TenantIdentity{
		TenantID:           tenantCtx.TenantID,
		TenantHash:         tenantCtx.Hash,
		Timezone:           tenantCtx.TimezoneName(),
		TimezoneConfigured: tenantCtx.TimezoneConfigured,
	}
	report := s.formatter.Format(merged, identity, w, opts)

	if s.logger != nil {
		s.logger.WithTenantAndOperation(logging.ChannelAnalytics, tenantCtx.TenantID, "aggregate").
			Info("Analytics query completed",
				"periodDays", report.PeriodDays,
				"conversations", report.Metrics.ConversationCount,
				"approximate", report.Approximate)
	}
	return report, nil
}

// collect reads all tiers concurrently and merges their accumulators.
func (s *ConversationAnalyticsService) collect(ctx context.Context, tenantCtx *tenant.Context, w analytics.Window, opts ReportOptions) *analytics.Accumulator {
	tiers := s.router.Split(w, s.now())
	maxConversations := opts.ConversationLimit
	if maxConversations <= 0 {
		maxConversations = config.ConversationLimit
	}

	var wg sync.WaitGroup
	var hotAcc, warmAcc, coldAcc *analytics.Accumulator

	if !tiers.Hot.IsEmpty() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.observeTier("hot", time.Now())
			hotAcc = s.readHot(ctx, tenantCtx, tiers.Hot, maxConversations)
		}()
	}
	if !tiers.Warm.IsEmpty() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.observeTier("warm", time.Now())
			warmAcc = s.warmReader.Read(ctx, tenantCtx.DailyAggregateRepo(), tenantCtx.TenantID, tiers.Warm, maxConversations)
		}()
	}
	if !tiers.Cold.IsEmpty() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.observeTier("cold", time.Now())
			coldAcc = s.coldReader.Read(ctx, tenantCtx.TenantID, tiers.Cold, maxConversations)
		}()
	}
	wg.Wait()

	merged := analytics.NewAccumulator(maxConversations)
	merged.Merge(hotAcc)
	merged.Merge(warmAcc)
	merged.Merge(coldAcc)
	return merged
}

// readHot queries the log sources and folds the parsed events with the
// tenant's local timezone applied to bucketing.
func (s *ConversationAnalyticsService) readHot(ctx context.Context, tenantCtx *tenant.Context, w analytics.Window, maxConversations int) *analytics.Accumulator {
	acc := analytics.NewAccumulator(maxConversations)
	events := s.hotClient.QueryEvents(ctx, tenantCtx.Hash, w)
	for _, ev := range events {
		acc.AddEvent(ev, tenantCtx.Location)
	}
	return acc
}

func (s *ConversationAnalyticsService) observeTier(tier string, start time.Time) {
	if s.metrics != nil {
		s.metrics.TierQueryDuration.WithLabelValues(tier).Observe(time.Since(start).Seconds())
	}
}

// BatchQuery is one entry of a batch aggregation request.
type BatchQuery struct {
	TenantCtx *tenant.Context
	Window    analytics.Window
}

// BatchResult pairs a report with the error for its query; one bad entry
// never fails the batch.
type BatchResult struct {
	Report *analytics.Report
	Err    error
}

// batchWorkers bounds concurrent pipeline runs in a batch.
const batchWorkers = 4

// GetBatchAnalytics runs several queries with bounded concurrency, using
// the larger batch top-question count. Results keep request order.
func (s *ConversationAnalyticsService) GetBatchAnalytics(ctx context.Context, queries []BatchQuery) []BatchResult {
	results := make([]BatchResult, len(queries))
	sem := make(chan struct{}, batchWorkers)
	var wg sync.WaitGroup

	for i, q := range queries {
		wg.Add(1)
		go func(i int, q BatchQuery) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			opts := DefaultReportOptions()
			opts.TopQuestionCount = config.TopQuestionsBatch
			report, err := s.GetConversationAnalytics(ctx, q.TenantCtx, q.Window, opts)
			results[i] = BatchResult{Report: report, Err: err}
		}(i, q)
	}
	wg.Wait()
	return results
}
