package services

import (
	"context"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/archive"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// ColdReader folds per-day archive records into an accumulator. The reader
// already maps missing and corrupt objects to nil; store errors degrade
// the same way here. Raw samples are capped per day to bound memory over
// long windows.
type ColdReader struct {
	reader     *archive.Reader
	maxSamples int
	logger     *logging.ChanneledLogger
	metrics    *metrics.Registry
}

// NewColdReader creates a cold tier reader over the archive
func NewColdReader(reader *archive.Reader, logger *logging.ChanneledLogger, m *metrics.Registry) *ColdReader {
	return &ColdReader{
		reader:     reader,
		maxSamples: config.ArchiveSamplesPerDay,
		logger:     logger,
		metrics:    m,
	}
}

// Read collects every day of the sub-window from the archive
func (r *ColdReader) Read(ctx context.Context, tenantID string, w analytics.Window, maxConversations int) *analytics.Accumulator {
	acc := analytics.NewAccumulator(maxConversations)
	if w.IsEmpty() || r.reader == nil {
		return acc
	}

	for _, day := range w.Days() {
		rec, err := r.reader.Get(ctx, tenantID, day)
		if err != nil {
			if r.metrics != nil {
				r.metrics.TierFailures.WithLabelValues("cold", "archive").Inc()
			}
			if r.logger != nil {
				r.logger.LogTierFailure("cold", "archive", tenantID, err)
			}
			continue
		}
		if rec == nil {
			continue
		}
		acc.AddArchive(rec, day, r.maxSamples)
	}
	return acc
}
