package logstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/manager"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// QueryState is the lifecycle state reported by a log source for a
// submitted query.
type QueryState string

const (
	StateScheduled QueryState = "scheduled"
	StateRunning   QueryState = "running"
	StateComplete  QueryState = "complete"
	StateFailed    QueryState = "failed"
	StateCancelled QueryState = "cancelled"
)

// Row is one result row from a completed query.
type Row struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// Source is one backing log source. The widget logs completions on two
// paths (streaming and request/response), each its own source.
type Source interface {
	Name() string
	Submit(ctx context.Context, query string, start, end time.Time) (handle string, err error)
	Poll(ctx context.Context, handle string) (QueryState, []Row, error)
}

// ErrPollCeiling is returned by a source poll loop that exceeded the
// ceiling while the query was still running.
var ErrPollCeiling = errors.New("query still running at poll ceiling")

// Client runs hot-tier searches across all sources and returns parsed
// events. Every failure mode degrades to fewer events, never an error:
// the caller always gets whatever was successfully parsed.
type Client struct {
	sources      []Source
	cacheManager *manager.Manager
	logger       *logging.ChanneledLogger
	metrics      *metrics.Registry

	pollInterval time.Duration
	pollCeiling  time.Duration
	resultLimit  int
}

// NewClient builds a hot-tier client over the given sources with poll
// parameters from config.
func NewClient(sources []Source, cacheManager *manager.Manager, logger *logging.ChanneledLogger, m *metrics.Registry) *Client {
	return &Client{
		sources:      sources,
		cacheManager: cacheManager,
		logger:       logger,
		metrics:      m,
		pollInterval: config.QueryPollInterval,
		pollCeiling:  config.QueryPollCeiling,
		resultLimit:  config.QueryResultLimit,
	}
}

// SetPollParams overrides the poll interval and ceiling. Used by tests and
// by callers with tighter deadlines.
func (c *Client) SetPollParams(interval, ceiling time.Duration) {
	c.pollInterval = interval
	c.pollCeiling = ceiling
}

// QueryEvents searches every source for the tenant's completion events in
// [w.Start, w.End), sorted ascending by timestamp. Sources run
// concurrently; a failed or timed-out source contributes nothing.
func (c *Client) QueryEvents(ctx context.Context, tenantHash string, w analytics.Window) []analytics.QAEvent {
	if w.IsEmpty() || tenantHash == "" {
		return nil
	}

	if c.cacheManager != nil {
		if events, hit := c.cacheManager.GetQueryResult(tenantHash, w); hit {
			return events
		}
	}

	query := BuildQuery(tenantHash, c.resultLimit)

	var mu sync.Mutex
	var events []analytics.QAEvent
	completed := 0
	var wg sync.WaitGroup

	for _, source := range c.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			rows, err := c.runSource(ctx, src, query, w)
			if err != nil {
				if errors.Is(err, ErrPollCeiling) && c.metrics != nil {
					c.metrics.PollTimeouts.Inc()
				}
				if c.metrics != nil {
					c.metrics.TierFailures.WithLabelValues("hot", src.Name()).Inc()
				}
				if c.logger != nil {
					c.logger.LogTierFailure("hot", src.Name(), tenantHash, err)
				}
				return
			}

			parsed := c.parseRows(rows, tenantHash)
			mu.Lock()
			events = append(events, parsed...)
			completed++
			mu.Unlock()
		}(source)
	}
	wg.Wait()

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	// Cache only results backed by at least one completed source. A full
	// outage must not pin an empty result for the whole TTL.
	if c.cacheManager != nil && completed > 0 {
		c.cacheManager.SetQueryResult(tenantHash, w, events)
	}
	return events
}

// runSource drives one source through the submit/poll protocol. The poll
// loop observes both the caller's deadline and the hard ceiling; whichever
// fires first abandons the query.
func (c *Client) runSource(ctx context.Context, src Source, query string, w analytics.Window) ([]Row, error) {
	handle, err := src.Submit(ctx, query, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	ceiling := time.NewTimer(c.pollCeiling)
	defer ceiling.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ceiling.C:
			return nil, ErrPollCeiling
		case <-ticker.C:
			state, rows, err := src.Poll(ctx, handle)
			if err != nil {
				return nil, err
			}
			switch state {
			case StateComplete:
				return rows, nil
			case StateFailed, StateCancelled:
				return nil, errors.New("query " + string(state))
			case StateScheduled, StateRunning:
				// keep polling
			default:
				return nil, errors.New("unknown query state: " + string(state))
			}
		}
	}
}

// parseRows decodes result rows, keeping only this tenant's completion
// events. Parse failures are counted and skipped, never propagated.
func (c *Client) parseRows(rows []Row, tenantHash string) []analytics.QAEvent {
	events := make([]analytics.QAEvent, 0, len(rows))
	for _, row := range rows {
		ev, err := ParseLine(row.Timestamp, row.Message)
		if err != nil {
			if errors.Is(err, ErrUnparsable) {
				if c.metrics != nil {
					c.metrics.ParseFailures.Inc()
				}
				if c.logger != nil {
					c.logger.Logstore().Debug("Dropped unparsable log line", "error", err)
				}
			}
			continue
		}
		// The substring filter can catch other tenants' hashes inside
		// answer text; recheck the decoded field.
		if ev.TenantHash != tenantHash {
			continue
		}
		if c.metrics != nil {
			c.metrics.ParsedEvents.Inc()
		}
		events = append(events, *ev)
	}
	return events
}
