// Package metrics exposes Prometheus instrumentation for the analytics
// query path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles the collectors the query pipeline increments. A single
// instance is built at startup and threaded through the container.
type Registry struct {
	TierQueryDuration *prometheus.HistogramVec
	TierFailures      *prometheus.CounterVec
	ParseFailures     prometheus.Counter
	ParsedEvents      prometheus.Counter
	PollTimeouts      prometheus.Counter
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	Requests          *prometheus.CounterVec
	RetentionDeletes  prometheus.Counter
}

// New registers all collectors on the given registerer. Passing nil uses
// the default registry.
func New(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Registry{
		TierQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chatdeck",
			Subsystem: "analytics",
			Name:      "tier_query_duration_seconds",
			Help:      "Duration of per-tier metric reads.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tier"}),

		TierFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatdeck",
			Subsystem: "analytics",
			Name:      "tier_failures_total",
			Help:      "Tier reads that degraded to an empty contribution.",
		}, []string{"tier", "source"}),

		ParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatdeck",
			Subsystem: "logstore",
			Name:      "parse_failures_total",
			Help:      "Log lines dropped because no completion event could be extracted.",
		}),

		ParsedEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatdeck",
			Subsystem: "logstore",
			Name:      "parsed_events_total",
			Help:      "Completion events successfully parsed from log lines.",
		}),

		PollTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatdeck",
			Subsystem: "logstore",
			Name:      "poll_timeouts_total",
			Help:      "Hot tier queries abandoned at the poll ceiling.",
		}),

		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatdeck",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache hits by store.",
		}, []string{"store"}),

		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatdeck",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache misses by store.",
		}, []string{"store"}),

		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatdeck",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests by endpoint and status class.",
		}, []string{"endpoint", "status"}),

		RetentionDeletes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatdeck",
			Subsystem: "retention",
			Name:      "deletes_total",
			Help:      "Warm tier rows removed by the retention sweep.",
		}),
	}
}
