package services

import (
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// ReportOptions controls the optional blocks of the response document.
type ReportOptions struct {
	TopQuestionCount     int
	IncludeHeatmap       bool
	IncludeConversations bool
	ConversationLimit    int
}

// DefaultReportOptions returns the primary-API defaults
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		TopQuestionCount:  config.TopQuestionsDefault,
		ConversationLimit: config.ConversationLimit,
	}
}

// Formatter assembles the final response document from the merged
// accumulator and the derived metrics.
type Formatter struct {
	aggregator *Aggregator
}

// NewFormatter creates a response formatter
func NewFormatter(aggregator *Aggregator) *Formatter {
	return &Formatter{aggregator: aggregator}
}

// TenantIdentity names the tenant a report belongs to, with its resolved
// timezone.
type TenantIdentity struct {
	TenantID           string
	TenantHash         string
	Timezone           string
	TimezoneConfigured bool
}

// Format builds the response document. Heatmap and raw conversations are
// emitted only when the caller asked for them.
func (f *Formatter) Format(acc *analytics.Accumulator, identity TenantIdentity, w analytics.Window, opts ReportOptions) *analytics.Report {
	if opts.TopQuestionCount <= 0 {
		opts.TopQuestionCount = config.TopQuestionsDefault
	}
	if opts.ConversationLimit <= 0 {
		opts.ConversationLimit = config.ConversationLimit
	}

	report := &analytics.Report{
		TenantID:           identity.TenantID,
		TenantHash:         identity.TenantHash,
		StartDate:          w.Start.UTC().Format(analytics.DayKeyFormat),
		EndDate:            lastDay(w).UTC().Format(analytics.DayKeyFormat),
		PeriodDays:         w.PeriodDays(),
		Metrics:            f.aggregator.ScalarMetrics(acc),
		TopQuestions:       f.aggregator.TopQuestions(acc, opts.TopQuestionCount),
		Timezone:           identity.Timezone,
		TimezoneConfigured: identity.TimezoneConfigured,
		Approximate:        acc.Approximate,
	}

	if opts.IncludeHeatmap {
		report.HeatMapData = f.aggregator.Heatmap(acc)
	}

	if opts.IncludeConversations {
		conversations := acc.Conversations
		if len(conversations) > opts.ConversationLimit {
			conversations = conversations[:opts.ConversationLimit]
		}
		report.FullConversations = conversations
	}

	return report
}

// lastDay returns an instant inside the window's final calendar day. The
// window end is exclusive, but end_date in the response document is the
// inclusive last day the caller asked for.
func lastDay(w analytics.Window) time.Time {
	return w.End.Add(-time.Nanosecond)
}
