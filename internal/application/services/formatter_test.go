package services

import (
	"testing"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
)

func formatterWindow() analytics.Window {
	return analytics.Window{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func populatedAccumulator(conversations int) *analytics.Accumulator {
	acc := analytics.NewAccumulator(100)
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	for i := 0; i < conversations; i++ {
		acc.AddEvent(analytics.QAEvent{
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			TenantHash: "abcd1234",
			SessionID:  "s",
			Question:   "q",
		}, time.UTC)
	}
	return acc
}

func TestFormatOptionalBlocksOmittedByDefault(t *testing.T) {
	f := NewFormatter(NewAggregator())
	report := f.Format(populatedAccumulator(3), TenantIdentity{
		TenantID:   "t1",
		TenantHash: "abcd1234",
		Timezone:   "UTC",
	}, formatterWindow(), DefaultReportOptions())

	if report.HeatMapData != nil {
		t.Error("heatmap emitted without being requested")
	}
	if report.FullConversations != nil {
		t.Error("conversations emitted without being requested")
	}
	if report.StartDate != "2025-03-01" || report.EndDate != "2025-03-30" {
		t.Errorf("dates = %s..%s", report.StartDate, report.EndDate)
	}
	if report.PeriodDays != 30 {
		t.Errorf("PeriodDays = %d, want 30", report.PeriodDays)
	}
}

func TestFormatEchoesInclusiveEndDate(t *testing.T) {
	f := NewFormatter(NewAggregator())

	// A request for 2025-03-01..2025-03-30 arrives as a window extending
	// to the following midnight; the response must echo the requested
	// last day, not the exclusive boundary.
	w := analytics.Window{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1),
	}
	report := f.Format(analytics.NewAccumulator(0), TenantIdentity{TenantID: "t1"}, w, DefaultReportOptions())
	if report.EndDate != "2025-03-30" {
		t.Errorf("EndDate = %s, want 2025-03-30", report.EndDate)
	}

	single := analytics.Window{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	report = f.Format(analytics.NewAccumulator(0), TenantIdentity{TenantID: "t1"}, single, DefaultReportOptions())
	if report.StartDate != "2025-03-01" || report.EndDate != "2025-03-01" {
		t.Errorf("single-day dates = %s..%s, want 2025-03-01..2025-03-01", report.StartDate, report.EndDate)
	}
}

func TestFormatIncludesRequestedBlocks(t *testing.T) {
	f := NewFormatter(NewAggregator())
	opts := DefaultReportOptions()
	opts.IncludeHeatmap = true
	opts.IncludeConversations = true
	opts.ConversationLimit = 2

	report := f.Format(populatedAccumulator(5), TenantIdentity{TenantID: "t1"}, formatterWindow(), opts)

	if report.HeatMapData == nil {
		t.Fatal("heatmap requested but missing")
	}
	if len(report.FullConversations) != 2 {
		t.Fatalf("conversations = %d, want capped at 2", len(report.FullConversations))
	}
	if report.FullConversations[0].Timestamp.Before(report.FullConversations[1].Timestamp) {
		t.Error("conversations not newest-first")
	}
}

func TestFormatSurfacesTimezoneAndApproximation(t *testing.T) {
	f := NewFormatter(NewAggregator())

	acc := analytics.NewAccumulator(0)
	acc.AddDaily(&analytics.DailyAggregate{
		TenantID:          "t1",
		Date:              "2025-03-10",
		ConversationCount: 1,
		TotalMessages:     2,
	}, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	report := f.Format(acc, TenantIdentity{
		TenantID:           "t1",
		Timezone:           "America/New_York",
		TimezoneConfigured: true,
	}, formatterWindow(), DefaultReportOptions())

	if !report.Approximate {
		t.Error("warm-tier data should flag the report approximate")
	}
	if report.Timezone != "America/New_York" || !report.TimezoneConfigured {
		t.Errorf("timezone block = %s/%v", report.Timezone, report.TimezoneConfigured)
	}

	unconfigured := f.Format(analytics.NewAccumulator(0), TenantIdentity{
		TenantID: "t1",
		Timezone: "UTC",
	}, formatterWindow(), DefaultReportOptions())
	if unconfigured.TimezoneConfigured {
		t.Error("TimezoneConfigured should be false when no zone is set")
	}
	if unconfigured.Approximate {
		t.Error("hot-only data should not be flagged approximate")
	}
}
