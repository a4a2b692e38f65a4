package services

import (
	"math"
	"testing"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
)

func floatPtr(v float64) *float64 { return &v }

func TestScalarMetricsEmptyAccumulatorIsAllZero(t *testing.T) {
	m := NewAggregator().ScalarMetrics(analytics.NewAccumulator(0))

	if m.ConversationCount != 0 || m.TotalMessages != 0 {
		t.Errorf("counts = %d/%d, want 0/0", m.ConversationCount, m.TotalMessages)
	}
	for name, v := range map[string]float64{
		"avg_response":  m.AvgResponseTimeMs,
		"avg_token":     m.AvgFirstTokenMs,
		"avg_total":     m.AvgTotalTimeMs,
		"after_hours":   m.AfterHoursPercentage,
		"streaming_pct": m.StreamingEnabledPercentage,
	} {
		if v != 0 {
			t.Errorf("%s = %v on empty accumulator, want 0", name, v)
		}
	}
}

func TestScalarMetricsAverages(t *testing.T) {
	acc := analytics.NewAccumulator(0)
	base := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	for i, rt := range []float64{100, 200, 300} {
		acc.AddEvent(analytics.QAEvent{
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			TenantHash:     "abcd1234",
			SessionID:      "s1",
			Question:       "q",
			ResponseTimeMs: floatPtr(rt),
		}, time.UTC)
	}

	m := NewAggregator().ScalarMetrics(acc)
	if m.AvgResponseTimeMs != 200 {
		t.Errorf("AvgResponseTimeMs = %v, want 200", m.AvgResponseTimeMs)
	}
	if m.AvgFirstTokenMs != 0 {
		t.Errorf("AvgFirstTokenMs = %v with no samples, want 0", m.AvgFirstTokenMs)
	}
}

func TestAfterHoursPercentageFallsBackToMessageTotal(t *testing.T) {
	// Warm-tier-only data with no hourly bins: no timestamped count, so
	// the denominator degrades to total messages.
	acc := analytics.NewAccumulator(0)
	acc.AddDaily(&analytics.DailyAggregate{
		TenantID:          "t1",
		Date:              "2025-01-06",
		ConversationCount: 2,
		TotalMessages:     10,
		AfterHoursCount:   4,
	}, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))

	m := NewAggregator().ScalarMetrics(acc)
	if m.AfterHoursPercentage != 40 {
		t.Errorf("AfterHoursPercentage = %v, want 40", m.AfterHoursPercentage)
	}
}

func TestTopQuestionsRankingAndPercentages(t *testing.T) {
	acc := analytics.NewAccumulator(0)
	base := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

	add := func(question string, ts time.Time, times int) {
		for i := 0; i < times; i++ {
			acc.AddEvent(analytics.QAEvent{
				Timestamp:  ts.Add(time.Duration(i) * time.Minute),
				TenantHash: "abcd1234",
				SessionID:  "s",
				Question:   question,
			}, time.UTC)
		}
	}

	add("pricing", base.Add(time.Hour), 4)
	add("hours", base, 2)          // seen first
	add("shipping", base.Add(2*time.Hour), 2) // same count, seen later
	add("returns", base, 1)

	got := NewAggregator().TopQuestions(acc, 3)
	if len(got) != 3 {
		t.Fatalf("got %d questions, want 3", len(got))
	}
	if got[0].Question != "pricing" {
		t.Errorf("rank 1 = %q, want pricing", got[0].Question)
	}
	// Equal counts: earlier first-seen wins.
	if got[1].Question != "hours" || got[2].Question != "shipping" {
		t.Errorf("tie-break order = %q, %q; want hours, shipping", got[1].Question, got[2].Question)
	}

	total := acc.TotalMessages
	var pctSum float64
	for _, q := range got {
		want := float64(q.Count) * 100 / float64(total)
		if math.Abs(q.Percentage-want) > 1e-9 {
			t.Errorf("%s percentage = %v, want %v", q.Question, q.Percentage, want)
		}
		pctSum += q.Percentage
	}
	if pctSum > 100+1e-9 {
		t.Errorf("percentages sum to %v, exceeds 100", pctSum)
	}
}

func TestTopQuestionsZeroTotalMessages(t *testing.T) {
	acc := analytics.NewAccumulator(0)
	acc.QuestionCounts["orphan"] = 3

	got := NewAggregator().TopQuestions(acc, 5)
	if len(got) != 1 {
		t.Fatalf("got %d questions, want 1", len(got))
	}
	if got[0].Percentage != 0 {
		t.Errorf("percentage = %v with zero messages, want 0", got[0].Percentage)
	}
}

func TestHeatmapPeaksLowestIndexWinsTies(t *testing.T) {
	acc := analytics.NewAccumulator(0)
	acc.HourlyDistribution[9] = 5
	acc.HourlyDistribution[14] = 5
	acc.WeekdayDistribution[1] = 3
	acc.WeekdayDistribution[4] = 3
	acc.Heatmap[3][1] = 5

	hm := NewAggregator().Heatmap(acc)
	if hm.PeakHour != 9 {
		t.Errorf("PeakHour = %d, want 9 (lowest tied index)", hm.PeakHour)
	}
	if hm.PeakDay != 1 {
		t.Errorf("PeakDay = %d, want 1 (lowest tied index)", hm.PeakDay)
	}
	if hm.Grid[3][1] != 5 {
		t.Errorf("Grid[3][1] = %d, want 5", hm.Grid[3][1])
	}
	wantBuckets := [analytics.HeatmapRows]int{0, 3, 6, 9, 12, 15, 18, 21}
	if hm.HourBuckets != wantBuckets {
		t.Errorf("HourBuckets = %v, want %v", hm.HourBuckets, wantBuckets)
	}
}
