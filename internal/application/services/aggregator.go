package services

import (
	"sort"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
)

// Aggregator derives the reported metrics from one merged accumulator.
type Aggregator struct{}

// NewAggregator creates the derived-metrics calculator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// ScalarMetrics computes the flat metrics block. All averages and
// percentages are zero-safe: an empty sample set yields 0.
func (a *Aggregator) ScalarMetrics(acc *analytics.Accumulator) analytics.ScalarMetrics {
	return analytics.ScalarMetrics{
		ConversationCount:          acc.ConversationCount(),
		TotalMessages:              acc.TotalMessages,
		AvgResponseTimeMs:          mean(acc.ResponseTimes),
		AvgFirstTokenMs:            mean(acc.FirstTokenTimes),
		AvgTotalTimeMs:             mean(acc.TotalTimes),
		AfterHoursPercentage:       a.afterHoursPercentage(acc),
		StreamingEnabledPercentage: percentage(acc.StreamingCount, acc.TotalMessages),
	}
}

// afterHoursPercentage uses timestamped conversations as the denominator,
// falling back to the coarser message total when no event carried a
// parsable timestamp.
func (a *Aggregator) afterHoursPercentage(acc *analytics.Accumulator) float64 {
	denom := acc.TimestampedCount
	if denom == 0 {
		denom = acc.TotalMessages
	}
	return percentage(acc.AfterHoursCount, denom)
}

// TopQuestions ranks questions by descending count, breaking ties by
// earliest first-seen timestamp and then question text so the ranking is
// deterministic across merge orders. Each entry carries its share of all
// messages in the window.
func (a *Aggregator) TopQuestions(acc *analytics.Accumulator, k int) []analytics.TopQuestion {
	if k <= 0 || len(acc.QuestionCounts) == 0 {
		return nil
	}

	ranked := make([]analytics.TopQuestion, 0, len(acc.QuestionCounts))
	for question, count := range acc.QuestionCounts {
		ranked = append(ranked, analytics.TopQuestion{
			Question:   question,
			Count:      count,
			Percentage: percentage(count, acc.TotalMessages),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		si, iOK := acc.FirstSeen[ranked[i].Question]
		sj, jOK := acc.FirstSeen[ranked[j].Question]
		if iOK && jOK && !si.Equal(sj) {
			return si.Before(sj)
		}
		if iOK != jOK {
			return iOK
		}
		return ranked[i].Question < ranked[j].Question
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Heatmap assembles the 8x7 grid plus its peak indices. Peaks are the
// arg-max of the 1-D hourly and weekday distributions; ties go to the
// lowest index.
func (a *Aggregator) Heatmap(acc *analytics.Accumulator) *analytics.HeatMapData {
	hm := &analytics.HeatMapData{
		Grid:    acc.Heatmap,
		PeakDay: argmax(acc.WeekdayDistribution[:]),
	}
	for row := 0; row < analytics.HeatmapRows; row++ {
		hm.HourBuckets[row] = row * 3
	}
	hm.PeakHour = argmax(acc.HourlyDistribution[:])
	return hm
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var total float64
	for _, s := range samples {
		total += s
	}
	return total / float64(len(samples))
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(total)
}

func argmax(values []int) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
