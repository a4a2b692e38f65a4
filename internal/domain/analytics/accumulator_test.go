package analytics

import (
	"reflect"
	"testing"
	"time"
)

func f(v float64) *float64 { return &v }

func event(ts time.Time, session, question string) QAEvent {
	return QAEvent{
		Timestamp:  ts,
		TenantHash: "abcd1234",
		SessionID:  session,
		Question:   question,
		Answer:     "answer",
	}
}

func TestConversationCountIsSessionSetCardinality(t *testing.T) {
	ts := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	acc := NewAccumulator(10)
	acc.AddEvent(event(ts, "s1", "q1"), time.UTC)
	acc.AddEvent(event(ts.Add(time.Minute), "s1", "q2"), time.UTC)
	acc.AddEvent(event(ts.Add(2*time.Minute), "s2", "q3"), time.UTC)

	if got := acc.ConversationCount(); got != 2 {
		t.Errorf("ConversationCount = %d, want 2", got)
	}
	if acc.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", acc.TotalMessages)
	}
}

func TestEventWithoutSessionCountsMessagesOnly(t *testing.T) {
	ts := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	acc := NewAccumulator(10)
	acc.AddEvent(event(ts, "", "q1"), time.UTC)

	if acc.TotalMessages != 1 {
		t.Errorf("TotalMessages = %d, want 1", acc.TotalMessages)
	}
	if got := acc.ConversationCount(); got != 0 {
		t.Errorf("ConversationCount = %d, want 0", got)
	}
}

// Two tiers each reporting 3 conversations that share one session id must
// merge to 5 unique conversations, never 6.
func TestMergeUnionsSessionsAcrossTierBoundary(t *testing.T) {
	ts := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	left := NewAccumulator(10)
	for i, s := range []string{"shared", "a1", "a2"} {
		left.AddEvent(event(ts.Add(time.Duration(i)*time.Minute), s, "q"), time.UTC)
	}
	right := NewAccumulator(10)
	for i, s := range []string{"shared", "b1", "b2"} {
		right.AddEvent(event(ts.Add(time.Duration(10+i)*time.Minute), s, "q"), time.UTC)
	}

	left.Merge(right)
	if got := left.ConversationCount(); got != 5 {
		t.Errorf("merged ConversationCount = %d, want 5", got)
	}
}

func TestMergeIsCommutativeAndAssociative(t *testing.T) {
	base := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	build := func(offset int, sessions ...string) *Accumulator {
		acc := NewAccumulator(5)
		for i, s := range sessions {
			ev := event(base.Add(time.Duration(offset+i)*time.Hour), s, "q"+s)
			ev.ResponseTimeMs = f(float64(100 + offset + i))
			acc.AddEvent(ev, time.UTC)
		}
		return acc
	}

	merge := func(order ...func() *Accumulator) *Accumulator {
		out := NewAccumulator(5)
		for _, mk := range order {
			out.Merge(mk())
		}
		return out
	}

	mkA := func() *Accumulator { return build(0, "s1", "s2") }
	mkB := func() *Accumulator { return build(24, "s2", "s3") }
	mkC := func() *Accumulator { return build(48, "s4") }

	abc := merge(mkA, mkB, mkC)
	cba := merge(mkC, mkB, mkA)
	bac := merge(mkB, mkA, mkC)

	for _, other := range []*Accumulator{cba, bac} {
		if abc.ConversationCount() != other.ConversationCount() {
			t.Fatalf("conversation counts differ across merge orders: %d vs %d",
				abc.ConversationCount(), other.ConversationCount())
		}
		if abc.TotalMessages != other.TotalMessages {
			t.Fatalf("message totals differ across merge orders")
		}
		if !reflect.DeepEqual(abc.QuestionCounts, other.QuestionCounts) {
			t.Errorf("question counts differ across merge orders")
		}
		if abc.HourlyDistribution != other.HourlyDistribution {
			t.Errorf("hourly distributions differ across merge orders")
		}
		if abc.Heatmap != other.Heatmap {
			t.Errorf("heatmaps differ across merge orders")
		}
		if !reflect.DeepEqual(abc.Conversations, other.Conversations) {
			t.Errorf("retained conversations differ across merge orders")
		}
		if sum(abc.ResponseTimes) != sum(other.ResponseTimes) {
			t.Errorf("response time samples differ across merge orders")
		}
	}
}

func sum(vs []float64) float64 {
	var t float64
	for _, v := range vs {
		t += v
	}
	return t
}

func TestAddDailyExpandsAveragesAndFlagsApproximation(t *testing.T) {
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC) // a Monday
	agg := &DailyAggregate{
		TenantID:          "t1",
		Date:              "2025-01-06",
		ConversationCount: 3,
		TotalMessages:     9,
		AvgResponseTimeMs: 250,
		TopQuestions:      []QuestionCount{{Question: "pricing?", Count: 4}},
		AfterHoursCount:   1,
	}
	agg.HourlyDistribution[10] = 3

	acc := NewAccumulator(0)
	acc.AddDaily(agg, day)

	if !acc.Approximate {
		t.Error("expected Approximate to be set by warm-tier expansion")
	}
	if len(acc.ResponseTimes) != 3 {
		t.Errorf("expanded %d response samples, want 3", len(acc.ResponseTimes))
	}
	if acc.ConversationCount() != 3 {
		t.Errorf("ConversationCount = %d, want 3", acc.ConversationCount())
	}
	if acc.QuestionCounts["pricing?"] != 4 {
		t.Errorf("question count = %d, want 4", acc.QuestionCounts["pricing?"])
	}
	// The whole day falls on Monday: heatmap row for hour 10 is row 3.
	if acc.Heatmap[3][0] != 3 {
		t.Errorf("heatmap[3][0] = %d, want 3", acc.Heatmap[3][0])
	}
	if acc.TimestampedCount != 3 {
		t.Errorf("TimestampedCount = %d, want 3", acc.TimestampedCount)
	}
}

func TestConversationListIsBoundedNewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	acc := NewAccumulator(3)
	for i := 0; i < 6; i++ {
		acc.AddEvent(event(base.Add(time.Duration(i)*time.Hour), "s", "q"), time.UTC)
	}

	if len(acc.Conversations) != 3 {
		t.Fatalf("retained %d conversations, want 3", len(acc.Conversations))
	}
	for i := 1; i < len(acc.Conversations); i++ {
		if acc.Conversations[i].Timestamp.After(acc.Conversations[i-1].Timestamp) {
			t.Errorf("conversations not newest-first at index %d", i)
		}
	}
	want := base.Add(5 * time.Hour)
	if !acc.Conversations[0].Timestamp.Equal(want) {
		t.Errorf("newest retained = %v, want %v", acc.Conversations[0].Timestamp, want)
	}
}

func TestIsAfterHours(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"saturday afternoon", time.Date(2025, 3, 8, 14, 0, 0, 0, time.UTC), true},
		{"tuesday mid-morning", time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), false},
		{"tuesday evening", time.Date(2025, 3, 4, 18, 0, 0, 0, time.UTC), true},
		{"tuesday before nine", time.Date(2025, 3, 4, 8, 59, 0, 0, time.UTC), true},
		{"sunday morning", time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC), true},
		{"friday five pm", time.Date(2025, 3, 7, 17, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAfterHours(tt.t); got != tt.want {
				t.Errorf("IsAfterHours(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestWeekdayIndexMondayIsZero(t *testing.T) {
	monday := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	if got := WeekdayIndex(monday); got != 0 {
		t.Errorf("WeekdayIndex(monday) = %d, want 0", got)
	}
	if got := WeekdayIndex(sunday); got != 6 {
		t.Errorf("WeekdayIndex(sunday) = %d, want 6", got)
	}
}

func TestWindowDays(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 2, 27, 15, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 2, 3, 0, 0, 0, time.UTC),
	}
	days := w.Days()
	if len(days) != 4 {
		t.Fatalf("got %d days, want 4", len(days))
	}
	if days[0].Format(DayKeyFormat) != "2025-02-27" || days[3].Format(DayKeyFormat) != "2025-03-02" {
		t.Errorf("unexpected day range: %s .. %s",
			days[0].Format(DayKeyFormat), days[3].Format(DayKeyFormat))
	}
}
