package analytics

import (
	"sort"
	"time"
)

// HeatmapRows is the number of 3-hour buckets in the hour/weekday heatmap.
const HeatmapRows = 8

// Accumulator is the mutable aggregation unit. One is produced per tier
// query and they are merged before final aggregation. Merge is commutative
// and associative so tier results can be joined in any order.
type Accumulator struct {
	TotalMessages int

	// Sample multisets, used only for averaging.
	ResponseTimes   []float64
	FirstTokenTimes []float64
	TotalTimes      []float64

	QuestionCounts map[string]int
	// FirstSeen holds the earliest timestamp observed for each question,
	// used as a deterministic tie-break when ranking. Warm and cold tiers
	// contribute their day boundary as the observation time.
	FirstSeen map[string]time.Time

	HourlyDistribution  [24]int
	WeekdayDistribution [7]int
	Heatmap             [HeatmapRows][7]int

	AfterHoursCount int
	StreamingCount  int
	// TimestampedCount is the number of conversations that carried a
	// parsable timestamp; it is the denominator for the after-hours rate.
	TimestampedCount int

	// Sessions is the set of hot-tier session ids. PreAggregated carries
	// conversation counts from warm/cold records, whose session ids no
	// longer exist. Days are disjoint across tiers by construction, so
	// summing pre-aggregated counts cannot double-count.
	Sessions      map[string]struct{}
	PreAggregated int

	// Conversations is bounded and kept newest-first.
	Conversations    []QAEvent
	MaxConversations int

	// Approximate is set whenever warm/cold expansion contributed samples.
	Approximate bool
}

// NewAccumulator returns an empty accumulator bounded to maxConversations
// raw samples (<=0 means keep none).
func NewAccumulator(maxConversations int) *Accumulator {
	return &Accumulator{
		QuestionCounts:   make(map[string]int),
		FirstSeen:        make(map[string]time.Time),
		Sessions:         make(map[string]struct{}),
		MaxConversations: maxConversations,
	}
}

// ConversationCount is the derived unique-conversation count: the session
// set cardinality plus pre-aggregated counts. Never a raw sum of per-tier
// counts.
func (a *Accumulator) ConversationCount() int {
	return len(a.Sessions) + a.PreAggregated
}

// AddEvent folds one parsed hot-tier event into the accumulator. loc is the
// tenant's local timezone; callers pass time.UTC when none is configured.
func (a *Accumulator) AddEvent(ev QAEvent, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}

	a.TotalMessages++
	if ev.SessionID != "" {
		a.Sessions[ev.SessionID] = struct{}{}
	}
	if ev.Streaming {
		a.StreamingCount++
	}
	if ev.ResponseTimeMs != nil {
		a.ResponseTimes = append(a.ResponseTimes, *ev.ResponseTimeMs)
	}
	if ev.FirstTokenMs != nil {
		a.FirstTokenTimes = append(a.FirstTokenTimes, *ev.FirstTokenMs)
	}
	if ev.TotalTimeMs != nil {
		a.TotalTimes = append(a.TotalTimes, *ev.TotalTimeMs)
	}
	if ev.Question != "" {
		a.QuestionCounts[ev.Question]++
		a.noteFirstSeen(ev.Question, ev.Timestamp)
	}

	if ev.HasTimestamp() {
		a.TimestampedCount++
		local := ev.Timestamp.In(loc)
		hour := local.Hour()
		wd := WeekdayIndex(local)
		a.HourlyDistribution[hour]++
		a.WeekdayDistribution[wd]++
		a.Heatmap[hour/3][wd]++
		if IsAfterHours(local) {
			a.AfterHoursCount++
		}
	}

	a.insertConversation(ev)
}

// AddDaily folds one warm-tier daily record in. Stored averages are
// replayed ConversationCount times to reconstruct sample multisets; this
// discards variance and is flagged via Approximate.
func (a *Accumulator) AddDaily(d *DailyAggregate, day time.Time) {
	a.Approximate = true
	a.TotalMessages += d.TotalMessages
	a.PreAggregated += d.ConversationCount
	a.StreamingCount += d.StreamingCount
	a.AfterHoursCount += d.AfterHoursCount

	for i := 0; i < d.ConversationCount; i++ {
		if d.AvgResponseTimeMs > 0 {
			a.ResponseTimes = append(a.ResponseTimes, d.AvgResponseTimeMs)
		}
		if d.AvgFirstTokenMs > 0 {
			a.FirstTokenTimes = append(a.FirstTokenTimes, d.AvgFirstTokenMs)
		}
		if d.AvgTotalTimeMs > 0 {
			a.TotalTimes = append(a.TotalTimes, d.AvgTotalTimeMs)
		}
	}

	for _, q := range d.TopQuestions {
		if q.Question == "" || q.Count <= 0 {
			continue
		}
		a.QuestionCounts[q.Question] += q.Count
		a.noteFirstSeen(q.Question, day)
	}

	binned := 0
	wd := WeekdayIndex(day.UTC())
	for h, n := range d.HourlyDistribution {
		a.HourlyDistribution[h] += n
		a.Heatmap[h/3][wd] += n
		binned += n
	}
	for w, n := range d.WeekdayDistribution {
		a.WeekdayDistribution[w] += n
	}
	a.TimestampedCount += binned
}

// AddArchive folds one cold-tier archive record in: the daily totals plus
// its capped raw samples. maxSamples bounds how many samples are taken from
// this record regardless of what it carries.
func (a *Accumulator) AddArchive(rec *ArchiveRecord, day time.Time, maxSamples int) {
	a.AddDaily(&rec.DailyAggregate, day)
	for i, ev := range rec.Conversations {
		if maxSamples >= 0 && i >= maxSamples {
			break
		}
		a.insertConversation(ev)
	}
}

// Merge folds other into a. Numeric fields add, sample multisets
// concatenate, question counts add per key, distributions add per bucket,
// session sets union, conversation lists interleave newest-first.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	a.TotalMessages += other.TotalMessages
	a.ResponseTimes = append(a.ResponseTimes, other.ResponseTimes...)
	a.FirstTokenTimes = append(a.FirstTokenTimes, other.FirstTokenTimes...)
	a.TotalTimes = append(a.TotalTimes, other.TotalTimes...)

	for q, n := range other.QuestionCounts {
		a.QuestionCounts[q] += n
	}
	for q, ts := range other.FirstSeen {
		a.noteFirstSeen(q, ts)
	}

	for i := range other.HourlyDistribution {
		a.HourlyDistribution[i] += other.HourlyDistribution[i]
	}
	for i := range other.WeekdayDistribution {
		a.WeekdayDistribution[i] += other.WeekdayDistribution[i]
	}
	for r := range other.Heatmap {
		for c := range other.Heatmap[r] {
			a.Heatmap[r][c] += other.Heatmap[r][c]
		}
	}

	a.AfterHoursCount += other.AfterHoursCount
	a.StreamingCount += other.StreamingCount
	a.TimestampedCount += other.TimestampedCount
	a.PreAggregated += other.PreAggregated

	for s := range other.Sessions {
		a.Sessions[s] = struct{}{}
	}

	for _, ev := range other.Conversations {
		a.insertConversation(ev)
	}

	a.Approximate = a.Approximate || other.Approximate
}

func (a *Accumulator) noteFirstSeen(question string, ts time.Time) {
	if ts.IsZero() {
		return
	}
	if prev, ok := a.FirstSeen[question]; !ok || ts.Before(prev) {
		a.FirstSeen[question] = ts
	}
}

// insertConversation keeps the bounded sample list sorted newest-first so
// merge order never changes the retained set.
func (a *Accumulator) insertConversation(ev QAEvent) {
	if a.MaxConversations <= 0 {
		return
	}
	idx := sort.Search(len(a.Conversations), func(i int) bool {
		c := a.Conversations[i]
		if !c.Timestamp.Equal(ev.Timestamp) {
			return c.Timestamp.Before(ev.Timestamp)
		}
		if c.SessionID != ev.SessionID {
			return c.SessionID > ev.SessionID
		}
		return c.Question >= ev.Question
	})
	if idx >= a.MaxConversations {
		return
	}
	a.Conversations = append(a.Conversations, QAEvent{})
	copy(a.Conversations[idx+1:], a.Conversations[idx:])
	a.Conversations[idx] = ev
	if len(a.Conversations) > a.MaxConversations {
		a.Conversations = a.Conversations[:a.MaxConversations]
	}
}
