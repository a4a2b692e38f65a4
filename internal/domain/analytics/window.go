package analytics

import "time"

// DayKeyFormat is the calendar-day key used by the warm and cold tiers.
const DayKeyFormat = "2006-01-02"

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// IsEmpty reports whether the window covers no time at all.
func (w Window) IsEmpty() bool {
	return !w.Start.Before(w.End)
}

// PeriodDays returns the window length in whole days, rounded up, never
// less than 1 for a non-empty window.
func (w Window) PeriodDays() int {
	if w.IsEmpty() {
		return 0
	}
	d := w.End.Sub(w.Start)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// Days returns the UTC calendar days the window touches, oldest first.
// The warm and cold tiers are keyed by day, so a window that covers any
// part of a day must consult that day's record.
func (w Window) Days() []time.Time {
	if w.IsEmpty() {
		return nil
	}
	var days []time.Time
	day := w.Start.UTC().Truncate(24 * time.Hour)
	for day.Before(w.End) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

// WeekdayIndex maps a local time to the dashboard weekday convention,
// Monday=0 through Sunday=6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsAfterHours classifies an already-localized time: weekends count
// entirely, weekdays count outside 09:00-16:59 local.
func IsAfterHours(local time.Time) bool {
	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return true
	}
	h := local.Hour()
	return h < 9 || h >= 17
}
