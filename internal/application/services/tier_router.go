// Package services contains the application-level orchestration for
// conversation analytics.
package services

import (
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// TierWindows is the three-way split of a requested window. Empty
// sub-windows mean that tier is skipped entirely.
type TierWindows struct {
	Hot  analytics.Window
	Warm analytics.Window
	Cold analytics.Window
}

// TierRouter splits a requested window across the storage tiers using two
// fixed boundaries relative to now: hot covers the last HotRetentionDays,
// cold everything older than ColdCutoffDays, warm the span between.
type TierRouter struct {
	hotRetention  time.Duration
	coldRetention time.Duration
}

// NewTierRouter builds a router with boundaries from config
func NewTierRouter() *TierRouter {
	return &TierRouter{
		hotRetention:  time.Duration(config.HotRetentionDays) * 24 * time.Hour,
		coldRetention: time.Duration(config.ColdCutoffDays) * 24 * time.Hour,
	}
}

// Split partitions [w.Start, w.End) into the three tier sub-windows. The
// sub-windows are pairwise disjoint and their union is exactly the
// requested window.
func (r *TierRouter) Split(w analytics.Window, now time.Time) TierWindows {
	var out TierWindows
	if w.IsEmpty() {
		return out
	}

	hotCutoff := now.Add(-r.hotRetention)
	coldCutoff := now.Add(-r.coldRetention)

	if w.Start.Before(coldCutoff) {
		out.Cold = analytics.Window{Start: w.Start, End: minTime(w.End, coldCutoff)}
	}

	warm := analytics.Window{Start: maxTime(w.Start, coldCutoff), End: minTime(w.End, hotCutoff)}
	if !warm.IsEmpty() {
		out.Warm = warm
	}

	if w.End.After(hotCutoff) {
		out.Hot = analytics.Window{Start: maxTime(w.Start, hotCutoff), End: w.End}
	}

	return out
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
