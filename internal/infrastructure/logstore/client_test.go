package logstore

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/manager"
)

// fakeSource scripts the submit/poll protocol for tests.
type fakeSource struct {
	name      string
	submitErr error
	states    []QueryState
	rows      []Row
	submits   atomic.Int32
	polls     atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Submit(_ context.Context, _ string, _, _ time.Time) (string, error) {
	f.submits.Add(1)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "handle-" + f.name, nil
}

func (f *fakeSource) Poll(_ context.Context, _ string) (QueryState, []Row, error) {
	n := int(f.polls.Add(1)) - 1
	if n >= len(f.states) {
		n = len(f.states) - 1
	}
	state := f.states[n]
	if state == StateComplete {
		return state, f.rows, nil
	}
	return state, nil, nil
}

func fastClient(sources ...Source) *Client {
	c := NewClient(sources, nil, nil, nil)
	c.SetPollParams(time.Millisecond, 50*time.Millisecond)
	return c
}

func testWindow() analytics.Window {
	return analytics.Window{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

func completionRow(ts, session string) Row {
	return Row{
		Timestamp: ts,
		Message:   `{"type":"QA_COMPLETE","tenantHash":"abcd1234","sessionId":"` + session + `","question":"q"}`,
	}
}

func TestQueryEventsMergesSourcesAscending(t *testing.T) {
	streaming := &fakeSource{
		name:   "streaming",
		states: []QueryState{StateRunning, StateComplete},
		rows:   []Row{completionRow("2025-03-01 12:00:00.000", "s2")},
	}
	request := &fakeSource{
		name:   "request",
		states: []QueryState{StateComplete},
		rows:   []Row{completionRow("2025-03-01 06:00:00.000", "s1")},
	}

	events := fastClient(streaming, request).QueryEvents(context.Background(), "abcd1234", testWindow())

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].SessionID != "s1" || events[1].SessionID != "s2" {
		t.Errorf("events not ascending by timestamp: %v, %v", events[0].SessionID, events[1].SessionID)
	}
}

func TestQueryEventsNeverCompletingSourceReturnsEmpty(t *testing.T) {
	stuck := &fakeSource{
		name:   "streaming",
		states: []QueryState{StateRunning},
	}

	events := fastClient(stuck).QueryEvents(context.Background(), "abcd1234", testWindow())
	if len(events) != 0 {
		t.Errorf("got %d events from a never-completing source, want 0", len(events))
	}
}

func TestQueryEventsIsolatesSourceFailure(t *testing.T) {
	failing := &fakeSource{
		name:   "streaming",
		states: []QueryState{StateFailed},
	}
	healthy := &fakeSource{
		name:   "request",
		states: []QueryState{StateComplete},
		rows:   []Row{completionRow("2025-03-01 06:00:00.000", "s1")},
	}

	events := fastClient(failing, healthy).QueryEvents(context.Background(), "abcd1234", testWindow())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 from the healthy source", len(events))
	}
	if events[0].SessionID != "s1" {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestQueryEventsRespectsCallerCancellation(t *testing.T) {
	stuck := &fakeSource{
		name:   "streaming",
		states: []QueryState{StateRunning},
	}
	c := NewClient([]Source{stuck}, nil, nil, nil)
	c.SetPollParams(time.Millisecond, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan []analytics.QAEvent, 1)
	go func() { done <- c.QueryEvents(ctx, "abcd1234", testWindow()) }()

	select {
	case events := <-done:
		if len(events) != 0 {
			t.Errorf("got %d events after cancellation, want 0", len(events))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("QueryEvents did not return after context cancellation")
	}
}

func TestQueryEventsDropsForeignHash(t *testing.T) {
	src := &fakeSource{
		name:   "request",
		states: []QueryState{StateComplete},
		rows: []Row{
			completionRow("2025-03-01 06:00:00.000", "s1"),
			{
				Timestamp: "2025-03-01 07:00:00.000",
				Message:   `{"type":"QA_COMPLETE","tenantHash":"other999","sessionId":"sX","question":"mentions abcd1234"}`,
			},
		},
	}

	events := fastClient(src).QueryEvents(context.Background(), "abcd1234", testWindow())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 after foreign-hash filtering", len(events))
	}
}

func TestQueryEventsCachesCompletedQueries(t *testing.T) {
	src := &fakeSource{
		name:   "request",
		states: []QueryState{StateComplete},
		rows:   []Row{completionRow("2025-03-01 06:00:00.000", "s1")},
	}
	c := NewClient([]Source{src}, manager.NewManager(nil, nil), nil, nil)
	c.SetPollParams(time.Millisecond, 50*time.Millisecond)

	c.QueryEvents(context.Background(), "abcd1234", testWindow())
	events := c.QueryEvents(context.Background(), "abcd1234", testWindow())

	if len(events) != 1 {
		t.Fatalf("got %d events from cache, want 1", len(events))
	}
	if src.submits.Load() != 1 {
		t.Errorf("completed query submitted %d times, want 1 with the repeat served from cache", src.submits.Load())
	}
}

func TestQueryEventsDoesNotCacheFullOutage(t *testing.T) {
	failing := &fakeSource{
		name:   "streaming",
		states: []QueryState{StateFailed},
	}
	c := NewClient([]Source{failing}, manager.NewManager(nil, nil), nil, nil)
	c.SetPollParams(time.Millisecond, 50*time.Millisecond)

	c.QueryEvents(context.Background(), "abcd1234", testWindow())
	c.QueryEvents(context.Background(), "abcd1234", testWindow())

	// Both calls must reach the source; an outage result is never cached.
	if failing.submits.Load() != 2 {
		t.Errorf("source submitted %d times, want 2 when every source failed", failing.submits.Load())
	}
}

func TestQueryEventsSkipsEmptyWindow(t *testing.T) {
	src := &fakeSource{name: "request", states: []QueryState{StateComplete}}
	w := analytics.Window{
		Start: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	events := fastClient(src).QueryEvents(context.Background(), "abcd1234", w)
	if events != nil {
		t.Errorf("expected nil for empty window, got %v", events)
	}
	if src.submits.Load() != 0 {
		t.Errorf("empty window still submitted %d queries", src.submits.Load())
	}
}
