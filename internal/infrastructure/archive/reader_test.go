package archive

import (
	"context"
	"testing"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
)

func TestObjectKeyLayout(t *testing.T) {
	day := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)
	got := ObjectKey("tenant-42", day)
	want := "daily-aggregates/2024/07/2024-07-03/tenant-42.json.gz"
	if got != want {
		t.Errorf("ObjectKey = %q, want %q", got, want)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	reader := NewReader(NewFSStore(t.TempDir()), nil, nil)
	ctx := context.Background()

	rec := &analytics.ArchiveRecord{
		DailyAggregate: analytics.DailyAggregate{
			TenantID:          "t1",
			Date:              "2024-07-03",
			ConversationCount: 2,
			TotalMessages:     6,
			AvgResponseTimeMs: 150,
		},
		Conversations: []analytics.QAEvent{
			{
				Timestamp:  time.Date(2024, 7, 3, 9, 0, 0, 0, time.UTC),
				TenantHash: "abcd1234",
				SessionID:  "s1",
				Question:   "q1",
			},
		},
	}
	if err := reader.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := reader.Get(ctx, "t1", time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for a stored day")
	}
	if got.ConversationCount != 2 || got.TotalMessages != 6 {
		t.Errorf("counts = %d/%d, want 2/6", got.ConversationCount, got.TotalMessages)
	}
	if len(got.Conversations) != 1 || got.Conversations[0].SessionID != "s1" {
		t.Errorf("conversations = %+v", got.Conversations)
	}
}

func TestMissingObjectIsNoData(t *testing.T) {
	reader := NewReader(NewFSStore(t.TempDir()), nil, nil)

	got, err := reader.Get(context.Background(), "t1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing object, got %+v", got)
	}
}

func TestCorruptObjectIsNoData(t *testing.T) {
	store := NewFSStore(t.TempDir())
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := store.PutObject(context.Background(), ObjectKey("t1", day), []byte("not gzip at all")); err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	reader := NewReader(store, nil, nil)
	got, err := reader.Get(context.Background(), "t1", day)
	if err != nil {
		t.Fatalf("Get should not error on corrupt data: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for corrupt object, got %+v", got)
	}
}
