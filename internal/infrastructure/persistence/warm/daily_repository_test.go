package warm

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
)

func testRepo(t *testing.T) *DailyAggregateRepository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewDailyAggregateRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return repo
}

func sampleAggregate(tenantID, date string) *analytics.DailyAggregate {
	agg := &analytics.DailyAggregate{
		TenantID:          tenantID,
		Date:              date,
		ConversationCount: 4,
		TotalMessages:     11,
		AvgResponseTimeMs: 310,
		TopQuestions: []analytics.QuestionCount{
			{Question: "pricing?", Count: 3},
		},
		AfterHoursCount: 2,
		StreamingCount:  1,
	}
	agg.HourlyDistribution[14] = 5
	agg.WeekdayDistribution[2] = 11
	return agg
}

func TestPutGetRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	day := time.Now().UTC().AddDate(0, 0, -10).Format(analytics.DayKeyFormat)
	want := sampleAggregate("t1", day)
	if err := repo.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := repo.Get(ctx, "t1", day)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for a stored day")
	}
	if got.ConversationCount != 4 || got.TotalMessages != 11 {
		t.Errorf("counts = %d/%d, want 4/11", got.ConversationCount, got.TotalMessages)
	}
	if got.HourlyDistribution[14] != 5 {
		t.Errorf("hourly[14] = %d, want 5", got.HourlyDistribution[14])
	}
	if len(got.TopQuestions) != 1 || got.TopQuestions[0].Count != 3 {
		t.Errorf("top questions = %+v", got.TopQuestions)
	}
}

func TestGetMissingDayIsAbsentNotError(t *testing.T) {
	repo := testRepo(t)

	got, err := repo.Get(context.Background(), "t1", "2025-01-15")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing day, got %+v", got)
	}
}

func TestExpiredRowsAreInvisibleAndSwept(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	// A day older than the retention window has an expiry in the past.
	stale := time.Now().UTC().AddDate(0, 0, -120).Format(analytics.DayKeyFormat)
	if err := repo.Put(ctx, sampleAggregate("t1", stale)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := repo.Get(ctx, "t1", stale)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("expired row should read as absent")
	}

	removed, err := repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if removed != 1 {
		t.Errorf("DeleteExpired removed %d rows, want 1", removed)
	}
}

func TestPutUpsertsSameDay(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	day := time.Now().UTC().AddDate(0, 0, -5).Format(analytics.DayKeyFormat)
	first := sampleAggregate("t1", day)
	if err := repo.Put(ctx, first); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second := sampleAggregate("t1", day)
	second.ConversationCount = 9
	if err := repo.Put(ctx, second); err != nil {
		t.Fatalf("Put (upsert): %v", err)
	}

	got, err := repo.Get(ctx, "t1", day)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ConversationCount != 9 {
		t.Errorf("ConversationCount = %d after upsert, want 9", got.ConversationCount)
	}
}
