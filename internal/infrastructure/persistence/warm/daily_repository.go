// Package warm implements the warm tier: per-day pre-aggregated records
// in the tenant database, expiring after the retention window.
package warm

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS daily_aggregates (
	partition_key TEXT NOT NULL,
	sort_key      TEXT NOT NULL,
	payload       TEXT NOT NULL,
	expires_at    INTEGER NOT NULL,
	PRIMARY KEY (partition_key, sort_key)
);
CREATE INDEX IF NOT EXISTS idx_daily_aggregates_expiry
	ON daily_aggregates (expires_at);
`

// DailyAggregateRepository reads and writes one DailyAggregate per tenant
// per calendar day, keyed the same way as the upstream aggregate store:
// TENANT#{id} / DATE#{yyyy-mm-dd}.
type DailyAggregateRepository struct {
	db *sql.DB
}

// NewDailyAggregateRepository wraps a tenant database connection
func NewDailyAggregateRepository(db *sql.DB) *DailyAggregateRepository {
	return &DailyAggregateRepository{db: db}
}

// EnsureSchema creates the daily_aggregates table if missing
func (r *DailyAggregateRepository) EnsureSchema() error {
	if _, err := r.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("create daily_aggregates schema: %w", err)
	}
	return nil
}

func partitionKey(tenantID string) string { return "TENANT#" + tenantID }
func sortKey(day string) string           { return "DATE#" + day }

// Get returns the aggregate for one calendar day, or nil when the day has
// no record. Rows past their expiry are treated as absent even before the
// sweep removes them.
func (r *DailyAggregateRepository) Get(ctx context.Context, tenantID, day string) (*analytics.DailyAggregate, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM daily_aggregates
		 WHERE partition_key = ? AND sort_key = ? AND expires_at > ?`,
		partitionKey(tenantID), sortKey(day), time.Now().Unix(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query daily aggregate %s/%s: %w", tenantID, day, err)
	}

	var agg analytics.DailyAggregate
	if err := json.Unmarshal([]byte(payload), &agg); err != nil {
		return nil, fmt.Errorf("decode daily aggregate %s/%s: %w", tenantID, day, err)
	}
	return &agg, nil
}

// Put upserts one day's aggregate with an expiry of the retention window
// past its calendar day
func (r *DailyAggregateRepository) Put(ctx context.Context, agg *analytics.DailyAggregate) error {
	day, err := time.Parse(analytics.DayKeyFormat, agg.Date)
	if err != nil {
		return fmt.Errorf("invalid aggregate date %q: %w", agg.Date, err)
	}

	payload, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode daily aggregate: %w", err)
	}

	expiresAt := day.AddDate(0, 0, config.WarmRetentionDays).Unix()

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO daily_aggregates (partition_key, sort_key, payload, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (partition_key, sort_key)
		 DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
		partitionKey(agg.TenantID), sortKey(agg.Date), string(payload), expiresAt)
	if err != nil {
		return fmt.Errorf("store daily aggregate %s/%s: %w", agg.TenantID, agg.Date, err)
	}
	return nil
}

// DeleteExpired removes all rows past their expiry and returns the count
func (r *DailyAggregateRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM daily_aggregates WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired aggregates: %w", err)
	}
	return res.RowsAffected()
}
