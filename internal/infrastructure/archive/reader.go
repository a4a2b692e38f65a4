package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
)

// Reader fetches and decodes per-day archive records. Missing objects and
// corrupt payloads both read as "no data for that day"; only the store
// itself erroring is surfaced, and even that is degraded by the caller.
type Reader struct {
	store   ObjectStore
	logger  *logging.ChanneledLogger
	metrics *metrics.Registry
}

// NewReader creates an archive reader over the given object store
func NewReader(store ObjectStore, logger *logging.ChanneledLogger, m *metrics.Registry) *Reader {
	return &Reader{store: store, logger: logger, metrics: m}
}

// Get returns the archive record for one tenant day, or nil when the day
// has no usable record.
func (r *Reader) Get(ctx context.Context, tenantID string, day time.Time) (*analytics.ArchiveRecord, error) {
	key := ObjectKey(tenantID, day)

	data, err := r.store.GetObject(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec, err := decode(data)
	if err != nil {
		if r.metrics != nil {
			r.metrics.ParseFailures.Inc()
		}
		if r.logger != nil {
			r.logger.Archive().Warn("Corrupt archive object treated as no data",
				"key", key, "error", err.Error())
		}
		return nil, nil
	}
	return rec, nil
}

// Put gzips and stores one archive record under its canonical key
func (r *Reader) Put(ctx context.Context, rec *analytics.ArchiveRecord) error {
	day, err := time.Parse(analytics.DayKeyFormat, rec.Date)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(rec); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	return r.store.PutObject(ctx, ObjectKey(rec.TenantID, day), buf.Bytes())
}

func decode(data []byte) (*analytics.ArchiveRecord, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	payload, err := io.ReadAll(gz)
	if err != nil {
		return nil, err
	}

	var rec analytics.ArchiveRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
