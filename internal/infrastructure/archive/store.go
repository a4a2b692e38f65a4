// Package archive implements the cold tier: gzip-compressed per-day
// records in an object store.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
)

// ErrObjectNotFound is returned by stores when no object exists at a key.
var ErrObjectNotFound = errors.New("archive object not found")

// ObjectStore abstracts the blob backend holding archive objects.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
}

// ObjectKey builds the canonical archive key for one tenant day:
// daily-aggregates/{yyyy}/{mm}/{yyyy-mm-dd}/{tenantId}.json.gz
func ObjectKey(tenantID string, day time.Time) string {
	day = day.UTC()
	return fmt.Sprintf("daily-aggregates/%04d/%02d/%s/%s.json.gz",
		day.Year(), int(day.Month()), day.Format(analytics.DayKeyFormat), tenantID)
}

// FSStore is an ObjectStore over a local directory tree. Deployments point
// it at a mounted bucket; tests point it at a temp dir.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem-backed object store rooted at root
func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

// GetObject reads one object, mapping missing files to ErrObjectNotFound
func (s *FSStore) GetObject(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read archive object %s: %w", key, err)
	}
	return data, nil
}

// PutObject writes one object, creating parent directories as needed
func (s *FSStore) PutObject(_ context.Context, key string, data []byte) error {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create archive directory for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write archive object %s: %w", key, err)
	}
	return nil
}
