package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/fbstats/internal/domain/model"
	"github.com/okian/fbstats/pkg/metrics"
)

// FileStore keeps records in a single JSON file. Freshness is the file's
// modification time, so the cache survives restarts.
type FileStore struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path: path,
		ttl:  DefaultTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the cache file location.
func (s *FileStore) Path() string { return s.path }

// Read returns the cached records if the file exists and is not older than the TTL.
func (s *FileStore) Read(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		metrics.RecordCacheLookup(metrics.ResultMiss)
		return nil, ErrCacheMiss
	}
	if err != nil {
		metrics.RecordCacheLookup(metrics.ResultError)
		return nil, fmt.Errorf("stat %s: %w", s.path, err)
	}
	if s.now().Sub(info.ModTime()) > s.ttl {
		metrics.RecordCacheLookup(metrics.ResultMiss)
		return nil, ErrCacheMiss
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		// removed between stat and read
		metrics.RecordCacheLookup(metrics.ResultMiss)
		return nil, ErrCacheMiss
	}
	if err != nil {
		metrics.RecordCacheLookup(metrics.ResultError)
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		metrics.RecordCacheLookup(metrics.ResultError)
		metrics.RecordErrorByComponent("repository", "corrupt")
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptCache, s.path, err)
	}

	metrics.RecordCacheLookup(metrics.ResultHit)
	return records, nil
}

// Write atomically replaces the cache file: readers see either the old
// file or the new one.
func (s *FileStore) Write(ctx context.Context, records []model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []model.Record{}
	}

	err := s.writeAtomic(records)
	if err != nil {
		metrics.RecordCacheWrite(metrics.ResultError)
		metrics.RecordErrorByComponent("repository", "write")
		return fmt.Errorf("%w: %w", ErrWriteCache, err)
	}
	metrics.RecordCacheWrite(metrics.ResultOK)
	return nil
}

func (s *FileStore) writeAtomic(records []model.Record) (err error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
