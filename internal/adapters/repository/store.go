// Package repository persists the last successful record set between runs.
package repository

import (
	"context"

	"github.com/okian/fbstats/internal/domain/model"
)

// Store provides read/write access to the cached record set.
type Store interface {
	// Read returns the cached records while they are fresh.
	// Returns ErrCacheMiss if nothing is cached or the cache is stale.
	Read(ctx context.Context) ([]model.Record, error)

	// Write replaces the cached records and resets their age.
	Write(ctx context.Context, records []model.Record) error
}
