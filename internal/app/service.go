// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/okian/fbstats/internal/adapters/fetcher"
	"github.com/okian/fbstats/internal/adapters/repository"
	"github.com/okian/fbstats/internal/domain/model"
	"github.com/okian/fbstats/pkg/logger"
	"github.com/okian/fbstats/pkg/metrics"
)

// PageFetcher opens fetch sessions. *fetcher.Fetcher implements it.
type PageFetcher interface {
	Open(ctx context.Context) (fetcher.Session, error)
}

// Service serves the unified player statistics, scraping them when the
// cache is missing or stale.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	fetcher PageFetcher
	flight  singleflight.Group

	// Configuration
	sources       map[model.Category]string
	concurrency   int
	categoryDelay time.Duration

	// Run bookkeeping for GetStats
	runs        int64
	failures    int64
	lastRunID   string
	lastSuccess time.Time
	lastRecords int
	lastError   string

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record cache.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithFetcher sets the page fetcher.
func WithFetcher(f PageFetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithSources sets the page URL of each category.
func WithSources(sources map[model.Category]string) Option {
	return func(s *Service) {
		for c, url := range sources {
			s.sources[c] = url
		}
	}
}

// WithConcurrency caps how many category pages are fetched at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithCategoryDelay sets the pause before each category fetch after the first.
func WithCategoryDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.categoryDelay = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sources:       make(map[model.Category]string, len(model.Categories)),
		concurrency:   1,
		categoryDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Stats returns the unified records, from the cache while it is fresh and
// from a new scrape otherwise. Concurrent callers that miss the cache share
// one scrape. A failed scrape leaves the cache untouched and returns a
// *PipelineError.
func (s *Service) Stats(ctx context.Context) ([]model.Record, error) {
	if s.store == nil || s.fetcher == nil {
		return nil, ErrNotConfigured
	}

	records, err := s.store.Read(ctx)
	if err == nil {
		s.logger.Debug(ctx, "serving cached stats", logger.Int("records", len(records)))
		return records, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn(ctx, "cache unreadable, refreshing", logger.Error(err))
	}

	// The scrape outlives a caller that disconnects so its result still
	// reaches the cache and any callers sharing the flight.
	runCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan("stats", func() (any, error) {
		return s.refresh(runCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.Record), nil
	}
}

// refresh re-checks the cache, since a flight that just finished may have
// filled it, and runs the pipeline otherwise.
func (s *Service) refresh(ctx context.Context) ([]model.Record, error) {
	if records, err := s.store.Read(ctx); err == nil {
		return records, nil
	}

	runID := uuid.NewString()
	log := s.logger.With(logger.String("run_id", runID))
	start := time.Now()
	log.Info(ctx, "pipeline started", logger.Int("concurrency", s.concurrency))

	records, err := s.run(ctx, log)
	elapsed := time.Since(start)
	ms := float64(elapsed.Milliseconds())

	s.mu.Lock()
	s.runs++
	s.lastRunID = runID
	if err != nil {
		s.failures++
		s.lastError = err.Error()
	} else {
		s.lastSuccess = time.Now()
		s.lastRecords = len(records)
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		var pe *PipelineError
		if errors.As(err, &pe) {
			metrics.RecordStageFailure(string(pe.Stage))
		}
		metrics.RecordPipelineRun(metrics.OutcomeFailure, ms)
		metrics.RecordErrorByComponent("service", "pipeline")
		log.Error(ctx, "pipeline failed", logger.Duration("elapsed", elapsed), logger.Error(err))
		return nil, err
	}

	metrics.RecordPipelineRun(metrics.OutcomeSuccess, ms)
	metrics.UpdateRecordsEmitted(len(records))
	log.Info(ctx, "pipeline finished",
		logger.Int("records", len(records)),
		logger.Duration("elapsed", elapsed))
	return records, nil
}

// GetStats returns a snapshot of run bookkeeping.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"runs":         s.runs,
		"failures":     s.failures,
		"last_run_id":  s.lastRunID,
		"last_records": s.lastRecords,
		"last_error":   s.lastError,
		"concurrency":  s.concurrency,
	}
	if !s.lastSuccess.IsZero() {
		out["last_success"] = s.lastSuccess.UTC().Format(time.RFC3339)
	}
	return out
}
