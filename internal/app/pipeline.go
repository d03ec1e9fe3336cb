package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fbstats/internal/adapters/fetcher"
	"github.com/okian/fbstats/internal/domain/derive"
	"github.com/okian/fbstats/internal/domain/extract"
	"github.com/okian/fbstats/internal/domain/join"
	"github.com/okian/fbstats/internal/domain/model"
	"github.com/okian/fbstats/internal/domain/normalize"
	"github.com/okian/fbstats/pkg/logger"
	"github.com/okian/fbstats/pkg/metrics"
)

// run executes fetch, extract, normalize, join, derive and persist.
func (s *Service) run(ctx context.Context, log logger.Logger) ([]model.Record, error) {
	tables, err := s.collect(ctx, log)
	if err != nil {
		return nil, err
	}

	joined, err := join.Join(tables)
	if err != nil {
		return nil, stageError(StageJoin, "", err)
	}
	log.Debug(ctx, "tables joined", logger.Int("players", len(joined.Rows)))

	records := derive.Records(joined)
	if len(records) == 0 {
		return nil, stageError(StageDerive, "", ErrNoRecords)
	}

	if err := s.store.Write(ctx, records); err != nil {
		return nil, stageError(StagePersist, "", err)
	}
	return records, nil
}

// collect fetches and normalizes every category within one fetch session.
func (s *Service) collect(ctx context.Context, log logger.Logger) (map[model.Category]model.Table, error) {
	for _, c := range model.Categories {
		if s.sources[c] == "" {
			return nil, stageError(StageFetch, c, ErrNoSource)
		}
	}

	session, err := s.fetcher.Open(ctx)
	if err != nil {
		return nil, stageError(StageFetch, "", fmt.Errorf("open session: %w", err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn(ctx, "closing fetch session", logger.Error(err))
		}
	}()

	// Indexed by category position so completion order does not matter.
	results := make([]model.Table, len(model.Categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, c := range model.Categories {
		i, c := i, c
		g.Go(func() error {
			if i > 0 {
				if err := pause(gctx, s.categoryDelay); err != nil {
					return stageError(StageFetch, c, err)
				}
			}
			t, err := s.category(gctx, log, session, c)
			if err != nil {
				return err
			}
			results[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := make(map[model.Category]model.Table, len(results))
	for i, c := range model.Categories {
		tables[c] = results[i]
	}
	return tables, nil
}

func (s *Service) category(ctx context.Context, log logger.Logger, session fetcher.Session, c model.Category) (model.Table, error) {
	start := time.Now()
	markup, err := session.Fetch(ctx, s.sources[c], c.ContainerID())
	metrics.RecordFetchDuration(c.String(), float64(time.Since(start).Milliseconds()))
	if err != nil {
		return model.Table{}, stageError(StageFetch, c, err)
	}

	raw, err := extract.Extract(markup)
	if err != nil {
		return model.Table{}, stageError(StageExtract, c, err)
	}

	t := normalize.Normalize(raw)
	if !t.HasColumn(model.ColPlayer) || !t.HasColumn(model.ColSquad) {
		return model.Table{}, stageError(StageNormalize, c, ErrMissingIdentity)
	}

	log.Debug(ctx, "category loaded",
		logger.String("category", c.String()),
		logger.Int("rows", len(t.Rows)),
		logger.Duration("elapsed", time.Since(start)))
	return t, nil
}

// pause waits for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
