package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/ranker"
	"github.com/spigell/resume-ranker/internal/results"
)

type RankedSource interface {
	GetRankedResumes(ctx context.Context) ([]*ranker.Candidate, error)
}

// Fetcher refreshes a Store from the ranked results endpoint.
type Fetcher struct {
	source  RankedSource
	store   *results.Store
	filters *filtering.Filtering
	logger  *zap.Logger
}

// NewFetcher returns a Fetcher. filters may be nil.
func NewFetcher(source RankedSource, store *results.Store, filters *filtering.Filtering, log *zap.Logger) *Fetcher {
	return &Fetcher{
		source:  source,
		store:   store,
		filters: filters,
		logger:  logger.WithRequestFields(log, ranker.RankedPath, ""),
	}
}

// Refresh replaces the store contents with the current ranked list. On any
// error the store keeps what it had.
func (f *Fetcher) Refresh(ctx context.Context) ([]*ranker.Candidate, error) {
	candidates, err := f.source.GetRankedResumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("refreshing results: %w", err)
	}

	received := len(candidates)

	candidates, err = f.filters.Run(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("filtering results: %w", err)
	}

	f.store.Replace(candidates)

	f.logger.Debug("results refreshed",
		zap.Int("received", received),
		zap.Int("kept", len(candidates)),
	)

	return f.store.Snapshot(), nil
}
