package backtest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nWish8/Sandbox/market"
)

// Job is one independent backtest.
type Job struct {
	Name     string
	Series   *market.Series
	Strategy Strategy
	Config   Config
}

// RunAll runs jobs concurrently, at most limit at a time (limit <= 0 means
// no limit). Each job gets its own Engine and ledger; nothing is shared but
// the read-only series. Results come back in job order once every job has
// finished. The first failure cancels the rest.
func RunAll(ctx context.Context, jobs []Job, limit int, opts ...Option) ([]*Result, error) {
	engines := make([]*Engine, len(jobs))
	for i, j := range jobs {
		e, err := NewEngine(j.Config, opts...)
		if err != nil {
			return nil, fmt.Errorf("job %d (%s): %w", i, j.Name, err)
		}
		engines[i] = e
	}

	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, j := range jobs {
		g.Go(func() error {
			res, err := engines[i].Run(ctx, j.Series, j.Strategy)
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, j.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
