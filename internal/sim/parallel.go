package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run. Jobs must not share a System.
type Job struct {
	Name      string
	Simulator *Simulator
	Config    Config
}

// RunAll runs jobs concurrently, at most limit at a time (unbounded when
// limit <= 0). Results are in job order. The first failure cancels the
// remaining runs and is returned.
func RunAll(ctx context.Context, jobs []Job, limit int) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		g.Go(func() error {
			res, err := job.Simulator.Run(ctx, job.Config)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
