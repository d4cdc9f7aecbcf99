package validate

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"dqcheck/pkg/records"
)

// Engine runs both validation layers over a batch. The layers are
// independent by construction: the dataset layer scans whole columns of the
// raw batch while the row layer judges records one by one.
type Engine struct {
	Row     *Row
	Dataset *Dataset

	// Workers bounds row-layer concurrency. 0 means GOMAXPROCS.
	Workers int
}

// Run evaluates the dataset layer on one goroutine and shards the row layer
// across a bounded worker group. Each verdict is written to its own index of
// a preallocated slice, so input order is preserved without locks. The only
// error Run can return is context cancellation; bad data is a verdict, not
// an error.
func (e *Engine) Run(ctx context.Context, batch *records.Batch) ([]Verdict, []ConstraintResult, error) {
	verdicts := make([]Verdict, batch.Len())
	var constraints []ConstraintResult

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		constraints = e.Dataset.Check(batch)
		return nil
	})

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > batch.Len() {
		workers = batch.Len()
	}

	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := range verdicts {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				verdicts[i] = e.Row.ValidateRow(i, batch.Rows[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return verdicts, constraints, nil
}
