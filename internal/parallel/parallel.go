// Package parallel provides bounded parallel execution helpers for
// batch expression work. Simplification is a pure function of its
// inputs, so independent items can be processed concurrently; these
// utilities add worker limits and context cancellation around that.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every index in [0, n) using at most maxWorkers
// goroutines, collecting results in order. The first error cancels the
// remaining work and is returned. If maxWorkers is 0 or negative it
// defaults to the number of CPU cores.
func Map[T any](ctx context.Context, maxWorkers, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	results := make([]T, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			out, err := fn(ctx, i)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ForEach applies fn to every index in [0, n) with the same bounds and
// cancellation behavior as Map, without collecting results.
func ForEach(ctx context.Context, maxWorkers, n int, fn func(ctx context.Context, i int) error) error {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}
