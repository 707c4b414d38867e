package algebra

import (
	"context"

	"github.com/gitrdm/goalgebra/internal/parallel"
)

// RebuildAll rebuilds a batch of expressions concurrently under the
// currently active rule sets, preserving order. Creation is a pure
// function over the shared read-only rule sets, so items are
// independent; workers is the concurrency bound (0 means one worker per
// CPU core).
//
// Do not combine RebuildAll with TemporaryRules scopes that open or
// close while the batch is running: rule overrides are process-wide.
func RebuildAll(ctx context.Context, workers int, exprs []Expression) ([]Expression, error) {
	return parallel.Map(ctx, workers, len(exprs), func(ctx context.Context, i int) (Expression, error) {
		return Rebuild(exprs[i])
	})
}
