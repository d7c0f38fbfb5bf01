package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the fan-out limit used when the caller passes a
// non-positive limit to Map.
const DefaultConcurrency = 10

// Map runs fn over every item with bounded concurrency and returns the
// outputs in input order. It is the fan-out/fan-in primitive for work
// that must be dispatched in parallel but collected positionally, such
// as per-chunk analyses that a merger later stitches back together.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each item gets its own goroutine, but only 'limit' goroutines run
// simultaneously; excess items queue until a slot frees.
//
// Results are written into a pre-allocated slice indexed by item
// position, so completion order never leaks into the output. Each
// goroutine writes only its own slot and g.Wait() publishes the writes,
// which makes a mutex unnecessary.
//
// The first error cancels the group's context and is returned; partial
// outputs are discarded because a positional result set with holes is
// useless to callers that need every slot filled.
func Map[In, Out any](ctx context.Context, items []In, limit int, fn func(ctx context.Context, index int, item In) (Out, error)) ([]Out, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]Out, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			// Check for cancellation before starting: a queued task
			// whose sibling already failed should not begin work.
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			out, err := fn(ctx, i, item)
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
