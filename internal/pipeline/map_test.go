package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMap(t *testing.T) {
	t.Parallel()

	t.Run("preserves input order", func(t *testing.T) {
		t.Parallel()

		items := []int{0, 1, 2, 3, 4, 5, 6, 7}
		got, err := Map(context.Background(), items, 3, func(_ context.Context, i int, item int) (string, error) {
			// Stagger completions so later items finish first.
			time.Sleep(time.Duration(len(items)-i) * time.Millisecond)
			return fmt.Sprintf("item-%d", item), nil
		})
		if err != nil {
			t.Fatalf("Map() error = %v, want nil", err)
		}
		if len(got) != len(items) {
			t.Fatalf("len(got) = %d, want %d", len(got), len(items))
		}
		for i, item := range items {
			want := fmt.Sprintf("item-%d", item)
			if got[i] != want {
				t.Errorf("got[%d] = %q, want %q", i, got[i], want)
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		const limit = 2
		var current, peak atomic.Int32

		_, err := Map(context.Background(), make([]int, 20), limit, func(_ context.Context, _ int, _ int) (int, error) {
			n := current.Add(1)
			defer current.Add(-1)

			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}

			time.Sleep(2 * time.Millisecond)
			return 0, nil
		})
		if err != nil {
			t.Fatalf("Map() error = %v, want nil", err)
		}
		if got := peak.Load(); got > limit {
			t.Errorf("peak concurrency = %d, want at most %d", got, limit)
		}
	})

	t.Run("returns first error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("item failed")
		_, err := Map(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, i int, _ int) (int, error) {
			if i == 1 {
				return 0, wantErr
			}
			return 0, nil
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("Map() error = %v, want %v", err, wantErr)
		}
	})

	t.Run("cancels remaining work on error", func(t *testing.T) {
		t.Parallel()

		var started atomic.Int32
		var mu sync.Mutex
		failErr := errors.New("early failure")

		_, err := Map(context.Background(), make([]int, 50), 1, func(ctx context.Context, i int, _ int) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			started.Add(1)
			if i == 0 {
				return 0, failErr
			}
			return 0, nil
		})
		if !errors.Is(err, failErr) {
			t.Fatalf("Map() error = %v, want %v", err, failErr)
		}
		// With limit 1 the first item fails before most others start;
		// the cancellation check must keep the tail from running fn.
		if got := started.Load(); got == 50 {
			t.Error("all items ran despite an early failure")
		}
	})

	t.Run("empty input returns empty output", func(t *testing.T) {
		t.Parallel()

		got, err := Map(context.Background(), []int(nil), 4, func(_ context.Context, _ int, _ int) (int, error) {
			return 0, nil
		})
		if err != nil {
			t.Fatalf("Map() error = %v, want nil", err)
		}
		if len(got) != 0 {
			t.Errorf("len(got) = %d, want 0", len(got))
		}
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		t.Parallel()

		got, err := Map(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, _ int, item int) (int, error) {
			return item * 2, nil
		})
		if err != nil {
			t.Fatalf("Map() error = %v, want nil", err)
		}
		want := []int{2, 4, 6}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
			}
		}
	})
}
