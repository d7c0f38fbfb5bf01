package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// target is the value mock steps mutate during tests.
type target struct {
	trace []string
}

// mockStep is a configurable Step implementation for tests.
type mockStep struct {
	name string
	fn   func(ctx context.Context, tgt *target) error
}

func (m *mockStep) Do(ctx context.Context, tgt *target) error {
	if m.fn != nil {
		return m.fn(ctx, tgt)
	}
	tgt.trace = append(tgt.trace, m.name)
	return nil
}

func (m *mockStep) Name() string { return m.name }

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates empty pipeline", func(t *testing.T) {
		t.Parallel()

		p := New[*target](nil)
		if p == nil {
			t.Fatal("New() returned nil")
		}
		if got := p.StepCount(); got != 0 {
			t.Errorf("StepCount() = %d, want 0", got)
		}
	})
}

func TestPipeline_AddStep(t *testing.T) {
	t.Parallel()

	p := New[*target](nil)
	p.AddStep(&mockStep{name: "first"})
	p.AddStep(&mockStep{name: "second"})

	if got := p.StepCount(); got != 2 {
		t.Errorf("StepCount() = %d, want 2", got)
	}

	names := p.StepNames()
	want := []string{"first", "second"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("StepNames()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestPipeline_AddSteps(t *testing.T) {
	t.Parallel()

	p := New[*target](nil)
	p.AddSteps(
		&mockStep{name: "a"},
		&mockStep{name: "b"},
		&mockStep{name: "c"},
	)

	if got := p.StepCount(); got != 3 {
		t.Errorf("StepCount() = %d, want 3", got)
	}
}

func TestPipeline_Execute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		p := New[*target](nil)
		p.AddSteps(
			&mockStep{name: "first"},
			&mockStep{name: "second"},
			&mockStep{name: "third"},
		)

		tgt := &target{}
		if err := p.Execute(context.Background(), tgt); err != nil {
			t.Fatalf("Execute() error = %v, want nil", err)
		}

		want := []string{"first", "second", "third"}
		if len(tgt.trace) != len(want) {
			t.Fatalf("trace length = %d, want %d", len(tgt.trace), len(want))
		}
		for i, name := range want {
			if tgt.trace[i] != name {
				t.Errorf("trace[%d] = %q, want %q", i, tgt.trace[i], name)
			}
		}
	})

	t.Run("stops at first error and wraps step name", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		p := New[*target](nil)
		p.AddSteps(
			&mockStep{name: "first"},
			&mockStep{name: "failing", fn: func(_ context.Context, _ *target) error {
				return wantErr
			}},
			&mockStep{name: "unreached"},
		)

		tgt := &target{}
		err := p.Execute(context.Background(), tgt)
		if err == nil {
			t.Fatal("Execute() error = nil, want non-nil")
		}
		if !errors.Is(err, wantErr) {
			t.Errorf("Execute() error = %v, want wrapped %v", err, wantErr)
		}
		if !strings.Contains(err.Error(), "failing") {
			t.Errorf("Execute() error %q does not name the failing step", err)
		}
		if len(tgt.trace) != 1 || tgt.trace[0] != "first" {
			t.Errorf("trace = %v, want only the first step to have run", tgt.trace)
		}
	})

	t.Run("halt sentinel stops execution without error", func(t *testing.T) {
		t.Parallel()

		p := New[*target](nil)
		p.AddSteps(
			&mockStep{name: "first"},
			&mockStep{name: "halting", fn: func(_ context.Context, _ *target) error {
				return ErrHalt
			}},
			&mockStep{name: "unreached", fn: func(_ context.Context, tgt *target) error {
				tgt.trace = append(tgt.trace, "unreached")
				return nil
			}},
		)

		tgt := &target{}
		if err := p.Execute(context.Background(), tgt); err != nil {
			t.Fatalf("Execute() error = %v, want nil after halt", err)
		}
		for _, step := range tgt.trace {
			if step == "unreached" {
				t.Error("step after halt was executed")
			}
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := New[*target](nil)
		p.AddStep(&mockStep{name: "never"})

		tgt := &target{}
		err := p.Execute(ctx, tgt)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Execute() error = %v, want context.Canceled", err)
		}
		if len(tgt.trace) != 0 {
			t.Errorf("trace = %v, want no steps to have run", tgt.trace)
		}
	})

	t.Run("empty pipeline succeeds", func(t *testing.T) {
		t.Parallel()

		p := New[*target](nil)
		if err := p.Execute(context.Background(), &target{}); err != nil {
			t.Errorf("Execute() error = %v, want nil", err)
		}
	})
}
