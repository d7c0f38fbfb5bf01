package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrHalt stops pipeline execution early without reporting a failure.
// A step returns it when it has fully satisfied the run and the remaining
// steps must not execute, e.g. a cache hit that already produced the
// final result.
var ErrHalt = errors.New("pipeline halted")

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// state from previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and error wrapping
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step[T any] interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the target to modify.
	// Returning ErrHalt ends the run successfully; any other error aborts
	// it and is reported to the caller wrapped with the step's name.
	Do(ctx context.Context, target T) error

	// Name returns the step's name for logging and error wrapping.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps over a shared
// target value. It maintains a list of steps and executes them in order.
//
// The type parameter lets each consumer run the pipeline over its own
// state type without this package knowing about domain types.
type Pipeline[T any] struct {
	// steps contains the ordered list of steps to execute.
	steps []Step[T]

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// New creates a new Pipeline with the given logger.
// A nil logger falls back to slog.Default(). Steps are added with AddStep.
func New[T any](logger *slog.Logger) *Pipeline[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline[T]{
		steps:  make([]Step[T], 0),
		logger: logger,
	}
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline[T]) AddStep(step Step[T]) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline[T]) AddSteps(steps ...Step[T]) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps should handle their own timeouts. This allows
// graceful cleanup between steps while still respecting cancellation.
//
// An error returned by a step aborts the run and is wrapped with the
// step's name so callers can tell which phase failed. A step returning
// ErrHalt ends the run without an error.
func (p *Pipeline[T]) Execute(ctx context.Context, target T) error {
	for _, step := range p.steps {
		// Check for cancellation before starting each step
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return fmt.Errorf("%s: %w", step.Name(), ctx.Err())
		default:
			// Continue with execution
		}

		p.logger.Debug("executing step", "step", step.Name())

		if err := step.Do(ctx, target); err != nil {
			if errors.Is(err, ErrHalt) {
				p.logger.Debug("pipeline halted", "step", step.Name())
				return nil
			}

			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline[T]) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline[T]) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
