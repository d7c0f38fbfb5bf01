// Package pipeline provides a generic sequential step executor and a
// bounded-concurrency mapper for fan-out work.
//
// A Pipeline runs typed Steps in order against a shared target value,
// stopping at the first failure or when a step returns ErrHalt to
// signal an early, successful exit. Map dispatches independent items
// to a bounded set of goroutines and collects results in input order.
//
// The package is domain-agnostic: steps carry whatever state they need
// on the target type, and the pipeline only sequences, logs, and wraps
// errors with the failing step's name.
package pipeline
