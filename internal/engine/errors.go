package engine

import (
	"errors"
	"fmt"

	"github.com/semdiff/semdiff/internal/ratelimit"
)

var (
	// ErrNoInvoker is returned by New when no model invoker is supplied.
	ErrNoInvoker = errors.New("engine requires a model invoker")

	// ErrBadAnalysis is returned when a model payload decodes but cannot
	// be used, e.g. the summary block is missing. Payloads that fail to
	// decode at all surface the json error wrapped with this sentinel.
	ErrBadAnalysis = errors.New("unusable model analysis")
)

// AdmissionError reports that the rate limiter rejected the request
// before any work was done. It carries the limiter's decision so
// callers can surface quota headers and a retry hint.
type AdmissionError struct {
	// Decision is the limiter's verdict at the time of rejection.
	Decision ratelimit.Decision
}

// Error implements the error interface.
func (e *AdmissionError) Error() string {
	return fmt.Sprintf("rate limit exceeded: retry after %s", e.Decision.RetryAfter)
}
