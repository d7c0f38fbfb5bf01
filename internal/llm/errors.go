package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// Model invocation errors.
//
// Design decision: We define one sentinel per failure class rather than
// exposing raw HTTP or transport errors. Callers decide per class — a
// rate-limited or unavailable upstream maps to 503, a timeout to 504, a
// protocol fault to 502 — without parsing status codes themselves, and
// the retry loop uses the same classes to tell transient failures from
// hard rejections.
var (
	// ErrMissingAPIKey is returned when no API key is available at
	// client construction time.
	ErrMissingAPIKey = errors.New("model API key is not set")

	// ErrTimeout is returned when a model call exceeds its deadline,
	// either locally or reported by the upstream (408, 504).
	ErrTimeout = errors.New("model call timed out")

	// ErrRateLimited is returned when the upstream rejects the call
	// with 429. Retryable after backoff.
	ErrRateLimited = errors.New("model provider rate limit exceeded")

	// ErrUnavailable is returned when the upstream is unreachable or
	// answers 503. Usually transient.
	ErrUnavailable = errors.New("model provider unavailable")

	// ErrProtocol is returned for malformed or unexpected payloads and
	// for upstream 5xx faults: the exchange happened but its content
	// cannot be trusted. Retried, since a fresh completion may be well
	// formed.
	ErrProtocol = errors.New("model protocol error")

	// ErrRejected is returned for 4xx request faults other than 408
	// and 429. The request itself is wrong; retrying cannot help.
	ErrRejected = errors.New("model rejected the request")
)

// APIError carries the upstream HTTP status and message alongside its
// error class. Unwrap exposes the class sentinel, so
// errors.Is(err, llm.ErrRateLimited) works on it directly.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model API status %d", e.StatusCode)
	}
	return fmt.Sprintf("model API status %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the classification sentinel.
func (e *APIError) Unwrap() error {
	return e.kind
}

// Transient reports whether retrying the same call can succeed.
func (e *APIError) Transient() bool {
	return transient(e)
}

// classifyStatus maps an upstream HTTP status to its error class.
func classifyStatus(code int) error {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return ErrTimeout
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code == http.StatusServiceUnavailable:
		return ErrUnavailable
	case code >= 500:
		return ErrProtocol
	default:
		return ErrRejected
	}
}

// newAPIError builds an APIError from a non-200 response, pulling the
// upstream message out of the standard error envelope when present.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		kind:       classifyStatus(resp.StatusCode),
	}
}

// classifyTransport maps a transport-level failure to its error class.
// Context cancellation passes through untouched so callers can tell a
// caller-initiated abort from an upstream fault.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// transient reports whether an error class is worth retrying.
func transient(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrProtocol)
}
