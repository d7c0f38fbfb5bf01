package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		status        int
		wantKind      error
		wantTransient bool
	}{
		{name: "request timeout", status: http.StatusRequestTimeout, wantKind: ErrTimeout, wantTransient: true},
		{name: "gateway timeout", status: http.StatusGatewayTimeout, wantKind: ErrTimeout, wantTransient: true},
		{name: "too many requests", status: http.StatusTooManyRequests, wantKind: ErrRateLimited, wantTransient: true},
		{name: "service unavailable", status: http.StatusServiceUnavailable, wantKind: ErrUnavailable, wantTransient: true},
		{name: "internal server error", status: http.StatusInternalServerError, wantKind: ErrProtocol, wantTransient: true},
		{name: "bad gateway", status: http.StatusBadGateway, wantKind: ErrProtocol, wantTransient: true},
		{name: "bad request", status: http.StatusBadRequest, wantKind: ErrRejected, wantTransient: false},
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: ErrRejected, wantTransient: false},
		{name: "unprocessable entity", status: http.StatusUnprocessableEntity, wantKind: ErrRejected, wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := newAPIError(fakeResponse(tt.status, ""))
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("errors.Is(%v, %v) = false, want true", err, tt.wantKind)
			}
			if got := err.Transient(); got != tt.wantTransient {
				t.Errorf("Transient() = %v, want %v", got, tt.wantTransient)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
		})
	}

	t.Run("extracts the upstream error message", func(t *testing.T) {
		t.Parallel()

		err := newAPIError(fakeResponse(429, `{"error":{"message":"slow down"}}`))
		if err.Message != "slow down" {
			t.Errorf("Message = %q, want %q", err.Message, "slow down")
		}
		if !strings.Contains(err.Error(), "slow down") {
			t.Errorf("Error() = %q, want it to carry the upstream message", err.Error())
		}
	})

	t.Run("falls back to the raw body", func(t *testing.T) {
		t.Parallel()

		err := newAPIError(fakeResponse(500, "plain text failure"))
		if err.Message != "plain text failure" {
			t.Errorf("Message = %q, want raw body", err.Message)
		}
	})
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransport(t *testing.T) {
	t.Parallel()

	t.Run("deadline exceeded maps to timeout", func(t *testing.T) {
		t.Parallel()

		err := classifyTransport(context.DeadlineExceeded)
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("got %v, want ErrTimeout", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Error("original deadline error no longer detectable")
		}
	})

	t.Run("network timeout maps to timeout", func(t *testing.T) {
		t.Parallel()

		if err := classifyTransport(timeoutErr{}); !errors.Is(err, ErrTimeout) {
			t.Errorf("got %v, want ErrTimeout", err)
		}
	})

	t.Run("other transport faults map to unavailable", func(t *testing.T) {
		t.Parallel()

		if err := classifyTransport(errors.New("connection refused")); !errors.Is(err, ErrUnavailable) {
			t.Errorf("got %v, want ErrUnavailable", err)
		}
	})

	t.Run("cancellation passes through", func(t *testing.T) {
		t.Parallel()

		err := classifyTransport(context.Canceled)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
		if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout) {
			t.Error("cancellation was classified as an upstream fault")
		}
	})
}
