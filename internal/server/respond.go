package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/semdiff/semdiff/internal/engine"
	"github.com/semdiff/semdiff/internal/llm"
	"github.com/semdiff/semdiff/internal/ratelimit"
)

// errorEnvelope is the wire shape of every error response.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// errorBody carries a stable machine-readable code next to the human
// message. RetryAfter is set only on rate limit denials.
type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retry_after,omitempty"`
}

// respondJSON writes data as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error envelope with the given status.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// setRateHeaders populates the standard rate limit headers from an
// admission decision. A zero-valued decision (caller not subject to
// rate limiting) writes nothing.
func setRateHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	if d.Limit <= 0 {
		return
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(d.Reset).Unix(), 10))
}

// writeAnalyzeError maps an analysis failure to its HTTP status.
//
// Design decision: The mapping distinguishes whose fault the failure
// is. 429 is the caller's pace, 5xx splits by layer: 502 when the model
// answered but wrongly, 503 when it couldn't be reached, 504 when the
// pipeline ran out of time, and 500 for everything this service itself
// failed to handle. Upstream status codes never pass through verbatim.
func (s *Server) writeAnalyzeError(w http.ResponseWriter, r *http.Request, err error) {
	var admission *engine.AdmissionError
	if errors.As(err, &admission) {
		d := admission.Decision
		retry := int64(math.Ceil(d.RetryAfter.Seconds()))
		if retry < 1 {
			retry = 1
		}
		setRateHeaders(w, d)
		w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
		respondJSON(w, http.StatusTooManyRequests, errorEnvelope{Error: errorBody{
			Code:       "rate_limit_exceeded",
			Message:    "Too many requests. Slow down and retry later.",
			RetryAfter: retry,
		}})
		return
	}

	s.logger.Error("comparison failed",
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)

	switch {
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "analysis_timeout",
			"The analysis did not finish in time. Retry, or compare shorter texts.")
	case errors.Is(err, llm.ErrRateLimited), errors.Is(err, llm.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "model_unavailable",
			"The analysis model is temporarily unavailable. Retry later.")
	case errors.Is(err, llm.ErrRejected), errors.Is(err, llm.ErrProtocol):
		respondError(w, http.StatusBadGateway, "model_error",
			"The analysis model reported an error.")
	case errors.Is(err, engine.ErrBadAnalysis):
		respondError(w, http.StatusInternalServerError, "bad_analysis",
			"The model returned an unusable analysis. Retry the request.")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred.")
	}
}
