package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/semdiff/semdiff/internal/engine"
	"github.com/semdiff/semdiff/internal/model"
)

// healthResponse is the /health payload. Model is present only when a
// reachability pinger is configured.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model,omitempty"`
}

// statsResponse is the /v1/stats payload. Sections are omitted when the
// corresponding component is not wired in.
type statsResponse struct {
	UptimeSeconds int64         `json:"uptime_seconds"`
	Cache         *cacheStats   `json:"cache,omitempty"`
	RateLimiter   *limiterStats `json:"rate_limiter,omitempty"`
}

type cacheStats struct {
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

type limiterStats struct {
	ActiveBuckets int `json:"active_buckets"`
}

// handleCompare decodes a comparison request, validates it, and runs
// the analysis. Rate limit headers ride on every response for callers
// subject to admission, success or not.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req model.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}

	// Premium callers pay per call, so only the per-text cap applies.
	maxTotal := s.maxTotalChars
	if req.PremiumMode {
		maxTotal = 0
	}
	if err := req.Validate(s.maxTextChars, maxTotal); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), engine.Request{
		CallerID:    clientIP(r),
		Original:    req.OriginalText,
		Generated:   req.GeneratedText,
		Sensitivity: req.Sensitivity,
		Premium:     req.PremiumMode,
	})
	if err != nil {
		s.writeAnalyzeError(w, r, err)
		return
	}

	setRateHeaders(w, result.Admission)
	respondJSON(w, http.StatusOK, result.Response)
}

// handleHealth reports liveness plus, when a pinger is configured, the
// model backend's reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy", Version: s.version}

	if s.pinger != nil {
		if err := s.ping.check(r.Context(), s.pinger); err != nil {
			resp.Status = "degraded"
			resp.Model = "unreachable"
		} else {
			resp.Model = "ok"
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleStats reports counters for capacity planning: cache
// effectiveness and how many callers the limiter is tracking.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}

	if s.cache != nil {
		st := s.cache.Stats()
		resp.Cache = &cacheStats{
			Size:      st.Size,
			Capacity:  st.Capacity,
			Hits:      st.Hits,
			Misses:    st.Misses,
			Evictions: st.Evictions,
			HitRate:   st.HitRate(),
		}
	}
	if s.limiter != nil {
		resp.RateLimiter = &limiterStats{ActiveBuckets: s.limiter.ActiveBuckets()}
	}

	respondJSON(w, http.StatusOK, resp)
}

// pingProbe caches the last model reachability result so health checks
// don't hammer the upstream.
type pingProbe struct {
	mu      sync.Mutex
	checked time.Time
	err     error
}

// check returns the cached probe result, refreshing it after
// healthPingTTL. The probe itself is bounded by healthPingTimeout.
func (p *pingProbe) check(ctx context.Context, pinger Pinger) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.checked.IsZero() && time.Since(p.checked) < healthPingTTL {
		return p.err
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	p.err = pinger.Ping(pingCtx)
	p.checked = time.Now()
	return p.err
}

// clientIP extracts the caller identity for rate limiting. RealIP
// middleware has already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
