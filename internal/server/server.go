package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/semdiff/semdiff/internal/cache"
	"github.com/semdiff/semdiff/internal/engine"
	"github.com/semdiff/semdiff/internal/ratelimit"
)

const (
	// DefaultMaxTextChars bounds each text of a comparison request.
	DefaultMaxTextChars = 20000

	// DefaultMaxTotalChars bounds both texts combined. Premium requests
	// are exempt from this limit, matching the per-request cost model.
	DefaultMaxTotalChars = 15000

	// DefaultShutdownTimeout bounds graceful shutdown: in-flight
	// comparisons get this long to finish before the listener dies.
	DefaultShutdownTimeout = 15 * time.Second

	// healthPingTTL is how long a model reachability probe is reused
	// before /health pings again.
	healthPingTTL = 30 * time.Second

	// healthPingTimeout bounds one reachability probe.
	healthPingTimeout = 5 * time.Second
)

// ErrNoAnalyzer is returned by New when no analyzer is supplied.
var ErrNoAnalyzer = errors.New("server requires an analyzer")

// Analyzer runs one comparison. *engine.Engine satisfies it; tests
// substitute fakes.
type Analyzer interface {
	Analyze(ctx context.Context, req engine.Request) (*engine.Result, error)
}

// Pinger probes the model backend's reachability for health checks.
// *llm.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP surface: routing, middleware, request decoding,
// and the mapping from analysis errors to status codes. All verdict
// logic lives behind the Analyzer.
type Server struct {
	router   *chi.Mux
	analyzer Analyzer
	pinger   Pinger
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
	logger   *slog.Logger

	version       string
	corsOrigins   []string
	maxTextChars  int
	maxTotalChars int
	started       time.Time

	ping pingProbe
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version string reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithPinger enables model reachability reporting on /health.
func WithPinger(p Pinger) Option {
	return func(s *Server) {
		s.pinger = p
	}
}

// WithCache exposes cache counters on /v1/stats.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// WithLimiter exposes rate limiter counters on /v1/stats.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithCORSOrigins overrides the allowed CORS origins. The default
// allows all origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithTextLimits overrides the per-text and combined character limits.
// Non-positive values keep the defaults.
func WithTextLimits(maxText, maxTotal int) Option {
	return func(s *Server) {
		if maxText > 0 {
			s.maxTextChars = maxText
		}
		if maxTotal > 0 {
			s.maxTotalChars = maxTotal
		}
	}
}

// New creates a Server around the given analyzer.
func New(analyzer Analyzer, opts ...Option) (*Server, error) {
	if analyzer == nil {
		return nil, ErrNoAnalyzer
	}

	s := &Server{
		analyzer:      analyzer,
		logger:        slog.Default(),
		version:       "dev",
		corsOrigins:   []string{"*"},
		maxTextChars:  DefaultMaxTextChars,
		maxTotalChars: DefaultMaxTotalChars,
		started:       time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// setupMiddleware installs the middleware stack. Order matters:
// request IDs first so every later log line can carry one, the
// recoverer after logging so panics are both logged and contained.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes wires the handlers.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/compare", s.handleCompare)
		r.Get("/stats", s.handleStats)
	})
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully, letting in-flight comparisons finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("server listening", "addr", addr, "version", s.version)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down", "grace", DefaultShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// requestLogger logs one line per request with the request ID, so API
// traffic is visible without a separate access log.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"remote", r.RemoteAddr,
				"elapsed", time.Since(start),
			)
		})
	}
}
