package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/semdiff/semdiff/internal/cache"
	"github.com/semdiff/semdiff/internal/llm"
	"github.com/semdiff/semdiff/internal/model"
	"github.com/semdiff/semdiff/internal/pipeline"
	"github.com/semdiff/semdiff/internal/ratelimit"
	"github.com/semdiff/semdiff/internal/text"
)

const (
	// DefaultChunkThreshold is the combined text size in bytes above
	// which a comparison is split into chunks.
	DefaultChunkThreshold = 4000

	// DefaultChunkTarget is the per-side byte size each chunk aims for.
	DefaultChunkTarget = 3000

	// DefaultSimilarityThreshold is the diff ratio above which two
	// texts are treated as identical and the model is never consulted.
	DefaultSimilarityThreshold = 0.99

	// DefaultSafetyThreshold is the risk score at or above which a
	// response is marked unsafe even without a critical change.
	DefaultSafetyThreshold = 50

	// DefaultRequestTimeout bounds one whole comparison, including
	// every chunk's model calls and retries.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultMaxParallel caps concurrent model calls per comparison.
	DefaultMaxParallel = 10

	// contextWindow is how many bytes of surrounding text the merged
	// response quotes around each span. It matches the fingerprint
	// length the model is prompted to produce.
	contextWindow = 5
)

// Invoker performs one model call and returns the raw JSON analysis
// payload. *llm.Client satisfies it; tests substitute fakes.
type Invoker interface {
	Analyze(ctx context.Context, call llm.Call) (json.RawMessage, error)
}

// Request is one comparison job.
type Request struct {
	// CallerID attributes the request for rate limiting. When empty,
	// admission is skipped; local one-shot runs use this.
	CallerID string

	// Original is the reference text.
	Original string

	// Generated is the machine-produced rewrite under scrutiny.
	Generated string

	// Sensitivity selects how aggressively changes are graded. Empty
	// means the default sensitivity.
	Sensitivity model.Sensitivity

	// Premium selects the premium model for every chunk.
	Premium bool
}

// Result is the outcome of one comparison plus enough bookkeeping for
// callers to emit quota headers and meaningful logs.
type Result struct {
	// Response is the final verdict. Never nil on success.
	Response *model.DiffResponse

	// Admission is the limiter's decision, zero when admission was
	// skipped.
	Admission ratelimit.Decision

	// CacheHit reports that the response was served from cache.
	CacheHit bool

	// ShortCircuited reports that the texts were near-identical and no
	// model call was made.
	ShortCircuited bool

	// Chunked reports that the texts exceeded the chunk threshold.
	Chunked bool

	// ModelCalls is the number of chunk analyses dispatched.
	ModelCalls int

	// DroppedChanges counts model-reported changes discarded because
	// their spans could not be verified against the texts.
	DroppedChanges int
}

// Engine runs semantic comparisons: it admits, caches, short-circuits,
// chunks, dispatches to the model, reconciles spans, and merges chunk
// verdicts into a single response. Safe for concurrent use.
type Engine struct {
	invoker Invoker
	cache   *cache.Cache
	limiter *ratelimit.Limiter
	logger  *slog.Logger

	chunkThreshold      int
	chunkTarget         int
	similarityThreshold float64
	safetyThreshold     int
	requestTimeout      time.Duration
	maxParallel         int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache installs a response cache. Without one every request goes
// to the model.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithLimiter installs a rate limiter consulted for requests that
// carry a caller ID.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(e *Engine) {
		e.limiter = l
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithChunking overrides the combined-size threshold that triggers
// chunking and the per-side target size of each chunk. Non-positive
// values keep the defaults.
func WithChunking(threshold, target int) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.chunkThreshold = threshold
		}
		if target > 0 {
			e.chunkTarget = target
		}
	}
}

// WithSimilarityThreshold overrides the diff ratio above which the
// model is skipped. Values outside (0, 1] keep the default.
func WithSimilarityThreshold(ratio float64) Option {
	return func(e *Engine) {
		if ratio > 0 && ratio <= 1 {
			e.similarityThreshold = ratio
		}
	}
}

// WithSafetyThreshold overrides the risk score at or above which a
// response is marked unsafe.
func WithSafetyThreshold(score int) Option {
	return func(e *Engine) {
		if score > 0 {
			e.safetyThreshold = score
		}
	}
}

// WithRequestTimeout overrides the per-comparison deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.requestTimeout = d
		}
	}
}

// WithMaxParallel overrides the concurrent model call cap.
func WithMaxParallel(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxParallel = n
		}
	}
}

// New creates an Engine around the given invoker.
func New(invoker Invoker, opts ...Option) (*Engine, error) {
	if invoker == nil {
		return nil, ErrNoInvoker
	}

	e := &Engine{
		invoker:             invoker,
		logger:              slog.Default(),
		chunkThreshold:      DefaultChunkThreshold,
		chunkTarget:         DefaultChunkTarget,
		similarityThreshold: DefaultSimilarityThreshold,
		safetyThreshold:     DefaultSafetyThreshold,
		requestTimeout:      DefaultRequestTimeout,
		maxParallel:         DefaultMaxParallel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Analyze runs one comparison end to end. The request texts are
// sanitized before anything else, so cache keys, model prompts, and
// response offsets all agree on the same byte positions.
//
// On failure the returned error is wrapped with the name of the phase
// that failed; admission rejections unwrap to *AdmissionError and
// model failures to the llm package's sentinels.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	sensitivity := req.Sensitivity
	if sensitivity == "" {
		sensitivity = model.DefaultSensitivity
	}

	a := &analysis{
		req:         req,
		sensitivity: sensitivity,
		original:    text.Normalize(req.Original),
		generated:   text.Normalize(req.Generated),
		state:       StateReceived,
	}

	p := pipeline.New[*analysis](e.logger)
	p.AddSteps(
		&admitStep{engine: e},
		&cacheLookupStep{engine: e},
		&shortCircuitStep{engine: e},
		&chunkStep{engine: e},
		&dispatchStep{engine: e},
		&reconcileStep{engine: e},
		&mergeStep{engine: e},
		&cacheStoreStep{engine: e},
	)

	start := time.Now()
	if err := p.Execute(ctx, a); err != nil {
		e.logger.Error("analysis failed",
			"state", a.state,
			"caller_id", req.CallerID,
			"elapsed", time.Since(start),
			"error", err,
		)
		return nil, err
	}

	e.logger.Info("analysis complete",
		"state", a.state,
		"caller_id", req.CallerID,
		"cache_hit", a.cacheHit,
		"short_circuited", a.shortCircuited,
		"chunked", a.chunked,
		"model_calls", a.modelCalls,
		"dropped_changes", a.droppedChanges,
		"risk_score", a.response.Summary.RiskScore,
		"elapsed", time.Since(start),
	)

	return &Result{
		Response:       a.response,
		Admission:      a.admission,
		CacheHit:       a.cacheHit,
		ShortCircuited: a.shortCircuited,
		Chunked:        a.chunked,
		ModelCalls:     a.modelCalls,
		DroppedChanges: a.droppedChanges,
	}, nil
}
