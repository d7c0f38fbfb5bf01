package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Default limiter parameters, used when no option overrides them.
const (
	// DefaultPerMinute is the sustained per-caller request quota.
	DefaultPerMinute = 60

	// DefaultBurst is the extra headroom above the sustained quota.
	DefaultBurst = 10

	// DefaultIdleAfter is how long an untouched bucket survives before
	// a sweep reclaims it.
	DefaultIdleAfter = 10 * time.Minute

	// DefaultSweepInterval is how often Run purges idle buckets.
	DefaultSweepInterval = 5 * time.Minute
)

// Decision is the outcome of an admission attempt, carrying everything
// an HTTP layer needs to populate rate-limit headers.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Limit is the bucket capacity (sustained quota plus burst).
	Limit int

	// Remaining is the whole number of requests still admissible
	// right now.
	Remaining int

	// Reset is how long until the bucket refills completely.
	Reset time.Duration

	// RetryAfter is how long until the rejected cost becomes
	// affordable. Zero on allowed decisions; at least one second on
	// denials.
	RetryAfter time.Duration
}

// bucket tracks one caller's token balance.
type bucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// Limiter is a per-caller token bucket rate limiter, safe for
// concurrent use. Each caller's bucket holds capacity = quota + burst
// tokens and refills continuously at quota/60 tokens per second; a
// request is admitted by subtracting its cost, and denied without
// touching the balance when the cost exceeds the available tokens, so
// balances never go negative.
//
// Design decision: Continuous refill instead of fixed windows. A fixed
// window admits up to double the quota across a window boundary;
// continuous refill makes the sustained rate independent of request
// phase while the burst allowance still absorbs short spikes.
//
// Admission never blocks. Callers that want to wait must do their own
// backoff using Decision.RetryAfter.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	capacity  float64
	perSec    float64
	idleAfter time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// settings collects option values before New derives the bucket
// parameters from them.
type settings struct {
	perMinute int
	burst     int
	idleAfter time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Limiter.
type Option func(*settings)

// WithRate sets the sustained per-minute quota. Non-positive values
// are ignored.
func WithRate(perMinute int) Option {
	return func(s *settings) {
		if perMinute > 0 {
			s.perMinute = perMinute
		}
	}
}

// WithBurst sets the burst headroom above the sustained quota.
// Negative values are ignored.
func WithBurst(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.burst = n
		}
	}
}

// WithIdleAfter sets how long an untouched bucket survives before
// Sweep reclaims it. Non-positive values are ignored.
func WithIdleAfter(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.idleAfter = d
		}
	}
}

// WithLogger sets the logger used for sweep diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source. Tests use this to control
// refill without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Limiter with the default quota, burst, and idle
// horizon unless overridden by options.
func New(opts ...Option) *Limiter {
	s := settings{
		perMinute: DefaultPerMinute,
		burst:     DefaultBurst,
		idleAfter: DefaultIdleAfter,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Limiter{
		buckets:   make(map[string]*bucket),
		capacity:  float64(s.perMinute + s.burst),
		perSec:    float64(s.perMinute) / 60.0,
		idleAfter: s.idleAfter,
		now:       s.now,
		logger:    s.logger,
	}
}

// Admit attempts to charge cost tokens to callerID's bucket and
// reports the outcome. A non-positive cost counts as one. New callers
// start with a full bucket.
func (l *Limiter) Admit(callerID string, cost float64) Decision {
	if cost <= 0 {
		cost = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[callerID]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[callerID] = b
	}

	l.refill(b, now)
	b.lastSeen = now

	d := Decision{Limit: int(l.capacity)}
	if b.tokens >= cost {
		b.tokens -= cost
		d.Allowed = true
	} else {
		deficit := cost - b.tokens
		wait := time.Duration(math.Ceil(deficit/l.perSec)) * time.Second
		if wait < time.Second {
			wait = time.Second
		}
		d.RetryAfter = wait
	}

	d.Remaining = int(math.Floor(b.tokens))
	d.Reset = l.untilFull(b)
	return d
}

// refill credits tokens for the time elapsed since the last refill,
// capped at capacity. A clock that moved backwards credits nothing
// but still resets the refill mark, so a later forward step cannot
// mint a giant catch-up credit.
func (l *Limiter) refill(b *bucket, now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSec)
	}
	b.lastRefill = now
}

// untilFull reports how long the bucket needs to refill completely.
func (l *Limiter) untilFull(b *bucket) time.Duration {
	missing := l.capacity - b.tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / l.perSec * float64(time.Second))
}

// Sweep removes buckets untouched for longer than the idle horizon and
// returns how many were reclaimed. An idle caller that returns later
// simply starts over with a full bucket.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleAfter {
			delete(l.buckets, id)
			removed++
		}
	}
	return removed
}

// Run purges idle buckets every interval until ctx is cancelled.
// A non-positive interval uses DefaultSweepInterval.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := l.Sweep(); removed > 0 {
				l.logger.Debug("rate limiter sweep", "removed", removed)
			}
		}
	}
}

// ActiveBuckets returns the number of callers currently tracked.
func (l *Limiter) ActiveBuckets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
