package llm

import (
	"math/rand/v2"
	"time"
)

// Backoff computes retry delays: exponential growth from Base, capped
// at Max, optionally randomized with full jitter. The zero value is
// usable and falls back to the package defaults.
type Backoff struct {
	// Base is the delay bound for the first retry.
	Base time.Duration

	// Max caps the exponential growth.
	Max time.Duration

	// Jitter, when true, draws the actual delay uniformly from
	// [0, bound] instead of sleeping the full bound. Spreads
	// simultaneous retries apart so they do not hammer a recovering
	// upstream in lockstep.
	Jitter bool
}

// Delay returns the delay before retry number attempt (1 for the first
// retry). Without jitter the result is exactly min(Base·2^(attempt-1),
// Max); with jitter it is uniform in [0, that bound].
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := b.Base
	if base <= 0 {
		base = DefaultBackoffBase
	}
	limit := b.Max
	if limit <= 0 {
		limit = DefaultBackoffMax
	}

	// Doubling in a loop instead of shifting keeps large attempt
	// numbers from overflowing the duration.
	bound := base
	for i := 1; i < attempt && bound < limit; i++ {
		bound *= 2
	}
	if bound > limit {
		bound = limit
	}

	if b.Jitter {
		return rand.N(bound + 1)
	}
	return bound
}
