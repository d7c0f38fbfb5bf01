package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/semdiff/semdiff/internal/model"
)

// Default cache parameters, used when no option overrides them.
const (
	// DefaultTTL is how long an entry stays valid after insertion.
	DefaultTTL = time.Hour

	// DefaultCapacity bounds the number of stored analyses.
	DefaultCapacity = 1000

	// DefaultSweepInterval is how often Run removes expired entries.
	DefaultSweepInterval = 5 * time.Minute
)

// Key derives the deterministic cache key for an input pair: the
// lowercase hex SHA-256 digest of the original text, the generated
// text, and the sensitivity level joined by '|'. Byte-identical
// sanitized inputs always hash identically. Equality is judged on the
// digest alone; a collision would surface another request's analysis,
// an accepted risk at SHA-256 collision odds.
func Key(original, generated, sensitivity string) string {
	sum := sha256.Sum256([]byte(original + "|" + generated + "|" + sensitivity))
	return hex.EncodeToString(sum[:])
}

// entry is a stored analysis with its lifecycle timestamps.
type entry struct {
	value     *model.DiffResponse
	createdAt time.Time
	expiresAt time.Time
}

// keyStamp records one insertion for eviction ordering. A re-inserted
// key leaves its old stamp behind; the stale stamp is recognized by
// its createdAt no longer matching the live entry and skipped.
type keyStamp struct {
	key       string
	createdAt time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	TTL       time.Duration
}

// HitRate returns hits / (hits + misses), or zero before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is an in-memory TTL cache for analysis responses, safe for
// concurrent use. Capacity is bounded: when full, expired entries are
// dropped first, then the oldest insertions are evicted until there is
// room. All operations are O(1) amortized (a map plus an
// insertion-order list).
//
// Values are shared, not copied. Callers must treat a returned
// response as read-only.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []keyStamp

	ttl      time.Duration
	capacity int
	now      func() time.Time
	logger   *slog.Logger

	hits      uint64
	misses    uint64
	evictions uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the entry lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCapacity sets the maximum entry count. Non-positive values are
// ignored.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithLogger sets the logger used for hit and eviction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source. Tests use this to control
// expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Cache with the default TTL and capacity unless
// overridden by options.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[string]*entry),
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached response for key. Expired entries are removed
// and reported as misses.
func (c *Cache) Get(key string) (*model.DiffResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	c.logger.Debug("cache hit", "key", shortKey(key))
	return e.value, true
}

// Put stores value under key with the configured TTL. Re-inserting an
// existing key replaces its value and counts as a fresh insertion for
// eviction ordering.
func (c *Cache) Put(key string, value *model.DiffResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.makeRoom(now)
	}

	c.entries[key] = &entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}
	c.order = append(c.order, keyStamp{key: key, createdAt: now})
}

// makeRoom frees at least one slot: expired entries go first, then the
// oldest insertions. Caller holds c.mu.
func (c *Cache) makeRoom(now time.Time) {
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}

	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		stamp := c.order[0]
		c.order = c.order[1:]

		e, ok := c.entries[stamp.key]
		if !ok || !e.createdAt.Equal(stamp.createdAt) {
			// Stale stamp: the entry was removed or re-inserted since.
			continue
		}

		delete(c.entries, stamp.key)
		c.evictions++
		c.logger.Debug("cache eviction", "key", shortKey(stamp.key))
	}
}

// Sweep removes all expired entries and compacts the insertion-order
// list. It returns the number of entries removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}

	kept := c.order[:0]
	for _, stamp := range c.order {
		if e, ok := c.entries[stamp.key]; ok && e.createdAt.Equal(stamp.createdAt) {
			kept = append(kept, stamp)
		}
	}
	c.order = kept

	return removed
}

// Run sweeps expired entries every interval until ctx is cancelled.
// A non-positive interval uses DefaultSweepInterval.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
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
			if removed := c.Sweep(); removed > 0 {
				c.logger.Debug("cache sweep", "removed", removed)
			}
		}
	}
}

// Len returns the current number of entries, including any that
// expired but have not been swept or touched yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.order = nil
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:      len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		TTL:       c.ttl,
	}
}

// shortKey truncates a digest for logging.
func shortKey(key string) string {
	if len(key) > 16 {
		return key[:16]
	}
	return key
}
