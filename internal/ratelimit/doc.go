// Package ratelimit provides per-caller admission control for the
// HTTP API using continuously refilling token buckets.
//
// Every caller gets an independent bucket sized to the sustained quota
// plus a burst allowance. Admission is a synchronous yes/no — the
// limiter never queues or blocks — and each Decision carries the
// numbers the HTTP layer needs for the standard X-RateLimit response
// headers. Idle buckets are reclaimed by periodic sweeps so the
// caller map cannot grow without bound.
package ratelimit
