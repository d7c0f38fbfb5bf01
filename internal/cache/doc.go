// Package cache provides the in-memory response cache that makes
// repeated comparisons free: identical sanitized inputs at the same
// sensitivity hash to the same key and return the stored analysis
// without a model call.
//
// Entries expire after a fixed TTL and the entry count is bounded;
// when full, expired entries are dropped before the oldest insertions
// are evicted. The cache is a single-process store — every instance
// warms independently.
package cache
