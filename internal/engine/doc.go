// Package engine orchestrates semantic comparisons end to end.
//
// A comparison runs as a fixed pipeline: admit the caller, consult the
// cache, short-circuit near-identical texts, segment oversized texts
// into chunks, dispatch every chunk to the model concurrently,
// reconcile the reported spans against the sanitized texts, merge the
// chunk verdicts into one response, and cache it. Small texts travel
// the same pipeline in a single full-width chunk.
//
// The engine never trusts the model's bookkeeping. Spans are verified
// byte-for-byte and repaired or dropped, the safety flag is derived
// from the changes that survive, and the risk score of a chunked
// comparison is the worst chunk's score, not an average.
package engine
