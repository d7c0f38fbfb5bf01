// Package text provides the plain-text primitives that semantic
// analysis is built on: input sanitization, a similarity ratio, and
// paragraph-aware chunking with exact byte offsets.
//
// Everything here operates on byte offsets into sanitized text. The
// sanitizer (Normalize) runs before any offset is computed, so offsets
// remain stable across the model round-trip, the cache, and the
// response returned to clients.
package text
