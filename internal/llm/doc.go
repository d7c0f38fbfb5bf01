// Package llm talks to the analysis model: it owns the prompts that
// turn a text pair into an auditing task, the chat-completions client
// that executes it, and the error taxonomy the rest of the system
// branches on.
//
// The client never interprets the analysis itself — it returns the
// completion as validated raw JSON and leaves decoding to the engine.
// Retries, per-attempt timeouts, and optional SOCKS5 egress are all
// handled here so callers see a single Analyze call with classified
// errors.
package llm
