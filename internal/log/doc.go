// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (API keys, tokens, secrets)
//   - Configurable log levels and output formats (text, JSON)
//   - Consistent log formatting across the application
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, X-Api-Key)
//   - Provider API keys detected by pattern matching (sk-..., JWT, Basic auth)
//   - Anything under a key containing "password", "token", "secret", or "auth"
//
// The analysis service holds a model provider API key for its entire lifetime
// and forwards request headers into structured logs, so masking happens in the
// handler rather than at call sites. Even at debug level, sensitive values are
// masked to prevent accidental exposure of secrets in logs that may be shared
// or stored.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewLogger(os.Stderr, slog.LevelDebug, log.FormatText)
//
//	// Use as a standard slog.Logger
//	logger.Info("model request sent",
//	    "authorization", "Bearer sk-abc123",  // Will be sanitized
//	    "model", "gpt-4o-mini",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
