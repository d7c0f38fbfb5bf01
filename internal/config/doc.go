// Package config provides configuration structures and utilities for semdiff.
// It defines the runtime options for the analysis engine, the model backend,
// the HTTP API, and the protection layers (cache, rate limiting), along with
// YAML file loading and XDG-aware discovery.
package config
