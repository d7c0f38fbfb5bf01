package config

import (
	"fmt"
	"time"
)

// File represents the structure of the semdiff.yaml configuration file.
// All fields are optional; absent fields leave the corresponding Config
// value untouched. Pointer types distinguish "not set" from a deliberate
// zero (e.g. temperature: 0).
//
// Durations are YAML strings in Go syntax ("500ms", "1h") parsed by
// ApplyTo, since yaml.v3 has no native duration support.
type File struct {
	// ListenAddr is the "host:port" the HTTP API binds to.
	ListenAddr *string `yaml:"listen_addr,omitempty"`

	// CORSOrigins lists allowed origins for the CORS middleware.
	CORSOrigins []string `yaml:"cors_origins,omitempty"`

	// Model configures the model backend.
	Model ModelFile `yaml:"model,omitempty"`

	// Retry configures the transient-failure retry policy.
	Retry RetryFile `yaml:"retry,omitempty"`

	// Cache configures the response cache.
	Cache CacheFile `yaml:"cache,omitempty"`

	// RateLimit configures the per-caller rate limiter.
	RateLimit RateLimitFile `yaml:"rate_limit,omitempty"`

	// Analysis configures chunking, thresholds, and input limits.
	Analysis AnalysisFile `yaml:"analysis,omitempty"`

	// Log configures log output.
	Log LogFile `yaml:"log,omitempty"`
}

// ModelFile holds the model backend section of the config file.
type ModelFile struct {
	Name            *string  `yaml:"name,omitempty"`
	PremiumName     *string  `yaml:"premium_name,omitempty"`
	BaseURL         *string  `yaml:"base_url,omitempty"`
	APIKeyEnv       *string  `yaml:"api_key_env,omitempty"`
	Temperature     *float64 `yaml:"temperature,omitempty"`
	MaxOutputTokens *int     `yaml:"max_output_tokens,omitempty"`
	Timeout         *string  `yaml:"timeout,omitempty"`
	SOCKSProxy      *string  `yaml:"socks_proxy,omitempty"`
}

// RetryFile holds the retry section of the config file.
type RetryFile struct {
	MaxAttempts *int    `yaml:"max_attempts,omitempty"`
	BaseBackoff *string `yaml:"base_backoff,omitempty"`
	MaxBackoff  *string `yaml:"max_backoff,omitempty"`
	Jitter      *bool   `yaml:"jitter,omitempty"`
}

// CacheFile holds the cache section of the config file.
type CacheFile struct {
	TTL      *string `yaml:"ttl,omitempty"`
	Capacity *int    `yaml:"capacity,omitempty"`
}

// RateLimitFile holds the rate limit section of the config file.
type RateLimitFile struct {
	PerMinute *int    `yaml:"per_minute,omitempty"`
	Burst     *int    `yaml:"burst,omitempty"`
	IdleAfter *string `yaml:"idle_after,omitempty"`
}

// AnalysisFile holds the analysis section of the config file.
type AnalysisFile struct {
	ChunkThreshold      *int     `yaml:"chunk_threshold,omitempty"`
	ChunkTarget         *int     `yaml:"chunk_target,omitempty"`
	SimilarityThreshold *float64 `yaml:"similarity_threshold,omitempty"`
	SafetyRiskThreshold *int     `yaml:"safety_risk_threshold,omitempty"`
	MaxTextChars        *int     `yaml:"max_text_chars,omitempty"`
	MaxTotalChars       *int     `yaml:"max_total_chars,omitempty"`
	RequestTimeout      *string  `yaml:"request_timeout,omitempty"`
	MaxParallelChunks   *int     `yaml:"max_parallel_chunks,omitempty"`
}

// LogFile holds the log section of the config file.
type LogFile struct {
	Level  *string `yaml:"level,omitempty"`
	Format *string `yaml:"format,omitempty"`
}

// ApplyTo overlays every set field of the file onto c. It is called after
// NewConfig() and before flag binding, which gives the documented
// precedence: flags > config file > defaults.
func (f *File) ApplyTo(c *Config) error {
	if f.ListenAddr != nil {
		c.ListenAddr = *f.ListenAddr
	}
	if f.CORSOrigins != nil {
		c.CORSOrigins = f.CORSOrigins
	}

	if f.Model.Name != nil {
		c.Model = *f.Model.Name
	}
	if f.Model.PremiumName != nil {
		c.PremiumModel = *f.Model.PremiumName
	}
	if f.Model.BaseURL != nil {
		c.BaseURL = *f.Model.BaseURL
	}
	if f.Model.APIKeyEnv != nil {
		c.APIKeyEnv = *f.Model.APIKeyEnv
	}
	if f.Model.Temperature != nil {
		c.Temperature = *f.Model.Temperature
	}
	if f.Model.MaxOutputTokens != nil {
		c.MaxOutputTokens = *f.Model.MaxOutputTokens
	}
	if f.Model.SOCKSProxy != nil {
		c.SOCKSProxyAddress = *f.Model.SOCKSProxy
	}
	if err := applyDuration(f.Model.Timeout, "model.timeout", &c.ModelTimeout); err != nil {
		return err
	}

	if f.Retry.MaxAttempts != nil {
		c.MaxRetries = *f.Retry.MaxAttempts
	}
	if f.Retry.Jitter != nil {
		c.RetryJitter = *f.Retry.Jitter
	}
	if err := applyDuration(f.Retry.BaseBackoff, "retry.base_backoff", &c.RetryBaseBackoff); err != nil {
		return err
	}
	if err := applyDuration(f.Retry.MaxBackoff, "retry.max_backoff", &c.RetryMaxBackoff); err != nil {
		return err
	}

	if f.Cache.Capacity != nil {
		c.CacheCapacity = *f.Cache.Capacity
	}
	if err := applyDuration(f.Cache.TTL, "cache.ttl", &c.CacheTTL); err != nil {
		return err
	}

	if f.RateLimit.PerMinute != nil {
		c.RatePerMinute = *f.RateLimit.PerMinute
	}
	if f.RateLimit.Burst != nil {
		c.RateBurst = *f.RateLimit.Burst
	}
	if err := applyDuration(f.RateLimit.IdleAfter, "rate_limit.idle_after", &c.RateIdleAfter); err != nil {
		return err
	}

	if f.Analysis.ChunkThreshold != nil {
		c.ChunkThreshold = *f.Analysis.ChunkThreshold
	}
	if f.Analysis.ChunkTarget != nil {
		c.ChunkTarget = *f.Analysis.ChunkTarget
	}
	if f.Analysis.SimilarityThreshold != nil {
		c.SimilarityThreshold = *f.Analysis.SimilarityThreshold
	}
	if f.Analysis.SafetyRiskThreshold != nil {
		c.SafetyRiskThreshold = *f.Analysis.SafetyRiskThreshold
	}
	if f.Analysis.MaxTextChars != nil {
		c.MaxTextChars = *f.Analysis.MaxTextChars
	}
	if f.Analysis.MaxTotalChars != nil {
		c.MaxTotalChars = *f.Analysis.MaxTotalChars
	}
	if f.Analysis.MaxParallelChunks != nil {
		c.MaxParallelChunks = *f.Analysis.MaxParallelChunks
	}
	if err := applyDuration(f.Analysis.RequestTimeout, "analysis.request_timeout", &c.RequestTimeout); err != nil {
		return err
	}

	if f.Log.Level != nil {
		c.LogLevel = *f.Log.Level
	}
	if f.Log.Format != nil {
		c.LogFormat = *f.Log.Format
	}

	return nil
}

// applyDuration parses an optional duration string into dst.
func applyDuration(src *string, field string, dst *time.Duration) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}
