package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for a typical OpenAI-compatible backend and the
// cost profile of per-request model calls; most can be overridden via the
// config file or CLI flags.
const (
	// DefaultListenAddr is the address the HTTP API binds to.
	// Binding all interfaces on an unprivileged port keeps the default
	// usable both locally and inside containers.
	DefaultListenAddr = ":8080"

	// DefaultBaseURL is the OpenAI API endpoint. Any server speaking the
	// chat-completions protocol works here, which is how local gateways
	// and proxy deployments are supported.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel balances speed and quality for routine comparisons.
	DefaultModel = "gpt-4o-mini"

	// DefaultPremiumModel is used when a request sets premium_mode.
	// Slower and more expensive, but catches subtler drift.
	DefaultPremiumModel = "gpt-4o"

	// DefaultAPIKeyEnv names the environment variable holding the model
	// API key. The key itself never appears in the config file so that
	// config files can be committed and shared safely.
	DefaultAPIKeyEnv = "SEMDIFF_API_KEY"

	// DefaultTemperature is zero for deterministic output. Analysis is a
	// classification task; sampling variety only hurts reproducibility
	// and cache effectiveness.
	DefaultTemperature = 0.0

	// DefaultMaxOutputTokens caps the model response. 1500 tokens fits
	// the JSON change list for texts under the input limits while
	// preventing runaway generation costs.
	DefaultMaxOutputTokens = 1500

	// DefaultModelTimeout bounds a single model call. 25 seconds is
	// generous for chat-completions latency yet keeps a stuck upstream
	// from pinning a request slot for long.
	DefaultModelTimeout = 25 * time.Second

	// DefaultMaxRetries is the number of attempts for transient model
	// failures. Three attempts rides out brief rate-limit windows
	// without multiplying cost on persistent outages.
	DefaultMaxRetries = 3

	// DefaultRetryBaseBackoff is the first retry delay. Doubled on each
	// subsequent attempt.
	DefaultRetryBaseBackoff = 500 * time.Millisecond

	// DefaultRetryMaxBackoff caps the backoff growth so late attempts
	// still happen within the request timeout.
	DefaultRetryMaxBackoff = 10 * time.Second

	// DefaultCacheTTL is how long a cached analysis stays valid. Model
	// output for identical inputs is stable over an hour; longer TTLs
	// mostly serve stale prompt revisions.
	DefaultCacheTTL = time.Hour

	// DefaultCacheCapacity bounds the response cache. At roughly 30KB per
	// worst-case entry this keeps the cache under a few tens of MB.
	DefaultCacheCapacity = 1000

	// DefaultRatePerMinute is the sustained per-caller request quota.
	DefaultRatePerMinute = 60

	// DefaultRateBurst is the extra burst headroom above the sustained
	// quota. A caller can spend quota+burst tokens instantly, then is
	// throttled to the refill rate.
	DefaultRateBurst = 10

	// DefaultRateIdleAfter is how long an untouched rate bucket survives
	// before the sweeper reclaims it. Ten minutes keeps buckets alive
	// across normal client pauses without letting the map grow unbounded
	// under churning caller identities.
	DefaultRateIdleAfter = 10 * time.Minute

	// DefaultChunkThreshold is the combined text size (in characters)
	// above which the pair is split into chunks. Below this, a single
	// model call is both cheaper and more accurate than stitched chunks.
	DefaultChunkThreshold = 4000

	// DefaultChunkTarget is the per-chunk size the splitter packs toward.
	// Small enough to leave prompt headroom, large enough that paragraph
	// context survives.
	DefaultChunkTarget = 3000

	// DefaultSimilarityThreshold is the ratio above which two texts are
	// declared equivalent without a model call. Deliberately conservative:
	// a false short-circuit suppresses a real change, a missed one only
	// costs a model call.
	DefaultSimilarityThreshold = 0.99

	// DefaultSafetyRiskThreshold is the risk score at or above which a
	// comparison is marked unsafe even without a critical change.
	DefaultSafetyRiskThreshold = 50

	// DefaultMaxTextChars is the per-text input limit.
	DefaultMaxTextChars = 20000

	// DefaultMaxTotalChars is the combined input limit. Tighter than two
	// full-size texts: the model analyzes both texts in one prompt, so
	// cost scales with the sum.
	DefaultMaxTotalChars = 15000

	// DefaultRequestTimeout bounds a whole analysis including chunking,
	// retries, and merging. Requests exceeding it fail with a timeout
	// rather than holding the client open.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultMaxParallelChunks bounds concurrent model calls for one
	// request. Ten in-flight calls saturate typical provider concurrency
	// limits without tripping them.
	DefaultMaxParallelChunks = 10

	// AppName is the application name used for XDG directory paths.
	AppName = "semdiff"
)

// Config holds all configuration options for semdiff.
// This struct is designed to be populated from defaults, then a YAML config
// file, then CLI flags, and passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ModelConfig, CacheConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// ListenAddr is the "host:port" the HTTP API binds to.
	ListenAddr string

	// CORSOrigins lists the origins allowed by the CORS middleware.
	// ["*"] allows any origin.
	CORSOrigins []string

	// Model is the model name used for standard comparisons.
	Model string

	// PremiumModel is the model name used when a request sets premium_mode.
	PremiumModel string

	// BaseURL is the root of the OpenAI-compatible API, without the
	// /chat/completions suffix.
	BaseURL string

	// APIKeyEnv names the environment variable that holds the API key.
	// The key is read at startup and never written to disk or logs.
	APIKeyEnv string

	// Temperature is the sampling temperature for model calls.
	Temperature float64

	// MaxOutputTokens caps the model's response length.
	MaxOutputTokens int

	// ModelTimeout bounds each individual model call. Retries each get
	// a fresh timeout.
	ModelTimeout time.Duration

	// MaxRetries is the number of attempts for transient model failures.
	// The first call counts as attempt one.
	MaxRetries int

	// RetryBaseBackoff is the delay before the first retry.
	RetryBaseBackoff time.Duration

	// RetryMaxBackoff caps the exponential backoff growth.
	RetryMaxBackoff time.Duration

	// RetryJitter randomizes each backoff delay between zero and the
	// computed bound, preventing synchronized retry storms.
	RetryJitter bool

	// SOCKSProxyAddress routes model traffic through a SOCKS5 proxy in
	// "host:port" format when set. Empty means direct connection.
	SOCKSProxyAddress string

	// CacheTTL is how long cached analyses stay valid.
	CacheTTL time.Duration

	// CacheCapacity is the maximum number of cached analyses. When full,
	// the oldest entry is evicted first.
	CacheCapacity int

	// RatePerMinute is the sustained per-caller request quota.
	RatePerMinute int

	// RateBurst is the burst headroom above the sustained quota.
	RateBurst int

	// RateIdleAfter is how long an idle caller's bucket survives before
	// being reclaimed.
	RateIdleAfter time.Duration

	// ChunkThreshold is the combined text size above which the input
	// pair is split into chunks for parallel analysis.
	ChunkThreshold int

	// ChunkTarget is the per-chunk size the splitter packs toward.
	ChunkTarget int

	// SimilarityThreshold short-circuits analysis when the texts'
	// similarity ratio exceeds it. Must stay in (0, 1].
	SimilarityThreshold float64

	// SafetyRiskThreshold marks a comparison unsafe when the aggregated
	// risk score reaches it, even without a critical change.
	SafetyRiskThreshold int

	// MaxTextChars is the per-text input limit in characters.
	MaxTextChars int

	// MaxTotalChars is the combined input limit in characters.
	MaxTotalChars int

	// RequestTimeout bounds a whole analysis end to end.
	RequestTimeout time.Duration

	// MaxParallelChunks bounds concurrent model calls for one request.
	MaxParallelChunks int

	// LogLevel is the minimum log level: debug, info, warn, or error.
	LogLevel string

	// LogFormat selects the log encoding: text or json.
	LogFormat string

	// Verbose forces LogLevel to debug. Kept as a separate flag so
	// --verbose composes with a config file that sets its own level.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the standard locations (see FindConfigFile).
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, quotas).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ListenAddr:          DefaultListenAddr,
		CORSOrigins:         []string{"*"},
		Model:               DefaultModel,
		PremiumModel:        DefaultPremiumModel,
		BaseURL:             DefaultBaseURL,
		APIKeyEnv:           DefaultAPIKeyEnv,
		Temperature:         DefaultTemperature,
		MaxOutputTokens:     DefaultMaxOutputTokens,
		ModelTimeout:        DefaultModelTimeout,
		MaxRetries:          DefaultMaxRetries,
		RetryBaseBackoff:    DefaultRetryBaseBackoff,
		RetryMaxBackoff:     DefaultRetryMaxBackoff,
		RetryJitter:         true,
		CacheTTL:            DefaultCacheTTL,
		CacheCapacity:       DefaultCacheCapacity,
		RatePerMinute:       DefaultRatePerMinute,
		RateBurst:           DefaultRateBurst,
		RateIdleAfter:       DefaultRateIdleAfter,
		ChunkThreshold:      DefaultChunkThreshold,
		ChunkTarget:         DefaultChunkTarget,
		SimilarityThreshold: DefaultSimilarityThreshold,
		SafetyRiskThreshold: DefaultSafetyRiskThreshold,
		MaxTextChars:        DefaultMaxTextChars,
		MaxTotalChars:       DefaultMaxTotalChars,
		RequestTimeout:      DefaultRequestTimeout,
		MaxParallelChunks:   DefaultMaxParallelChunks,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// APIKey reads the model API key from the environment variable named by
// APIKeyEnv. It returns the empty string when unset; callers decide
// whether that is fatal (the server) or ignorable (offline subcommands).
func (c *Config) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// XDGConfigDir returns the XDG config directory for semdiff.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/semdiff
// On macOS: ~/Library/Application Support/semdiff
// On Windows: %APPDATA%\semdiff
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for semdiff.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/semdiff
// On macOS: ~/Library/Caches/semdiff
// On Windows: %LOCALAPPDATA%\semdiff\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before serving any requests.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return ErrNoListenAddr
	}

	if c.Model == "" || c.PremiumModel == "" {
		return ErrNoModel
	}

	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	// Zero or negative timeouts would fail every call immediately.
	if c.ModelTimeout <= 0 || c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxRetries <= 0 {
		return ErrInvalidRetries
	}

	if c.RetryBaseBackoff <= 0 || c.RetryMaxBackoff < c.RetryBaseBackoff {
		return ErrInvalidBackoff
	}

	if c.CacheTTL <= 0 || c.CacheCapacity <= 0 {
		return ErrInvalidCache
	}

	if c.RatePerMinute <= 0 || c.RateBurst < 0 {
		return ErrInvalidRateLimit
	}

	// The chunker needs room to pack at least one paragraph per chunk,
	// and the threshold must not force chunks larger than the target.
	if c.ChunkTarget <= 0 || c.ChunkThreshold < c.ChunkTarget {
		return ErrInvalidChunking
	}

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return ErrInvalidSimilarity
	}

	if c.SafetyRiskThreshold < 0 || c.SafetyRiskThreshold > 100 {
		return ErrInvalidSafetyThreshold
	}

	if c.MaxTextChars <= 0 || c.MaxTotalChars <= 0 {
		return ErrInvalidInputLimits
	}

	if c.MaxParallelChunks <= 0 {
		return ErrInvalidParallelism
	}

	return nil
}
