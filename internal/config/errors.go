package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoListenAddr is returned when the HTTP listen address is empty.
	ErrNoListenAddr = errors.New("no listen address: set listen_addr or --listen")

	// ErrNoModel is returned when either model name is empty. Both the
	// standard and premium names must be set because requests choose
	// between them at runtime.
	ErrNoModel = errors.New("no model configured: both model and premium_model must be set")

	// ErrNoBaseURL is returned when the model API base URL is empty.
	ErrNoBaseURL = errors.New("no base URL: set base_url to an OpenAI-compatible endpoint")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	// A timeout of zero or negative would cause immediate failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the retry attempt count is not
	// positive. The first call counts as an attempt, so at least one is
	// required.
	ErrInvalidRetries = errors.New("invalid retry count: must be at least 1")

	// ErrInvalidBackoff is returned when the backoff bounds are not
	// positive or the cap is below the base delay.
	ErrInvalidBackoff = errors.New("invalid backoff: base must be positive and max must not be below base")

	// ErrInvalidCache is returned when the cache TTL or capacity is not
	// positive. Disabling the cache is not supported; set a tiny TTL
	// instead.
	ErrInvalidCache = errors.New("invalid cache settings: ttl and capacity must be positive")

	// ErrInvalidRateLimit is returned when the per-minute quota is not
	// positive or the burst is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: per-minute quota must be positive and burst non-negative")

	// ErrInvalidChunking is returned when the chunk target is not positive
	// or the chunking threshold is below the target chunk size.
	ErrInvalidChunking = errors.New("invalid chunking: target must be positive and threshold must not be below target")

	// ErrInvalidSimilarity is returned when the short-circuit similarity
	// threshold is outside (0, 1].
	ErrInvalidSimilarity = errors.New("invalid similarity threshold: must be in (0, 1]")

	// ErrInvalidSafetyThreshold is returned when the safety risk threshold
	// is outside [0, 100].
	ErrInvalidSafetyThreshold = errors.New("invalid safety threshold: must be in [0, 100]")

	// ErrInvalidInputLimits is returned when a text size limit is not
	// positive.
	ErrInvalidInputLimits = errors.New("invalid input limits: per-text and combined limits must be positive")

	// ErrInvalidParallelism is returned when the in-flight chunk bound is
	// not positive. Zero would deadlock every chunked request.
	ErrInvalidParallelism = errors.New("invalid parallelism: max in-flight chunk analyses must be positive")
)
