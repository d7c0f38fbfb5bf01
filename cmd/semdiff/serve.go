package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/semdiff/semdiff/internal/cache"
	"github.com/semdiff/semdiff/internal/config"
	"github.com/semdiff/semdiff/internal/engine"
	"github.com/semdiff/semdiff/internal/llm"
	"github.com/semdiff/semdiff/internal/log"
	"github.com/semdiff/semdiff/internal/ratelimit"
	"github.com/semdiff/semdiff/internal/server"
)

// sweepInterval is how often the serve command's background sweepers
// purge expired cache entries and idle rate limit buckets.
const sweepInterval = time.Minute

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the semantic diff HTTP API",
		Long: `Serve starts the HTTP API for semantic comparisons.

The API exposes:
  POST /v1/compare   run a comparison between two texts
  GET  /health       liveness and model backend reachability
  GET  /v1/stats     cache and rate limiter counters

Callers are rate limited per client IP, and identical comparisons are
served from an in-memory cache. The server shuts down gracefully on
SIGINT or SIGTERM, letting in-flight comparisons finish.

The model API key is read from the environment variable named by
api_key_env in the config file (default: SEMDIFF_API_KEY).

Examples:
  # Serve with defaults on :8080
  semdiff serve

  # Serve on a custom address with a specific model
  semdiff serve --listen 127.0.0.1:9000 --model gpt-4o

  # Use a custom configuration file
  semdiff serve -c myconfig.yaml`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	// Network flags
	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr,
		"Address the HTTP API binds to (host:port)")
	cmd.Flags().StringSlice("cors-origin", nil,
		"Allowed CORS origin (repeatable; default allows all origins)")

	// Model backend flags
	cmd.Flags().StringP("model", "m", config.DefaultModel,
		"Model used for standard comparisons")
	cmd.Flags().String("premium-model", config.DefaultPremiumModel,
		"Model used when a request sets premium_mode")
	cmd.Flags().StringP("base-url", "b", config.DefaultBaseURL,
		"Root of the OpenAI-compatible API")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: semdiff.yaml in current dir, XDG config dir, or ~/.semdiff.yaml)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	// Shut down gracefully on interrupt signals.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cfg, logger)
}

// buildServeConfig builds the server configuration with the documented
// precedence: flags > config file > defaults. Flag values are applied
// only when the user actually set them, so flag defaults never mask
// config file values.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, err
	}

	if err := applyStringFlag(cmd, "listen", &cfg.ListenAddr); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "model", &cfg.Model); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "premium-model", &cfg.PremiumModel); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "base-url", &cfg.BaseURL); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("cors-origin") {
		origins, err := cmd.Flags().GetStringSlice("cors-origin")
		if err != nil {
			return nil, err
		}
		cfg.CORSOrigins = origins
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// applyStringFlag copies a flag value into dst only when the user set
// the flag on the command line.
func applyStringFlag(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the structured logger described by the config.
// Every handler is wrapped in the secure handler, so API keys and other
// credentials never reach the log output.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := log.ParseLevel(cfg.LogLevel)
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return log.NewLogger(os.Stderr, level, cfg.LogFormat)
}

// runServe wires the components together and serves until the context
// is cancelled.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return fmt.Errorf("%w (set %s)", llm.ErrMissingAPIKey, cfg.APIKeyEnv)
	}

	client, err := llm.NewClient(cfg.BaseURL, apiKey,
		llm.WithModel(cfg.Model),
		llm.WithPremiumModel(cfg.PremiumModel),
		llm.WithTemperature(cfg.Temperature),
		llm.WithMaxOutputTokens(cfg.MaxOutputTokens),
		llm.WithCallTimeout(cfg.ModelTimeout),
		llm.WithMaxRetries(cfg.MaxRetries),
		llm.WithBackoff(llm.Backoff{
			Base:   cfg.RetryBaseBackoff,
			Max:    cfg.RetryMaxBackoff,
			Jitter: cfg.RetryJitter,
		}),
		llm.WithSOCKSProxy(cfg.SOCKSProxyAddress),
		llm.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	responseCache := cache.New(
		cache.WithTTL(cfg.CacheTTL),
		cache.WithCapacity(cfg.CacheCapacity),
		cache.WithLogger(logger),
	)
	limiter := ratelimit.New(
		ratelimit.WithRate(cfg.RatePerMinute),
		ratelimit.WithBurst(cfg.RateBurst),
		ratelimit.WithIdleAfter(cfg.RateIdleAfter),
		ratelimit.WithLogger(logger),
	)

	// Background sweepers stop with the serve context.
	go responseCache.Run(ctx, sweepInterval)
	go limiter.Run(ctx, sweepInterval)

	eng, err := engine.New(client,
		engine.WithCache(responseCache),
		engine.WithLimiter(limiter),
		engine.WithLogger(logger),
		engine.WithChunking(cfg.ChunkThreshold, cfg.ChunkTarget),
		engine.WithSimilarityThreshold(cfg.SimilarityThreshold),
		engine.WithSafetyThreshold(cfg.SafetyRiskThreshold),
		engine.WithRequestTimeout(cfg.RequestTimeout),
		engine.WithMaxParallel(cfg.MaxParallelChunks),
	)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	srv, err := server.New(eng,
		server.WithLogger(logger),
		server.WithVersion(getVersion()),
		server.WithPinger(client),
		server.WithCache(responseCache),
		server.WithLimiter(limiter),
		server.WithCORSOrigins(cfg.CORSOrigins),
		server.WithTextLimits(cfg.MaxTextChars, cfg.MaxTotalChars),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting semantic diff API",
		"listen", cfg.ListenAddr,
		"model", cfg.Model,
		"premium_model", cfg.PremiumModel,
		"cache_ttl", cfg.CacheTTL,
		"rate_per_minute", cfg.RatePerMinute,
	)

	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}
