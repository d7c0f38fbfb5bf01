package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/semdiff/semdiff/internal/config"
	"github.com/semdiff/semdiff/internal/engine"
	"github.com/semdiff/semdiff/internal/llm"
	"github.com/semdiff/semdiff/internal/model"
	"github.com/semdiff/semdiff/internal/report"
)

// Report format names accepted by --format.
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// errUnsafeComparison signals the unsafe verdict through RunE so
// Execute can map it to exit code 1. The report has already been
// written when this error surfaces.
var errUnsafeComparison = errors.New("comparison found unsafe semantic changes")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <original-file> <generated-file>",
		Short: "Compare two text files for semantic drift",
		Long: `Compare reads the original text and its machine-generated rewrite from
files, sends them to the analysis model, and reports every verified
semantic change.

Every change the model reports is checked against the actual texts;
changes whose quoted spans cannot be located are dropped from the
report. The exit status is 0 when the rewrite is safe and 1 when unsafe,
so the command can gate automated publishing pipelines.

The model API key is read from the environment variable named by
api_key_env in the config file (default: SEMDIFF_API_KEY).

Examples:
  # Compare two files with the default sensitivity
  semdiff compare original.txt generated.txt

  # Flag even small drift, write a Markdown report
  semdiff compare -s high -f markdown -o report.md original.txt generated.txt

  # JSON output for scripting
  semdiff compare -f json original.txt generated.txt

  # Use the premium model for a subtler analysis
  semdiff compare -p original.txt generated.txt`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	// Analysis flags
	cmd.Flags().StringP("sensitivity", "s", string(model.DefaultSensitivity),
		"Analysis sensitivity: low, medium, or high")
	cmd.Flags().BoolP("premium", "p", false,
		"Use the premium model for the analysis")

	// Report flags
	cmd.Flags().StringP("format", "f", formatText,
		"Report format: text, json, or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (creates directories if needed)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: semdiff.yaml in current dir, XDG config dir, or ~/.semdiff.yaml)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCompareConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	sensitivityFlag, err := cmd.Flags().GetString("sensitivity")
	if err != nil {
		return err
	}
	sensitivity, err := model.ParseSensitivity(sensitivityFlag)
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != formatText && format != formatJSON && format != formatMarkdown {
		return fmt.Errorf("invalid format %q: must be text, json, or markdown", format)
	}

	premium, err := cmd.Flags().GetBool("premium")
	if err != nil {
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	original, err := os.ReadFile(args[0]) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return fmt.Errorf("failed to read original text: %w", err)
	}
	generated, err := os.ReadFile(args[1]) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return fmt.Errorf("failed to read generated text: %w", err)
	}

	// The same limits the server enforces apply here: they bound what
	// one model prompt can carry.
	req := model.CompareRequest{
		OriginalText:  string(original),
		GeneratedText: string(generated),
		Sensitivity:   sensitivity,
		PremiumMode:   premium,
	}
	maxTotal := cfg.MaxTotalChars
	if premium {
		maxTotal = 0
	}
	if err := req.Validate(cfg.MaxTextChars, maxTotal); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCompare(ctx, cfg, logger, req, format, outputPath)
}

// buildCompareConfig loads the configuration for a one-shot comparison.
func buildCompareConfig(cmd *cobra.Command) (*config.Config, error) {
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

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runCompare performs the analysis and writes the report.
func runCompare(ctx context.Context, cfg *config.Config, logger *slog.Logger, req model.CompareRequest, format, outputPath string) error {
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

	// A one-shot process gains nothing from a response cache, and the
	// rate limiter guards the server's callers, not the local user.
	eng, err := engine.New(client,
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

	modelName := cfg.Model
	if req.PremiumMode {
		modelName = cfg.PremiumModel
	}

	start := time.Now()
	result, err := eng.Analyze(ctx, engine.Request{
		Original:    req.OriginalText,
		Generated:   req.GeneratedText,
		Sensitivity: req.Sensitivity,
		Premium:     req.PremiumMode,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	rep := &report.Report{
		Response:       result.Response,
		Sensitivity:    req.Sensitivity,
		Model:          modelName,
		OriginalChars:  len([]rune(req.OriginalText)),
		GeneratedChars: len([]rune(req.GeneratedText)),
		ShortCircuited: result.ShortCircuited,
		Chunked:        result.Chunked,
		ModelCalls:     result.ModelCalls,
		DroppedChanges: result.DroppedChanges,
		Elapsed:        time.Since(start),
		GeneratedAt:    time.Now(),
	}

	if err := writeReport(rep, format, outputPath); err != nil {
		return err
	}

	if !result.Response.Summary.IsSafe {
		return errUnsafeComparison
	}
	return nil
}

// writeReport writes the report in the requested format to the output
// path, or stdout when no path is given.
func writeReport(rep *report.Report, format, outputPath string) error {
	var output *os.File
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Compared documents may be confidential, so reports are
		// readable by the owner only.
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch format {
	case formatJSON:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case formatMarkdown:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(true))
	}

	if _, err := writer.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
