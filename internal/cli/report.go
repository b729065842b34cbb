package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flightwx/flightwx/internal/config"
	"github.com/flightwx/flightwx/internal/engine"
	"github.com/flightwx/flightwx/internal/engine/cache"
	"github.com/flightwx/flightwx/internal/ingest"
	"github.com/flightwx/flightwx/internal/report"
	"github.com/flightwx/flightwx/internal/weather"
)

// ErrMissingAPIKey is returned when no credential is configured for a
// report run.
var ErrMissingAPIKey = errors.New(
	"no API key configured: set OPENWEATHER_API_KEY or pass --api-key")

// reportFlags are the report subcommand flags. Flags override the
// config file and environment.
type reportFlags struct {
	APIKey        string
	Concurrency   int
	Timeout       int
	CachePath     string
	CacheCapacity int
	ClearCache    bool
	Output        string
	NoColor       bool
}

// newReportCmd creates the report subcommand.
func newReportCmd(root *rootFlags) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report <dataset.csv>",
		Short: "Generate a weather report for every airport in a flight dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, root, &flags)
			if err != nil {
				return err
			}
			return runReport(cmd, cfg, args[0], flags.Output, flags.NoColor)
		},
	}

	cmd.Flags().StringVar(&flags.APIKey, "api-key", "", "OpenWeatherMap API key")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 0,
		fmt.Sprintf("maximum concurrent provider calls (1-%d)", config.MaxConcurrency))
	cmd.Flags().IntVar(&flags.Timeout, "timeout", 0,
		fmt.Sprintf("per-request timeout in seconds (1-%d)", config.MaxTimeoutSeconds))
	cmd.Flags().StringVar(&flags.CachePath, "cache-path", "", "persistent cache file (created if absent)")
	cmd.Flags().IntVar(&flags.CacheCapacity, "cache-capacity", 0, "in-memory cache entry limit")
	cmd.Flags().BoolVar(&flags.ClearCache, "clear-cache", false, "empty the cache before looking anything up")
	cmd.Flags().StringVar(&flags.Output, "output", "table", "output format (table, json)")
	cmd.Flags().BoolVar(&flags.NoColor, "no-color", false, "disable colored output")

	return cmd
}

// resolveConfig loads configuration and applies explicit flag overrides,
// re-validating the result.
func resolveConfig(cmd *cobra.Command, root *rootFlags, flags *reportFlags) (config.Config, error) {
	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = flags.APIKey
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = flags.Concurrency
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSeconds = flags.Timeout
	}
	if cmd.Flags().Changed("cache-path") {
		cfg.CachePath = flags.CachePath
	}
	if cmd.Flags().Changed("cache-capacity") {
		cfg.CacheCapacity = flags.CacheCapacity
	}
	if flags.ClearCache {
		cfg.ClearCache = true
	}
	if root.Debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// runReport executes the full pipeline: load dataset, resolve weather,
// render. Per-airport failures are outcomes in the report, not errors;
// only configuration and dataset problems abort.
func runReport(cmd *cobra.Command, cfg config.Config, datasetPath, output string, noColor bool) error {
	if cfg.APIKey == "" {
		return ErrMissingAPIKey
	}
	if output != "table" && output != "json" {
		return fmt.Errorf("unknown output format %q (want table or json)", output)
	}

	logger := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	dataset, err := ingest.NewLoader(logger).LoadFile(datasetPath)
	if err != nil {
		return err
	}

	store, err := cache.New(cache.Options{
		Capacity:    cfg.CacheCapacity,
		DurablePath: cfg.CachePath,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if cfg.ClearCache {
		if clearErr := store.Clear(); clearErr != nil {
			logger.Warn().Err(clearErr).Msg("cache clear failed, continuing")
		}
	}

	client := weather.NewClient(weather.ClientConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.Timeout(),
		Logger:  logger,
	})

	svc, err := engine.NewService(client, store, engine.ServiceOptions{
		Concurrency:  cfg.Concurrency,
		FetchTimeout: cfg.Timeout(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	outcomes, stats, err := svc.ResolveAll(cmd.Context(), dataset.Airports)
	if err != nil {
		return err
	}

	color := false
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		color = isTerminal(f) && !noColor
	}

	renderer := report.NewRenderer(cmd.OutOrStdout(), color)
	if output == "json" {
		return renderer.RenderJSON(dataset.Airports, outcomes, stats)
	}
	return renderer.RenderTable(dataset.Airports, outcomes, stats)
}
