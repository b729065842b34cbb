// Package cli wires configuration, dataset loading, the acquisition
// engine, and the report renderer into the flightwx command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// rootFlags are the persistent flags shared by all subcommands.
type rootFlags struct {
	ConfigPath string
	Debug      bool
}

// NewRootCmd creates the root flightwx command.
func NewRootCmd(ver string) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "flightwx",
		Short:         "Per-airport weather reports for flight datasets",
		Long:          "flightwx resolves every airport in a flight dataset to current weather conditions,\nusing a two-tier cache and a bounded number of concurrent provider calls.",
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  # Generate a weather report from a flight dataset
  flightwx report flights.csv

  # Persist the cache between runs and raise concurrency
  flightwx report flights.csv --cache-path ~/.flightwx/weather.db --concurrency 20

  # Machine-readable output
  flightwx report flights.csv --output json

  # Drop all cached weather
  flightwx cache clear --cache-path ~/.flightwx/weather.db`,
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newReportCmd(&flags), newCacheCmd(&flags))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(ver string) int {
	cmd := NewRootCmd(ver)
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return 1
	}
	return 0
}
