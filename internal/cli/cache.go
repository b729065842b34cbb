package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/flightwx/flightwx/internal/config"
	"github.com/flightwx/flightwx/internal/engine/cache"
)

// ErrNoPersistentCache is returned when cache maintenance is requested
// without a configured cache file.
var ErrNoPersistentCache = errors.New(
	"no persistent cache configured: set --cache-path or WEATHER_CACHE_PATH")

// newCacheCmd creates the cache command group.
func newCacheCmd(root *rootFlags) *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Persistent cache maintenance",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase all cached weather entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.ConfigPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("cache-path") {
				cfg.CachePath = cachePath
			}
			if cfg.CachePath == "" {
				return ErrNoPersistentCache
			}
			if root.Debug {
				cfg.LogLevel = "debug"
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			store, err := cache.New(cache.Options{
				Capacity:    cfg.CacheCapacity,
				DurablePath: cfg.CachePath,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Clear(); err != nil {
				return err
			}

			cmd.Printf("Cleared weather cache at %s\n", cfg.CachePath)
			return nil
		},
	}
	clearCmd.Flags().StringVar(&cachePath, "cache-path", "", "persistent cache file to clear")

	cmd.AddCommand(clearCmd)
	return cmd
}
