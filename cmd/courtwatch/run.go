package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"courtwatch/internal/config"
	"courtwatch/internal/logging"
	"courtwatch/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Perform a single reconciliation run",
	Long: `Perform one reconciliation run: scrape the player's results page,
check court assignments for pending matches, send notifications for new
assignments, prune matches that left the page, and persist state.

This is the mode to invoke from an external scheduler such as cron:

  * * * * * courtwatch run --config ./courtwatch.yaml

Runs must not overlap; the store has no concurrent-writer protection.`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().StringP("config", "c", "courtwatch.yaml", "Path to configuration file")
}

func runOnce(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyLoggingConfig(cfg); err != nil {
		return err
	}

	st, err := store.NewStore(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	runner := NewRunner(cfg, st, logger)

	ctx := setupSignalHandler()
	return runner.RunOnce(ctx)
}

// applyLoggingConfig swaps the global logger for one built from the
// config file's logging section.
func applyLoggingConfig(cfg *config.Config) error {
	runLogger, err := logging.NewFromConfig(cfg.Logging.Format, cfg.Logging.Level, cfg.Logging.Output)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = runLogger
	slog.SetDefault(runLogger)
	return nil
}
