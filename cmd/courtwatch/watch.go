package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"courtwatch/internal/config"
	"courtwatch/internal/scheduler"
	"courtwatch/internal/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the watcher on a schedule",
	Long: `Run reconciliation repeatedly on the configured schedule (default
"every 1m") until interrupted by SIGINT or SIGTERM.

The scheduler serializes runs: a tick that fires while the previous run
is still in flight is skipped.

Example:
  courtwatch watch --config ./courtwatch.yaml`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("config", "c", "courtwatch.yaml", "Path to configuration file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyLoggingConfig(cfg); err != nil {
		return err
	}

	logger.Info("starting courtwatch in watch mode",
		"player", cfg.Player.Slug,
		"schedule", cfg.Watch.Schedule,
		"store_driver", cfg.Store.Driver)

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

	sched := scheduler.New(ctx, logger)
	if err := sched.Schedule(cfg.Watch.Schedule, runner.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule run: %w", err)
	}
	sched.Start()

	<-ctx.Done()
	sched.Stop()

	logger.Info("courtwatch stopped")
	return nil
}
