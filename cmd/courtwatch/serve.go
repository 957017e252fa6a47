package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"courtwatch/internal/config"
	"courtwatch/internal/scheduler"
	"courtwatch/internal/server"
	"courtwatch/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the watcher with a status HTTP API",
	Long: `Run the scheduled watcher and expose a small read-only HTTP API over
the tracker state:

  GET /api/health   - liveness and uptime
  GET /api/status   - per-status match counts
  GET /api/matches  - all tracked matches
  GET /api/history  - recent run records

Example:
  courtwatch serve --config ./courtwatch.yaml --addr :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("config", "c", "courtwatch.yaml", "Path to configuration file")
	serveCmd.Flags().String("addr", "", "Listen address for the status API (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	addr, _ := cmd.Flags().GetString("addr")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr == "" {
		addr = cfg.Watch.Addr
	}

	if err := applyLoggingConfig(cfg); err != nil {
		return err
	}

	logger.Info("starting courtwatch in serve mode",
		"player", cfg.Player.Slug,
		"schedule", cfg.Watch.Schedule,
		"addr", addr)

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

	srv := server.New(addr, st, cfg.Player.Slug, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sched.Start()
		<-gCtx.Done()
		sched.Stop()
		return nil
	})

	g.Go(func() error {
		if err := srv.Start(gCtx); err != nil && err != context.Canceled {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("courtwatch stopped")
	return nil
}
