package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"courtwatch/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate courtwatch configuration file",
	Long: `Validate the syntax and semantics of a courtwatch configuration file
without performing a run. It checks for:
  - Valid YAML syntax
  - Required fields (player slug)
  - Valid store driver configuration
  - Valid watch schedule expression

Example:
  courtwatch validate --config ./courtwatch.yaml`,
	RunE: validateConfig,
}

func init() {
	validateCmd.Flags().StringP("config", "c", "courtwatch.yaml", "Path to configuration file")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	logger.Info("validating configuration", "path", configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	logger.Info("configuration is valid",
		"path", configPath,
		"player", cfg.Player.Slug,
		"store_driver", cfg.Store.Driver,
		"schedule", cfg.Watch.Schedule,
		"history_cap", cfg.Store.HistoryCap)
	return nil
}
