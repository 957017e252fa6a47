package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"courtwatch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [player-slug]",
	Short: "Write a starter configuration file",
	Long: `Write a starter courtwatch.yaml for the given player slug. The
GroupMe bot id is referenced as ${GROUPME_BOT_ID} so the secret stays in
the environment (or a .env file next to the binary).

Example:
  courtwatch init adam-harvey --config ./courtwatch.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("config", "c", "courtwatch.yaml", "Path to write the configuration file")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
	}

	cfg := &config.Config{}
	cfg.Player.Slug = args[0]
	cfg.GroupMe.BotID = "${GROUPME_BOT_ID}"
	applyStarterDefaults(cfg)

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logger.Info("configuration written", "path", configPath, "player", args[0])
	return nil
}

// applyStarterDefaults fills the fields worth showing in a fresh config
// file, so the generated YAML documents the tunables.
func applyStarterDefaults(cfg *config.Config) {
	cfg.Scraper.BaseURL = "https://pickleball.com"
	cfg.Store.Driver = "json"
	cfg.Store.Path = "./courtwatch.json"
	cfg.Store.HistoryCap = 100
	cfg.Store.GraceSec = 120
	cfg.Watch.Schedule = "every 1m"
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "info"
}
