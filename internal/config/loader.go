package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// intervalPattern matches the "every <n> <unit>" schedule shorthand.
var intervalPattern = regexp.MustCompile(`(?i)^every\s+\d+\s*(s|sec|seconds?|m|min|minutes?|h|hours?)$`)

// LoadConfig loads and validates a courtwatch configuration from a YAML
// file. ${VAR} references are expanded from the environment before
// parsing, so secrets like the GroupMe bot id never need to live in the
// file itself.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Scraper.BaseURL == "" {
		cfg.Scraper.BaseURL = "https://pickleball.com"
	}
	if cfg.Scraper.TimeoutSec == 0 {
		cfg.Scraper.TimeoutSec = 10
	}

	if cfg.Courts.BaseURL == "" {
		cfg.Courts.BaseURL = cfg.Scraper.BaseURL
	}
	if cfg.Courts.TimeoutSec == 0 {
		cfg.Courts.TimeoutSec = 10
	}
	if cfg.Courts.DelayMS == 0 {
		cfg.Courts.DelayMS = 500
	}

	if cfg.GroupMe.APIURL == "" {
		cfg.GroupMe.APIURL = "https://api.groupme.com/v3/bots/post"
	}

	if cfg.Stream.SearchURL == "" {
		cfg.Stream.SearchURL = "https://www.youtube.com/@PPAStreamedCourts/search"
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "json"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./courtwatch.json"
	}
	if cfg.Store.HistoryCap == 0 {
		cfg.Store.HistoryCap = 100
	}
	if cfg.Store.GraceSec == 0 {
		cfg.Store.GraceSec = 120
	}

	if cfg.Watch.Schedule == "" {
		cfg.Watch.Schedule = "every 1m"
	}
	if cfg.Watch.Addr == "" {
		cfg.Watch.Addr = ":8080"
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// validate checks the configuration for errors and inconsistencies.
func validate(cfg *Config) error {
	if cfg.Player.Slug == "" {
		return fmt.Errorf("player.slug is required")
	}
	if cfg.GroupMe.BotID == "" {
		return fmt.Errorf("groupme.bot_id is required (set it in the file or export GROUPME_BOT_ID)")
	}

	validDrivers := map[string]bool{
		"bbolt": true,
		"json":  true,
	}
	if !validDrivers[cfg.Store.Driver] {
		return fmt.Errorf("invalid store driver: %s (must be 'bbolt' or 'json')", cfg.Store.Driver)
	}

	if cfg.Store.HistoryCap < 0 {
		return fmt.Errorf("store.history_cap must be non-negative")
	}
	if cfg.Store.GraceSec < 0 {
		return fmt.Errorf("store.grace_sec must be non-negative")
	}
	if cfg.Courts.DelayMS < 0 {
		return fmt.Errorf("courts.delay_ms must be non-negative")
	}

	if err := ValidateSchedule(cfg.Watch.Schedule); err != nil {
		return fmt.Errorf("invalid watch schedule: %w", err)
	}

	return nil
}

// ValidateSchedule checks if a schedule expression is valid. Supports
// cron expressions, @-prefixed shortcuts, and "every <n> <unit>"
// intervals.
func ValidateSchedule(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return fmt.Errorf("schedule cannot be empty")
	}

	if intervalPattern.MatchString(schedule) {
		return nil
	}

	if strings.HasPrefix(schedule, "@") {
		shortcuts := []string{"@annually", "@yearly", "@monthly", "@weekly", "@daily", "@hourly"}
		for _, shortcut := range shortcuts {
			if schedule == shortcut {
				return nil
			}
		}
		if strings.HasPrefix(schedule, "@every ") {
			interval := strings.TrimPrefix(schedule, "@every ")
			if matched, _ := regexp.MatchString(`^\d+[smh]$`, interval); matched {
				return nil
			}
			return fmt.Errorf("invalid @every interval: %s (must be like '5m', '1h', '30s')", interval)
		}
		return fmt.Errorf("unknown schedule shortcut: %s", schedule)
	}

	// Detailed cron validation happens at runtime in the scheduler; this
	// basic field count catches obvious errors early.
	fields := strings.Fields(schedule)
	if len(fields) < 5 || len(fields) > 6 {
		return fmt.Errorf("cron expression must have 5 or 6 fields, got %d", len(fields))
	}

	return nil
}
