package config

// Config is the top-level configuration structure for courtwatch.
type Config struct {
	Player  Player  `yaml:"player"`
	Scraper Scraper `yaml:"scraper"`
	Courts  Courts  `yaml:"courts"`
	GroupMe GroupMe `yaml:"groupme"`
	Stream  Stream  `yaml:"stream"`
	Store   Store   `yaml:"store"`
	Watch   Watch   `yaml:"watch"`
	Logging Logging `yaml:"logging"`
}

// Player identifies whose results page is tracked.
type Player struct {
	Slug string `yaml:"slug"` // e.g. "adam-harvey"
}

// Scraper configures the player-page fetch.
type Scraper struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Courts configures the court-assignment lookup API.
type Courts struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
	DelayMS    int    `yaml:"delay_ms"` // minimum pause between successive lookups
}

// GroupMe configures the notification bot. BotID supports ${ENV_VAR}
// expansion so the secret can live in the environment or a .env file.
type GroupMe struct {
	BotID  string `yaml:"bot_id"`
	APIURL string `yaml:"api_url"`
}

// Stream configures the livestream search appended to notifications.
type Stream struct {
	SearchURL string `yaml:"search_url"`
	Disabled  bool   `yaml:"disabled"`
}

// Store configuration for state persistence.
type Store struct {
	Driver     string `yaml:"driver"`      // "bbolt" or "json"
	Path       string `yaml:"path"`        // file path for the store
	HistoryCap int    `yaml:"history_cap"` // max run records kept
	GraceSec   int    `yaml:"grace_sec"`   // retention window for notified matches that vanish
}

// Watch configures the recurring-run mode.
type Watch struct {
	Schedule string `yaml:"schedule"` // cron expression or "every 1m" style interval
	Addr     string `yaml:"addr"`     // status API listen address for serve mode
}

// Logging configures the structured logger.
type Logging struct {
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Output string `yaml:"output"` // "stderr", "stdout", or a file path
}
