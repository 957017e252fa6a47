package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		logFunc   func(*slog.Logger)
		shouldLog bool
	}{
		{
			name:      "debug level logs debug",
			level:     "debug",
			logFunc:   func(l *slog.Logger) { l.Debug("test message") },
			shouldLog: true,
		},
		{
			name:      "info level skips debug",
			level:     "info",
			logFunc:   func(l *slog.Logger) { l.Debug("test message") },
			shouldLog: false,
		},
		{
			name:      "warn level logs warnings",
			level:     "warn",
			logFunc:   func(l *slog.Logger) { l.Warn("test message") },
			shouldLog: true,
		},
		{
			name:      "error level skips info",
			level:     "error",
			logFunc:   func(l *slog.Logger) { l.Info("test message") },
			shouldLog: false,
		},
		{
			name:      "invalid level defaults to info",
			level:     "invalid",
			logFunc:   func(l *slog.Logger) { l.Info("test message") },
			shouldLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(&buf, tt.level)
			tt.logFunc(logger)

			got := buf.Len() > 0
			if got != tt.shouldLog {
				t.Errorf("logged = %v, want %v (output: %s)", got, tt.shouldLog, buf.String())
			}
		})
	}
}

func TestRedactSecrets(t *testing.T) {
	tests := []struct {
		key      string
		redacted bool
	}{
		{"bot_id", true},
		{"API_TOKEN", true},
		{"client_secret", true},
		{"DB_PASSWORD", true},
		{"court", false},
		{"match_id", false},
		{"player", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(&buf, "info")
			logger.Info("test", tt.key, "sensitive-value")

			var record map[string]any
			if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}

			got, _ := record[tt.key].(string)
			if tt.redacted && got != "***REDACTED***" {
				t.Errorf("key %s not redacted, got %q", tt.key, got)
			}
			if !tt.redacted && got != "sensitive-value" {
				t.Errorf("key %s wrongly redacted, got %q", tt.key, got)
			}
		})
	}
}

func TestNewFromConfig_TextFormat(t *testing.T) {
	logger, err := NewFromConfig("text", "info", "discard")
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if logger == nil {
		t.Fatal("NewFromConfig() returned nil logger")
	}
}

func TestNewFromConfig_FileOutput(t *testing.T) {
	path := t.TempDir() + "/watch.log"
	logger, err := NewFromConfig("json", "info", path)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	logger.Info("hello")

	// The handler writes synchronously; the file must exist with content.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing entry, got %q", string(data))
	}
}
