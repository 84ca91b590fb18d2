package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds persistent editor settings.
// Priority: HSMEDIT_* env vars > ~/.hsmedit > defaults.
type Config struct {
	FileType string // "png" or "svg"
	LastDir  string // last used directory
	Edges    string // "orthogonal" or "direct"
	LogFile  string // empty discards logs
	LogLevel string // "debug", "info", "warn" or "error"
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	cwd, _ := os.Getwd()
	return Config{
		FileType: "png",
		LastDir:  cwd,
		Edges:    "orthogonal",
		LogLevel: "info",
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hsmedit"
	}
	return filepath.Join(home, ".hsmedit")
}

// LoadConfig layers the config file and the environment over the defaults.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if data, err := os.ReadFile(ConfigPath()); err == nil {
		cfg = parseConfig(cfg, string(data))
	}
	return applyEnv(cfg, os.Getenv)
}

// parseConfig reads `key = "value"` lines over cfg. Unknown keys and
// invalid values are ignored.
func parseConfig(cfg Config, text string) Config {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), "\"")
		cfg = setConfig(cfg, key, val)
	}
	return cfg
}

// applyEnv overrides cfg from HSMEDIT_<KEY> variables.
func applyEnv(cfg Config, getenv func(string) string) Config {
	for _, key := range []string{"file_type", "last_dir", "edges", "log_file", "log_level"} {
		if v := getenv("HSMEDIT_" + strings.ToUpper(key)); v != "" {
			cfg = setConfig(cfg, key, v)
		}
	}
	return cfg
}

func setConfig(cfg Config, key, val string) Config {
	switch key {
	case "file_type":
		if val == "png" || val == "svg" {
			cfg.FileType = val
		}
	case "last_dir":
		if val != "" {
			cfg.LastDir = val
		}
	case "edges":
		if val == "orthogonal" || val == "direct" {
			cfg.Edges = val
		}
	case "log_file":
		cfg.LogFile = val
	case "log_level":
		if _, ok := parseLevel(val); ok {
			cfg.LogLevel = val
		}
	}
	return cfg
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// formatConfig renders cfg in the config file format.
func formatConfig(cfg Config) string {
	var sb strings.Builder
	sb.WriteString("# hsmedit configuration\n")
	sb.WriteString(fmt.Sprintf("file_type = \"%s\"\n", cfg.FileType))
	sb.WriteString(fmt.Sprintf("last_dir = \"%s\"\n", cfg.LastDir))
	sb.WriteString(fmt.Sprintf("edges = \"%s\"\n", cfg.Edges))
	if cfg.LogFile != "" {
		sb.WriteString(fmt.Sprintf("log_file = \"%s\"\n", cfg.LogFile))
	}
	sb.WriteString(fmt.Sprintf("log_level = \"%s\"\n", cfg.LogLevel))
	return sb.String()
}

// SaveConfig saves configuration to the config file
func SaveConfig(cfg Config) error {
	return os.WriteFile(ConfigPath(), []byte(formatConfig(cfg)), 0644)
}
