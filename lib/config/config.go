// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML, accepting the standard
// time.ParseDuration syntax ("500ms", "1s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the daemon configuration.
type Config struct {
	// PollInterval is how often compositor state is sampled.
	PollInterval Duration `yaml:"poll_interval"`

	// ErrorBackoff is the extra sleep after a failed reconciliation
	// cycle, distinct from the normal poll interval.
	ErrorBackoff Duration `yaml:"error_backoff"`

	// HyprctlBinary is the compositor query command.
	HyprctlBinary string `yaml:"hyprctl_binary"`

	// WaybarBinary is the companion process executable.
	WaybarBinary string `yaml:"waybar_binary"`

	// BaseConfig is the user's Waybar configuration. It must exist at
	// startup and must NOT pin an "output" — the generated per-output
	// artifacts do that.
	BaseConfig string `yaml:"base_config"`

	// Stylesheet is the Waybar CSS passed to every instance.
	Stylesheet string `yaml:"stylesheet"`

	// CacheDir holds generated per-output config artifacts.
	CacheDir string `yaml:"cache_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration, matching the paths
// Waybar itself uses by convention.
func Default() *Config {
	homeDirectory, _ := os.UserHomeDir()
	cacheDirectory, err := os.UserCacheDir()
	if err != nil {
		cacheDirectory = filepath.Join(homeDirectory, ".cache")
	}

	return &Config{
		PollInterval:  Duration(500 * time.Millisecond),
		ErrorBackoff:  Duration(time.Second),
		HyprctlBinary: "hyprctl",
		WaybarBinary:  "waybar",
		BaseConfig:    filepath.Join(homeDirectory, ".config", "waybar", "config.jsonc"),
		Stylesheet:    filepath.Join(homeDirectory, ".config", "waybar", "style.css"),
		CacheDir:      filepath.Join(cacheDirectory, "autobar"),
		LogLevel:      "info",
	}
}

// Load returns the configuration from path, from AUTOBAR_CONFIG when
// path is empty, or the defaults when neither is set. An explicitly
// named file that cannot be read or parsed is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("AUTOBAR_CONFIG")
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file, merged over the
// defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// path-valued fields.
func (c *Config) expandVariables() {
	homeDirectory, _ := os.UserHomeDir()
	vars := map[string]string{
		"HOME": homeDirectory,
	}

	c.BaseConfig = expandVars(c.BaseConfig, vars)
	c.Stylesheet = expandVars(c.Stylesheet, vars)
	c.CacheDir = expandVars(c.CacheDir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars take precedence over the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive"))
	}
	if c.ErrorBackoff <= 0 {
		errs = append(errs, fmt.Errorf("error_backoff must be positive"))
	}
	if c.HyprctlBinary == "" {
		errs = append(errs, fmt.Errorf("hyprctl_binary is required"))
	}
	if c.WaybarBinary == "" {
		errs = append(errs, fmt.Errorf("waybar_binary is required"))
	}
	if c.BaseConfig == "" {
		errs = append(errs, fmt.Errorf("base_config is required"))
	}
	if c.Stylesheet == "" {
		errs = append(errs, fmt.Errorf("stylesheet is required"))
	}
	if c.CacheDir == "" {
		errs = append(errs, fmt.Errorf("cache_dir is required"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel returns the configured log level. Call Validate first;
// an unknown level falls back to info here.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", name)
	}
}
