// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/termmirror/lib/recording"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "BUREAU_MIRROR_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for interactive use on a workstation.
	Development Environment = "development"
	// Production is for unattended mirrors (recorders, dashboards).
	Production Environment = "production"
)

// Config is the mirror client configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Connection locates the controller.
	Connection ConnectionConfig `yaml:"connection"`

	// Mirror tunes session state kept per pane.
	Mirror MirrorConfig `yaml:"mirror"`

	// Recording configures capture of the inbound stream.
	Recording RecordingConfig `yaml:"recording"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Connection *ConnectionConfig `yaml:"connection,omitempty"`
	Mirror     *MirrorConfig     `yaml:"mirror,omitempty"`
	Recording  *RecordingConfig  `yaml:"recording,omitempty"`
	Log        *LogConfig        `yaml:"log,omitempty"`
}

// ConnectionConfig locates the controller's stream.
type ConnectionConfig struct {
	// Network is "unix" or "tcp".
	// Default: unix
	Network string `yaml:"network"`

	// Address is the socket path or host:port. Empty means the client
	// must be given --connect or --replay.
	Address string `yaml:"address"`
}

// MirrorConfig tunes the mirrored session.
type MirrorConfig struct {
	// ScrollbackBytes is the raw output history kept per pane.
	// Default: 262144
	ScrollbackBytes int `yaml:"scrollback_bytes"`
}

// RecordingConfig configures capture of the inbound stream.
type RecordingConfig struct {
	// Path is the recording file. Empty disables recording.
	Path string `yaml:"path"`

	// Compression is none, lz4, or zstd.
	// Default: zstd
	Compression string `yaml:"compression"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info (production), debug (development)
	Level string `yaml:"level"`

	// Format is text or json.
	// Default: text (development), json (production)
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given, and
// the base every file is merged into.
func Default() *Config {
	return &Config{
		Environment: Development,
		Connection: ConnectionConfig{
			Network: "unix",
		},
		Mirror: MirrorConfig{
			ScrollbackBytes: 256 * 1024,
		},
		Recording: RecordingConfig{
			Compression: "zstd",
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
		},
	}
}

// Load loads configuration from the file named by BUREAU_MIRROR_CONFIG.
// It fails if the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your mirror config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies the
// matching environment section and expands variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Level: "info", Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Connection != nil {
		if overrides.Connection.Network != "" {
			c.Connection.Network = overrides.Connection.Network
		}
		if overrides.Connection.Address != "" {
			c.Connection.Address = overrides.Connection.Address
		}
	}

	if overrides.Mirror != nil && overrides.Mirror.ScrollbackBytes != 0 {
		c.Mirror.ScrollbackBytes = overrides.Mirror.ScrollbackBytes
	}

	if overrides.Recording != nil {
		if overrides.Recording.Path != "" {
			c.Recording.Path = overrides.Recording.Path
		}
		if overrides.Recording.Compression != "" {
			c.Recording.Compression = overrides.Recording.Compression
		}
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":           os.Getenv("HOME"),
		"XDG_STATE_HOME": os.Getenv("XDG_STATE_HOME"),
	}
	c.Connection.Address = expandVars(c.Connection.Address, vars)
	c.Recording.Path = expandVars(c.Recording.Path, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
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

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Connection.Network != "unix" && c.Connection.Network != "tcp" {
		errs = append(errs, fmt.Errorf("connection.network must be unix or tcp, got %q", c.Connection.Network))
	}

	if c.Mirror.ScrollbackBytes <= 0 {
		errs = append(errs, fmt.Errorf("mirror.scrollback_bytes must be positive, got %d", c.Mirror.ScrollbackBytes))
	}

	if _, err := recording.ParseCompression(c.Recording.Compression); err != nil {
		errs = append(errs, fmt.Errorf("recording.compression: %w", err))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return level, nil
}
