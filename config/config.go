// Package config loads elephant's YAML configuration and resolves its directories.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "elephant"

	// ConfigFile is the configuration filename inside the config directory.
	ConfigFile = "config.yaml"

	// LogFile is the log filename inside the data directory.
	LogFile = "elephant.log"
)

const (
	EnvDataDir = "ELEPHANT_DATA_DIR"
	EnvDebug   = "ELEPHANT_DEBUG"
)

// Config holds user settings. Keys absent from the file keep their defaults,
// so an explicit zero such as `rotationDelay: 0` is honored.
type Config struct {
	// DataDir holds the task documents and the log file.
	DataDir string `yaml:"dataDir"`

	// RotationDelay is how long a completed wellness task stays on screen.
	RotationDelay time.Duration `yaml:"rotationDelay"`

	// FocusDuration and BreakDuration drive the pomodoro timer.
	FocusDuration time.Duration `yaml:"focusDuration"`
	BreakDuration time.Duration `yaml:"breakDuration"`

	DailyTokenLimit int `yaml:"dailyTokenLimit"`

	// WellnessActivities replaces the built-in wellness pool on first run.
	WellnessActivities []string `yaml:"wellnessActivities,omitempty"`

	Debug bool `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:         DefaultDataDir(),
		RotationDelay:   2 * time.Second,
		FocusDuration:   25 * time.Minute,
		BreakDuration:   5 * time.Minute,
		DailyTokenLimit: 5,
	}
}

// Load reads path (or the default config file if path is empty) over the
// defaults and applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = DefaultDataDir()
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the timer and store cannot work with.
func (c Config) Validate() error {
	if c.RotationDelay < 0 {
		return fmt.Errorf("rotationDelay must not be negative, got %s", c.RotationDelay)
	}
	if c.FocusDuration < time.Second || c.BreakDuration < time.Second {
		return fmt.Errorf("focusDuration and breakDuration must be at least 1s")
	}
	if c.DailyTokenLimit < 1 {
		return fmt.Errorf("dailyTokenLimit must be at least 1, got %d", c.DailyTokenLimit)
	}
	return nil
}

// LogPath returns the path of the log file.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, LogFile)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o755)
}

func (c *Config) applyEnvOverrides() {
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		c.DataDir = dir
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebug)); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Debug = debug
		}
	}
}

// DefaultConfigPath returns the default configuration file.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), ConfigFile)
}

// DefaultDataDir returns the default data directory.
// Uses XDG_DATA_HOME if set, otherwise $HOME/.local/share.
func DefaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) string {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, fallback, AppName)
}
