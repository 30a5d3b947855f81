// Package config handles reading and writing ~/.lifesim/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lifesim-dev/lifesim/internal/profile"
)

// Environment variables consulted by Load.
const (
	EnvHome    = "LIFESIM_HOME"
	EnvServer  = "LIFESIM_SERVER"
	EnvTimeout = "LIFESIM_TIMEOUT_MS"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version int           `yaml:"version"`
	Server  ServerConfig  `yaml:"server"`
	Game    GameConfig    `yaml:"game"`
	UI      UIConfig      `yaml:"ui"`
	Cleanup CleanupConfig `yaml:"cleanup"`
}

// ServerConfig locates the simulation backend.
type ServerConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// GameConfig holds defaults for game commands.
type GameConfig struct {
	DefaultSkipYears  int    `yaml:"default_skip_years"`
	DefaultDifficulty string `yaml:"default_difficulty"`
}

// UIConfig controls the interactive client.
type UIConfig struct {
	TypewriterMs int `yaml:"typewriter_ms"` // per character, 0 disables
}

// CleanupConfig controls "lifesim clean".
type CleanupConfig struct {
	MaxAgeDays int `yaml:"max_age_days"`
}

const (
	defaultDir = ".lifesim"
	configFile = "config.yaml"
	dbFile     = "lifesim.db"
	envFile    = ".env"
)

// Dir returns the data directory: $LIFESIM_HOME, else ~/.lifesim.
func Dir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, defaultDir), nil
}

// DBPath returns the SQLite database location inside dir.
func DBPath(dir string) string {
	return filepath.Join(dir, dbFile)
}

// ReadConfig reads config.yaml from the data directory dir.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to config.yaml in dir.
// Creates dir if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Load reads the config in dir, falling back to defaults when the file
// does not exist, then applies .env files and environment overrides.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	for _, path := range []string{envFile, filepath.Join(dir, envFile)} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from LIFESIM_SERVER and LIFESIM_TIMEOUT_MS.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvServer)); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Server.TimeoutMs = ms
	}
	return nil
}

// Validate rejects values the client cannot work with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Server.BaseURL) == "":
		return errors.New("config: server.base_url is empty")
	case c.Server.TimeoutMs < 0:
		return fmt.Errorf("config: server.timeout_ms %d is negative", c.Server.TimeoutMs)
	case c.Game.DefaultSkipYears < 1:
		return fmt.Errorf("config: game.default_skip_years must be at least 1, got %d", c.Game.DefaultSkipYears)
	case !profile.Difficulty(c.Game.DefaultDifficulty).Valid():
		return fmt.Errorf("config: unknown game.default_difficulty %q", c.Game.DefaultDifficulty)
	case c.UI.TypewriterMs < 0:
		return fmt.Errorf("config: ui.typewriter_ms %d is negative", c.UI.TypewriterMs)
	case c.Cleanup.MaxAgeDays < 1:
		return fmt.Errorf("config: cleanup.max_age_days must be at least 1, got %d", c.Cleanup.MaxAgeDays)
	}
	return nil
}

// Timeout returns the backend request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutMs) * time.Millisecond
}

// Typewriter returns the per-character reveal delay of the game screen.
func (c *Config) Typewriter() time.Duration {
	return time.Duration(c.UI.TypewriterMs) * time.Millisecond
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			BaseURL:   "http://localhost:8080",
			TimeoutMs: 60000,
		},
		Game: GameConfig{
			DefaultSkipYears:  5,
			DefaultDifficulty: string(profile.DifficultyNormal),
		},
		UI: UIConfig{
			TypewriterMs: 30,
		},
		Cleanup: CleanupConfig{
			MaxAgeDays: 30,
		},
	}
}
