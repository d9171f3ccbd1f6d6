// Package config loads aioncli configuration from TOML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tutu-network/aioncli/internal/domain"
)

// Config holds all aioncli configuration.
type Config struct {
	OpenAI  OpenAIConfig  `toml:"openai"`
	Logging LoggingConfig `toml:"logging"`
}

// OpenAIConfig controls the completion endpoint.
type OpenAIConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

// Default endpoint values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"
)

// Environment variables read by Load.
const (
	EnvHome    = "AIONCLI_HOME"
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
	EnvModel   = "AIONCLI_MODEL"
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		OpenAI: OpenAIConfig{
			BaseURL:        DefaultBaseURL,
			Model:          DefaultModel,
			TimeoutSeconds: 120,
		},
		Logging: LoggingConfig{
			Level:     "warn",
			File:      filepath.Join(Home(), "aioncli.log"),
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// Load reads config from $AIONCLI_HOME/config.toml, falling back to
// defaults, then applies environment overrides.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load with an explicit file path.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	applyEnv(&cfg)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.OpenAI.Model = v
	}
}

// Validate rejects configurations the CLI cannot run with. A missing API
// key is not checked here: only promptai needs one.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.Model) == "" {
		return fmt.Errorf("%w: openai.model is empty", domain.ErrInvalidConfig)
	}
	if c.OpenAI.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: openai.timeout_seconds must be >= 0, got %d", domain.ErrInvalidConfig, c.OpenAI.TimeoutSeconds)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownLogLevel, c.Logging.Level)
	}
	return nil
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Home(), "config.toml")
}

// Home returns the aioncli data directory.
func Home() string {
	if env := os.Getenv(EnvHome); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".aioncli")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
