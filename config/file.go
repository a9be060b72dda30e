package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when an explicitly named config file does
// not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Environment variables that override the config file.
const (
	EnvListURL     = "BOARDBLOG_LIST_URL"
	EnvBaseURL     = "BOARDBLOG_BASE_URL"
	EnvBlogDir     = "BOARDBLOG_BLOG_DIR"
	EnvLedgerDSN   = "BOARDBLOG_LEDGER_DSN"
	EnvLogLevel    = "BOARDBLOG_LOG_LEVEL"
	EnvMaxArticles = "BOARDBLOG_MAX_ARTICLES"
)

// ConfigFilePath returns the default config location,
// ~/.boardblog/config.yaml.
func ConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".boardblog", "config.yaml"), nil
}

// Load resolves the configuration with precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file (path, or ~/.boardblog/config.yaml when empty)
// 3. Default values (lowest priority)
//
// A missing default config file is not an error; a missing explicit one is.
// The result is validated.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := ConfigFilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		if explicit {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if val := os.Getenv(EnvListURL); val != "" {
		cfg.Board.ListURL = val
	}
	if val := os.Getenv(EnvBaseURL); val != "" {
		cfg.Board.BaseURL = val
	}
	if val := os.Getenv(EnvBlogDir); val != "" {
		cfg.Output.BlogDir = val
	}
	if val := os.Getenv(EnvLedgerDSN); val != "" {
		cfg.Ledger.Path = val
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv(EnvMaxArticles); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfig, EnvMaxArticles, val)
		}
		cfg.Board.MaxArticles = n
	}
	return nil
}

// WriteDefaultConfigFile writes the default configuration to
// ~/.boardblog/config.yaml. It returns false without writing when the file
// exists and force is not set.
func WriteDefaultConfigFile(force bool) (bool, error) {
	path, err := ConfigFilePath()
	if err != nil {
		return false, err
	}
	return WriteConfigFile(path, Default(), force)
}

// WriteConfigFile writes cfg as YAML to path.
func WriteConfigFile(path string, cfg *Config, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
