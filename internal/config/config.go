// Package config provides configuration loading and structs for the oshiete tutor.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Limits  LimitsConfig  `yaml:"limits"`
	Storage StorageConfig `yaml:"storage"`
	Finder  FinderConfig  `yaml:"finder"`
	Chat    ChatConfig    `yaml:"chat"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ModelConfig holds language-model backend settings. The API key itself is
// never stored in the config file; it is read from the environment variable
// named by APIKeyEnv.
type ModelConfig struct {
	Endpoint    string   `yaml:"endpoint"`
	ID          string   `yaml:"id"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	APIKeyEnv   string   `yaml:"api_key_env"`
}

// TemperatureOrDefault returns the configured temperature; defaults to 0.4
// when unset. An explicit 0 is respected.
func (m *ModelConfig) TemperatureOrDefault() float64 {
	if m.Temperature != nil {
		return *m.Temperature
	}
	return 0.4
}

// LimitsConfig holds paper size thresholds, in characters of extracted text.
type LimitsConfig struct {
	MaxChars     int `yaml:"max_chars"`
	WarningChars int `yaml:"warning_chars"`
}

// StorageConfig holds the optional transcript archive path.
// An empty DatabasePath disables archiving.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// FinderConfig holds chunking settings for the find-in-paper index.
type FinderConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	MaxMatches   int `yaml:"max_matches"`
}

// ChatConfig holds terminal chat mode settings.
type ChatConfig struct {
	// WatchDir, when set, is a drop folder: a paper file appearing there is
	// uploaded into the session automatically.
	WatchDir string `yaml:"watch_dir"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	if cfg.Storage.DatabasePath != "" {
		cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	}
	if cfg.Chat.WatchDir != "" {
		cfg.Chat.WatchDir = expandPath(cfg.Chat.WatchDir, configDir)
	}

	return &cfg, nil
}

// APIKey reads the backend credential from the configured environment
// variable. Returns an error when the variable is unset or empty: the tutor
// must hard-stop rather than accept uploads it cannot answer for.
func (c *Config) APIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(c.Model.APIKeyEnv))
	if key == "" {
		return "", fmt.Errorf("missing backend credential: set %s", c.Model.APIKeyEnv)
	}
	return key, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
