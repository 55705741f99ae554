package internal

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BackendConfig describes the streaming chat backend
type BackendConfig struct {
	BaseURL        string            `yaml:"base_url,omitempty"`
	Model          string            `yaml:"model"`
	TimeoutSeconds int               `yaml:"timeout_seconds,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
}

// StoreConfig describes where pending messages and intents live
type StoreConfig struct {
	// Path is the SQLite database holding pending messages
	Path string `yaml:"path,omitempty"`
	// IntentDir holds cross-entry chat intents
	IntentDir string `yaml:"intent_dir,omitempty"`
}

// Config holds courier settings loaded from YAML
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Store   StoreConfig   `yaml:"store"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".chat-courier")
	return &Config{
		Backend: BackendConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
		Store: StoreConfig{
			Path:      filepath.Join(base, "courier.db"),
			IntentDir: filepath.Join(base, "intents"),
		},
	}
}

// LoadConfig reads the YAML config at path, falling back to defaults
// for anything unset. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Backend.Model == "" {
		cfg.Backend.Model = DefaultConfig().Backend.Model
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultConfig().Store.Path
	}
	if cfg.Store.IntentDir == "" {
		cfg.Store.IntentDir = DefaultConfig().Store.IntentDir
	}

	return cfg, nil
}
