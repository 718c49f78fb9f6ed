package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	configDir      = ".todoflow"
	configFileName = "config.json"

	// DefaultBaseURL points at a todoflowd started with default settings.
	DefaultBaseURL = "http://localhost:8080/v1"
)

// Config is the client-side configuration stored in ~/.todoflow/config.json.
// The API key is kept out of this file; see internal/credential.
type Config struct {
	BaseURL       string `json:"base_url"`
	DefaultUserID *uint  `json:"default_user_id,omitempty"`
}

// Dir returns ~/.todoflow.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

// GetConfigPath returns the path to the config file (~/.todoflow/config.json)
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig reads the config file. A missing file yields defaults;
// TODOFLOW_API_URL overrides the stored base URL.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if env := os.Getenv("TODOFLOW_API_URL"); env != "" {
		cfg.BaseURL = env
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg, nil
}

// SaveConfig writes cfg, creating ~/.todoflow if needed.
func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
