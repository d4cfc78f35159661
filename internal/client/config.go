package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

var configProfile string

// SetProfile selects a separate config file, for running several players
// from one account.
func SetProfile(profile string) {
	configProfile = profile
}

// Config holds the REPL preferences remembered between runs.
type Config struct {
	LastServer   string `json:"last_server"`
	LastSession  string `json:"last_session,omitempty"`
	SavePath     string `json:"save_path"`
	LastScenario string `json:"last_scenario,omitempty"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		LastServer: "localhost:30000",
		SavePath:   DefaultSavePath(),
	}
}

// DefaultSavePath is the save file under the user's data directory, or in
// the working directory when that cannot be determined.
func DefaultSavePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "blackoil_save.json"
	}
	return filepath.Join(dir, "black-oil", "save.json")
}

// LoadConfig loads config from the user's config directory.
func LoadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return loadConfigFile(path)
}

func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save saves the config to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.saveFile(path)
}

func (c *Config) saveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	filename := "config.json"
	if configProfile != "" {
		filename = "config-" + configProfile + ".json"
	}

	return filepath.Join(configDir, "black-oil", filename), nil
}
