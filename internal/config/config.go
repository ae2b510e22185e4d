package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Garmin  GarminConfig  `json:"garmin"`
	Hevy    HevyConfig    `json:"hevy"`
	Merge   MergeConfig   `json:"merge"`
	Display DisplayConfig `json:"display"`
}

// GarminConfig holds Garmin Connect API credentials
type GarminConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// HevyConfig holds the Hevy API key
type HevyConfig struct {
	APIKey string `json:"api_key"`
}

// MergeConfig holds duplicate-resolution settings
type MergeConfig struct {
	// RemoteDeleteTimeoutSec bounds how long a merge waits for the
	// platform's delete call before reporting it as failed.
	RemoteDeleteTimeoutSec int `json:"remote_delete_timeout_sec"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	WeightUnit string `json:"weight_unit"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Merge: MergeConfig{
			RemoteDeleteTimeoutSec: 30,
		},
		Display: DisplayConfig{
			WeightUnit: "kg",
		},
	}
}

// Load reads the configuration from ~/.fitlake/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Merge.RemoteDeleteTimeoutSec == 0 {
		cfg.Merge.RemoteDeleteTimeoutSec = defaults.Merge.RemoteDeleteTimeoutSec
	}
	if cfg.Display.WeightUnit == "" {
		cfg.Display.WeightUnit = defaults.Display.WeightUnit
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.fitlake/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := Config{
		Garmin: GarminConfig{
			ClientID:     "YOUR_CLIENT_ID",
			ClientSecret: "YOUR_CLIENT_SECRET",
		},
		Hevy: HevyConfig{
			APIKey: "YOUR_API_KEY",
		},
		Merge: MergeConfig{
			RemoteDeleteTimeoutSec: 30,
		},
		Display: DisplayConfig{
			WeightUnit: "kg",
		},
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Garmin.ClientID == "" || c.Garmin.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("garmin.client_id is required")
	}
	if c.Garmin.ClientSecret == "" || c.Garmin.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("garmin.client_secret is required")
	}

	if c.Merge.RemoteDeleteTimeoutSec < 0 {
		return fmt.Errorf("merge.remote_delete_timeout_sec must be non-negative, got %d", c.Merge.RemoteDeleteTimeoutSec)
	}

	if c.Display.WeightUnit != "" && c.Display.WeightUnit != "kg" && c.Display.WeightUnit != "lb" {
		return fmt.Errorf("display.weight_unit must be \"kg\" or \"lb\", got %q", c.Display.WeightUnit)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fitlake", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fitlake"), nil
}
