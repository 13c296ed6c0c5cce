// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Filename string `yaml:"filename"`
}

type MaintenanceConfig struct {
	Enabled       bool   `yaml:"enabled"`
	SweepInterval string `yaml:"sweep_interval"` // Go duration string, e.g. "15m"
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// Load loads both .env and yaml configuration. A missing config file falls
// back to defaults so a fresh checkout runs without setup.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := defaults()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.App.Name = "lockerroomlink"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.Database.Filename = "data/lockerroomlink.db"
	cfg.Maintenance.Enabled = true
	cfg.Maintenance.SweepInterval = "15m"
	return cfg
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required")
	}
	if c.Maintenance.Enabled {
		if _, err := c.SweepEvery(); err != nil {
			return fmt.Errorf("invalid maintenance sweep_interval: %w", err)
		}
	}
	return nil
}

// SweepEvery parses the maintenance sweep interval.
func (c *Config) SweepEvery() (time.Duration, error) {
	d, err := time.ParseDuration(c.Maintenance.SweepInterval)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("sweep_interval must be positive, got %s", c.Maintenance.SweepInterval)
	}
	return d, nil
}
