// Package config provides configuration loading and management for ndlabel.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ndlabel/pkg/kernel"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Input parameters
	Input struct {
		// Threshold is the grey level in [0,1] at or above which a voxel is foreground
		Threshold float64 `yaml:"threshold"`
	} `yaml:"input"`

	// Labeling parameters
	Labeling struct {
		// Structure names the structuring element: star, ball or full
		Structure string `yaml:"structure"`

		// LabelBits is the width of the label integer: 8, 16, 32 or 64
		LabelBits int `yaml:"labelBits"`
	} `yaml:"labeling"`

	// Output parameters
	Output struct {
		// LargestDir, if set, receives the largest component as PNG slices
		LargestDir string `yaml:"largestDir"`

		// SlicesDir, if set, receives colour-coded label slices
		SlicesDir string `yaml:"slicesDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Input.Threshold = 0.5

	cfg.Labeling.Structure = kernel.Star.String()
	cfg.Labeling.LabelBits = 32

	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that every value is usable
func (c *Config) Validate() error {
	if c.Input.Threshold < 0 || c.Input.Threshold > 1 {
		return fmt.Errorf("threshold %.3f outside [0,1]", c.Input.Threshold)
	}
	if _, err := kernel.ParseShape(c.Labeling.Structure); err != nil {
		return err
	}
	switch c.Labeling.LabelBits {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("labelBits must be 8, 16, 32 or 64, got %d", c.Labeling.LabelBits)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
