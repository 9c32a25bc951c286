package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the fields read from --config (or ./coseutil.yaml if
// present). initConfig loads them into cfg, but no subcommand reads cfg, so
// they do not change any command's defaults.
type Config struct {
	DefaultAlgorithm string `yaml:"default_algorithm"` // e.g. "ES256"
	DefaultCurve     string `yaml:"default_curve"`      // e.g. "P-256"
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}
