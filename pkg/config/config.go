package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aquastore/aquastore/pkg/telemetry"
)

// DefaultFilename is the configuration file name used by the command line
// tools when none is given.
const DefaultFilename = "aquastore.yaml"

// ConnectorConfig describes the storage backend of a store.
type ConnectorConfig struct {
	// Type selects the backend.
	Type string `yaml:"type" validate:"required,oneof=memory file sqlite badger"`

	// Path is the database file (sqlite) or directory (file, badger).
	// Unused by the memory backend.
	Path string `yaml:"path,omitempty" validate:"required_unless=Type memory"`

	// Compress enables zstd compression for the file backend.
	Compress bool `yaml:"compress,omitempty"`
}

// SolveConfig holds defaults for model solving.
type SolveConfig struct {
	// Parallel is the number of models solved concurrently. Zero means
	// one worker per CPU.
	Parallel int `yaml:"parallel,omitempty" validate:"gte=0"`

	// MaxIterations bounds the outer refinement loop of the solver.
	MaxIterations int `yaml:"max_iterations,omitempty" validate:"gte=0"`
}

// Config is the full configuration of a store.
type Config struct {
	// Name is the store name.
	Name string `yaml:"name" validate:"required"`

	Connector ConnectorConfig          `yaml:"connector"`
	Logging   telemetry.LoggingConfig  `yaml:"logging,omitempty"`
	Metrics   telemetry.MetricsConfig  `yaml:"metrics,omitempty"`
	Solve     SolveConfig              `yaml:"solve,omitempty"`
}

// Default returns a configuration with sensible defaults for the given
// store name and backend.
func Default(name, connectorType, path string) *Config {
	return &Config{
		Name: name,
		Connector: ConnectorConfig{
			Type: connectorType,
			Path: path,
		},
		Logging: telemetry.DefaultLoggingConfig(),
		Metrics: telemetry.DefaultMetricsConfig(),
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}
	cfg := &Config{
		Logging: telemetry.DefaultLoggingConfig(),
		Metrics: telemetry.DefaultMetricsConfig(),
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write validates the configuration and writes it as YAML.
func (c *Config) Write(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create configuration directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}
	return nil
}
