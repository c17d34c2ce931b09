// Package config provides configuration loading and management for cogfusion.
// It handles loading configuration from YAML or TOML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"cogfusion/pkg/smoothing"
)

// Config represents the application configuration
type Config struct {
	// Processing parameters
	Processing struct {
		// NumWorkers bounds the goroutines used for pairwise comparisons
		NumWorkers int `yaml:"numWorkers" toml:"numWorkers"`

		// Permissive returns non-finite scores instead of failing on a zero norm
		Permissive bool `yaml:"permissive" toml:"permissive"`
	} `yaml:"processing" toml:"processing"`

	// Gaussian smoothing parameters
	Smoothing struct {
		// SigmaA and SigmaB are the per-axis standard deviations, in voxels,
		// applied to the first and second image list. Empty means none.
		SigmaA []float64 `yaml:"sigmaA" toml:"sigmaA"`
		SigmaB []float64 `yaml:"sigmaB" toml:"sigmaB"`

		// Truncate is the kernel half-width in standard deviations
		Truncate float64 `yaml:"truncate" toml:"truncate"`

		// Mode is the boundary extension: reflect, mirror, nearest, wrap or constant
		Mode string `yaml:"mode" toml:"mode"`
	} `yaml:"smoothing" toml:"smoothing"`

	// Output parameters
	Output struct {
		// Format of printed results: text or json
		Format string `yaml:"format" toml:"format"`

		// LogLevel is a zerolog level name
		LogLevel string `yaml:"logLevel" toml:"logLevel"`

		// LogFormat is console or json
		LogFormat string `yaml:"logFormat" toml:"logFormat"`
	} `yaml:"output" toml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumWorkers = runtime.NumCPU()
	cfg.Processing.Permissive = false

	cfg.Smoothing.SigmaA = []float64{0, 0, 0}
	cfg.Smoothing.SigmaB = []float64{0, 0, 0}
	cfg.Smoothing.Truncate = smoothing.DefaultTruncate
	cfg.Smoothing.Mode = smoothing.Reflect.String()

	cfg.Output.Format = "text"
	cfg.Output.LogLevel = "info"
	cfg.Output.LogFormat = "console"

	return cfg
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by extension.
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if isTOML(configPath) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot use
func (c *Config) Validate() error {
	if c.Processing.NumWorkers < 1 {
		return fmt.Errorf("processing.numWorkers must be at least 1, got %d", c.Processing.NumWorkers)
	}
	if _, err := c.SigmaA(); err != nil {
		return fmt.Errorf("smoothing.sigmaA: %w", err)
	}
	if _, err := c.SigmaB(); err != nil {
		return fmt.Errorf("smoothing.sigmaB: %w", err)
	}
	if c.Smoothing.Truncate <= 0 {
		return fmt.Errorf("smoothing.truncate must be positive, got %g", c.Smoothing.Truncate)
	}
	if _, err := smoothing.ParseMode(c.Smoothing.Mode); err != nil {
		return err
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	return nil
}

// SigmaA returns the smoothing applied to the first image list
func (c *Config) SigmaA() (smoothing.Sigma, error) {
	return smoothing.SigmaFromSlice(c.Smoothing.SigmaA)
}

// SigmaB returns the smoothing applied to the second image list
func (c *Config) SigmaB() (smoothing.Sigma, error) {
	return smoothing.SigmaFromSlice(c.Smoothing.SigmaB)
}

// SmoothingOptions returns the filter options described by the configuration
func (c *Config) SmoothingOptions() []smoothing.Option {
	mode, _ := smoothing.ParseMode(c.Smoothing.Mode)
	return []smoothing.Option{
		smoothing.WithTruncate(c.Smoothing.Truncate),
		smoothing.WithMode(mode),
	}
}

// SaveConfig saves the configuration to a YAML or TOML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var data []byte
	if isTOML(configPath) {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		data = []byte(sb.String())
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
