// Package config loads the calcpitch-mcp configuration from YAML and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
	"github.com/ironsheep/calcpitch-mcp/internal/imaging"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfigPath = "CALCPITCH_CONFIG"
	EnvLogLevel   = "CALCPITCH_LOG_LEVEL"
	EnvModelPath  = "CALCPITCH_MODEL"
	EnvLibrary    = "CALCPITCH_ORT_LIBRARY"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Segmentation model
	Model struct {
		// Path is the exported ONNX weights file
		Path string `yaml:"path"`

		// Library is the onnxruntime shared library; empty uses the platform default
		Library string `yaml:"library"`

		InputName  string `yaml:"inputName"`
		OutputName string `yaml:"outputName"`

		// InputSize is the square model input edge in pixels
		InputSize int `yaml:"inputSize"`

		// Threshold is the foreground probability cut-off
		Threshold float64 `yaml:"threshold"`

		// Sigmoid applies a logistic function to raw model outputs
		Sigmoid bool `yaml:"sigmoid"`

		// Threads limits intra-op parallelism, 0 for the runtime default
		Threads int `yaml:"threads"`
	} `yaml:"model"`

	// Measurement parameters
	Analysis struct {
		// SplitPolicy is "bbox" or "centroid"
		SplitPolicy string `yaml:"splitPolicy"`

		// KernelSize is the edge of the square opening kernel
		KernelSize int `yaml:"kernelSize"`

		// GroundLength is the drawn ground line length in pixels
		GroundLength int `yaml:"groundLength"`

		// Annotate renders a review image with every result
		Annotate bool `yaml:"annotate"`

		// Window is applied to 16-bit sources; width 0 selects min-max
		Window imaging.Window `yaml:"window"`
	} `yaml:"analysis"`

	// Side-marker OCR
	Marker struct {
		Enabled       bool    `yaml:"enabled"`
		Language      string  `yaml:"language"`
		MinConfidence float64 `yaml:"minConfidence"`
		MaxWidth      int     `yaml:"maxWidth"`
	} `yaml:"marker"`

	Logging struct {
		// Level is a logrus level name: debug, info, warn, error
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Model.Path = "models/calcaneus_unet.onnx"
	cfg.Model.InputName = "input"
	cfg.Model.OutputName = "output"
	cfg.Model.InputSize = 512
	cfg.Model.Threshold = 0.5

	cfg.Analysis.SplitPolicy = string(geometry.SplitBoundingBox)
	cfg.Analysis.KernelSize = 5
	cfg.Analysis.GroundLength = geometry.DefaultGroundLength

	cfg.Marker.Enabled = false
	cfg.Marker.Language = "eng"
	cfg.Marker.MinConfidence = 0.3
	cfg.Marker.MaxWidth = 1200

	cfg.Logging.Level = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}
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
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := getenv(EnvModelPath); v != "" {
		c.Model.Path = v
	}
	if v := getenv(EnvLibrary); v != "" {
		c.Model.Library = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := geometry.ParseSplitPolicy(c.Analysis.SplitPolicy); err != nil {
		return err
	}
	if c.Analysis.KernelSize < 1 {
		return fmt.Errorf("kernelSize must be at least 1, got %d", c.Analysis.KernelSize)
	}
	if c.Analysis.GroundLength < 1 {
		return fmt.Errorf("groundLength must be positive, got %d", c.Analysis.GroundLength)
	}
	if c.Analysis.Window.Width < 0 {
		return fmt.Errorf("window width must not be negative, got %v", c.Analysis.Window.Width)
	}
	if c.Model.InputSize < 1 {
		return fmt.Errorf("inputSize must be positive, got %d", c.Model.InputSize)
	}
	if c.Model.Threshold <= 0 || c.Model.Threshold >= 1 {
		return fmt.Errorf("threshold must be in (0, 1), got %v", c.Model.Threshold)
	}
	if c.Marker.MinConfidence < 0 || c.Marker.MinConfidence > 1 {
		return fmt.Errorf("minConfidence must be in [0, 1], got %v", c.Marker.MinConfidence)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file.
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

// CreateDefaultConfigFile creates a default configuration file at the specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
