// Package config provides configuration loading and management for adaptels.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"adaptels/pkg/adaptel"
	"adaptels/pkg/colorspace"
	"adaptels/pkg/morph"
)

// Frontier dilator implementations
const (
	DilatorMorph  = "morph"
	DilatorOpenCV = "opencv"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Segmentation parameters
	Segmentation struct {
		// Threshold is the information budget of a single adaptel
		Threshold float64 `yaml:"threshold"`

		// Scale is the constant k in info(v) = k * |v - mean|
		Scale float64 `yaml:"scale"`

		// InfoMode is prior-mean or updated-mean
		InfoMode string `yaml:"infoMode"`

		// RandomSelect shuffles the frontier when choosing the next seed
		RandomSelect bool `yaml:"randomSelect"`

		// RandomSeed makes the frontier shuffle reproducible
		RandomSeed uint64 `yaml:"randomSeed"`

		// Connectivity of the frontier dilation, 4 or 8
		Connectivity int `yaml:"connectivity"`

		// Dilator computes the frontier: morph (pure Go) or opencv, which
		// needs a binary built with the gocv tag
		Dilator string `yaml:"dilator"`

		// MaxRegions stops the run early, 0 means no limit
		MaxRegions int `yaml:"maxRegions"`

		// Reclaim lets later regions relabel pixels they take over
		Reclaim bool `yaml:"reclaim"`
	} `yaml:"segmentation"`

	// Input parameters
	Input struct {
		// ColorMode is gray, lab, gray8 or rgb8
		ColorMode string `yaml:"colorMode"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// LabelImage is where the colored label map is written
		LabelImage string `yaml:"labelImage"`

		// BorderImage is where the boundary overlay is written
		BorderImage string `yaml:"borderImage"`

		// LabelData is where the raw label map is written, empty to skip
		LabelData string `yaml:"labelData"`

		// SaveIntermediaryResults determines whether to save intermediary processing results
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is the directory for intermediary results
		IntermediaryDir string `yaml:"intermediaryDir"`

		// RegionMasks saves one mask per region with the intermediary results
		RegionMasks bool `yaml:"regionMasks"`

		// Verbose logs one line per grown region
		Verbose bool `yaml:"verbose"`

		// LogLevel is a zerolog level name
		LogLevel string `yaml:"logLevel"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default segmentation parameters
	cfg.Segmentation.Threshold = 1.0
	cfg.Segmentation.Scale = adaptel.DefaultScale
	cfg.Segmentation.InfoMode = adaptel.InfoPriorMean.String()
	cfg.Segmentation.RandomSelect = true
	cfg.Segmentation.RandomSeed = adaptel.DefaultRandomSeed
	cfg.Segmentation.Connectivity = 4
	cfg.Segmentation.Dilator = DilatorMorph

	// Set default input parameters
	cfg.Input.ColorMode = colorspace.Lab.String()

	// Set default output parameters
	cfg.Output.LabelImage = "labels.png"
	cfg.Output.BorderImage = "borders.png"
	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.Verbose = false
	cfg.Output.LogLevel = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
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
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
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

// Validate checks enumerated values and numeric ranges
func (c *Config) Validate() error {
	if c.Segmentation.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", c.Segmentation.Scale)
	}
	if c.Segmentation.MaxRegions < 0 {
		return fmt.Errorf("maxRegions must not be negative, got %d", c.Segmentation.MaxRegions)
	}
	if _, err := c.infoMode(); err != nil {
		return err
	}
	if _, err := morph.ForConnectivity(c.Segmentation.Connectivity); err != nil {
		return err
	}
	switch c.Segmentation.Dilator {
	case "", DilatorMorph, DilatorOpenCV:
	default:
		return fmt.Errorf("unknown dilator %q (must be %s or %s)", c.Segmentation.Dilator, DilatorMorph, DilatorOpenCV)
	}
	if _, err := colorspace.ParseMode(c.Input.ColorMode); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.Output.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Output.LogLevel, err)
	}
	return nil
}

// UseOpenCV reports whether the frontier is computed with OpenCV
func (c *Config) UseOpenCV() bool {
	return c.Segmentation.Dilator == DilatorOpenCV
}

// ColorMode returns the parsed input color mode
func (c *Config) ColorMode() (colorspace.Mode, error) {
	return colorspace.ParseMode(c.Input.ColorMode)
}

func (c *Config) infoMode() (adaptel.InfoMode, error) {
	switch strings.ToLower(c.Segmentation.InfoMode) {
	case "", adaptel.InfoPriorMean.String():
		return adaptel.InfoPriorMean, nil
	case adaptel.InfoUpdatedMean.String():
		return adaptel.InfoUpdatedMean, nil
	}
	return adaptel.InfoPriorMean, fmt.Errorf("unknown info mode %q (must be prior-mean or updated-mean)", c.Segmentation.InfoMode)
}

// SegmentOptions maps the segmentation section onto segmenter options
func (c *Config) SegmentOptions(logger *zerolog.Logger) (adaptel.Options, error) {
	mode, err := c.infoMode()
	if err != nil {
		return adaptel.Options{}, err
	}
	dilator, err := morph.ForConnectivity(c.Segmentation.Connectivity)
	if err != nil {
		return adaptel.Options{}, err
	}

	return adaptel.Options{
		Scale:        c.Segmentation.Scale,
		InfoMode:     mode,
		RandomSelect: c.Segmentation.RandomSelect,
		RandomSeed:   c.Segmentation.RandomSeed,
		Dilator:      dilator,
		MaxRegions:   c.Segmentation.MaxRegions,
		Reclaim:      c.Segmentation.Reclaim,
		Logger:       logger,
	}, nil
}
