// Package config provides configuration loading and management for volslice.
// It handles loading configuration from YAML (or TOML) files and provides default values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"volslice/internal/logging"
	"volslice/internal/models"
	"volslice/pkg/interpolation"
	"volslice/pkg/plane"
	"volslice/pkg/transfer"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores render slice rows in parallel
		NumCores int `yaml:"numCores" toml:"numCores"`

		// Kernel names the interpolation kernel: trilinear or nearest
		Kernel string `yaml:"kernel" toml:"kernel"`
	} `yaml:"processing" toml:"processing"`

	// Datasets maps each dataset name to the PVM file that backs it
	Datasets map[string]string `yaml:"datasets" toml:"datasets"`

	// View is the initial view state
	View struct {
		Dataset      models.Dataset `yaml:"dataset" toml:"dataset"`
		plane.Params `yaml:",inline"`
	} `yaml:"view" toml:"view"`

	// Output parameters
	Output struct {
		// Width and Height are the slice resolution in pixels
		Width  int `yaml:"width" toml:"width"`
		Height int `yaml:"height" toml:"height"`

		// Format is the image encoding: png, jpeg, tiff or bmp
		Format string `yaml:"format" toml:"format"`

		// Dir is where slice images are written
		Dir string `yaml:"dir" toml:"dir"`

		// SweepSteps is the number of images in an offset sweep
		SweepSteps int `yaml:"sweepSteps" toml:"sweepSteps"`
	} `yaml:"output" toml:"output"`

	// Transfer selects the intensity to color mapping. Points, when set,
	// take precedence over Preset.
	Transfer struct {
		Preset string                  `yaml:"preset" toml:"preset"`
		Points []transfer.ControlPoint `yaml:"points,omitempty" toml:"points,omitempty"`
	} `yaml:"transfer" toml:"transfer"`

	// Server parameters
	Server struct {
		Addr string `yaml:"addr" toml:"addr"`

		// ReadTimeout and WriteTimeout are in seconds
		ReadTimeout  int `yaml:"readTimeout" toml:"readTimeout"`
		WriteTimeout int `yaml:"writeTimeout" toml:"writeTimeout"`

		// CacheSize is the number of decoded volumes kept in memory
		CacheSize int `yaml:"cacheSize" toml:"cacheSize"`
	} `yaml:"server" toml:"server"`

	Log logging.Config `yaml:"log" toml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.Kernel = "trilinear"

	cfg.Datasets = make(map[string]string, len(models.Datasets))
	for _, d := range models.Datasets {
		cfg.Datasets[d.String()] = filepath.Join("resources", d.String()+".pvm")
	}

	cfg.View.Dataset = models.Baby
	cfg.View.Orientation = plane.Axial

	// Set default output parameters
	cfg.Output.Width = 512
	cfg.Output.Height = 512
	cfg.Output.Format = "png"
	cfg.Output.Dir = "slices"
	cfg.Output.SweepSteps = 10

	cfg.Transfer.Preset = "grayscale"

	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 30
	cfg.Server.WriteTimeout = 60
	cfg.Server.CacheSize = len(models.Datasets)

	cfg.Log.MaxSize = 100
	cfg.Log.MaxAge = 30

	return cfg
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig loads configuration from a YAML or TOML file
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

	if isTOML(configPath) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
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
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
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

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if c.Processing.NumCores < 1 {
		return fmt.Errorf("%w: processing.numCores must be positive, got %d", ErrInvalidConfig, c.Processing.NumCores)
	}
	if _, err := interpolation.ByName(c.Processing.Kernel); err != nil {
		return fmt.Errorf("%w: processing.kernel: %v", ErrInvalidConfig, err)
	}
	if err := c.View.Params.Validate(); err != nil {
		return fmt.Errorf("%w: view: %v", ErrInvalidConfig, err)
	}
	if c.Output.Width < 1 || c.Output.Height < 1 {
		return fmt.Errorf("%w: output size %dx%d", ErrInvalidConfig, c.Output.Width, c.Output.Height)
	}
	if c.Output.SweepSteps < 1 {
		return fmt.Errorf("%w: output.sweepSteps must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Output.Format) {
	case "png", "jpeg", "jpg", "tiff", "tif", "bmp":
	default:
		return fmt.Errorf("%w: output.format %q", ErrInvalidConfig, c.Output.Format)
	}
	if _, err := c.TransferFunc(); err != nil {
		if errors.Is(err, transfer.ErrUnknownPreset) {
			return fmt.Errorf("%w: transfer: %v (known: %s)", ErrInvalidConfig, err, strings.Join(transfer.Presets(), ", "))
		}
		return fmt.Errorf("%w: transfer: %v", ErrInvalidConfig, err)
	}
	if c.Server.CacheSize < 1 {
		return fmt.Errorf("%w: server.cacheSize must be positive", ErrInvalidConfig)
	}
	return nil
}

// TransferFunc builds the configured transfer function.
func (c *Config) TransferFunc() (transfer.Func, error) {
	if len(c.Transfer.Points) > 0 {
		return transfer.Piecewise(c.Transfer.Points)
	}
	return transfer.Preset(c.Transfer.Preset)
}

// DatasetPath returns the file configured for d.
func (c *Config) DatasetPath(d models.Dataset) (string, bool) {
	path, ok := c.Datasets[d.String()]
	return path, ok
}
