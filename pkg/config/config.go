// Package config provides configuration loading and management for cloudmask.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Data parameters describe the datacube and its calibration
	Data struct {
		// DataFolder is the directory holding input datacubes
		DataFolder string `yaml:"dataFolder"`

		// Datacube is the filename of the radiance datacube to process
		Datacube string `yaml:"datacube"`

		// WavelengthFile is an optional text file of band-centre
		// wavelengths; when empty they are generated linearly
		WavelengthFile string `yaml:"wavelengthFile"`

		// NumRows, NumCols, NumBands are the expected cube dimensions
		NumRows  int `yaml:"numRows"`
		NumCols  int `yaml:"numCols"`
		NumBands int `yaml:"numBands"`

		// MinWavelength and MaxWavelength bound the linear wavelength
		// generation, in nm
		MinWavelength float64 `yaml:"minWavelength"`
		MaxWavelength float64 `yaml:"maxWavelength"`
	} `yaml:"data"`

	// Selection parameters supply defaults for the band/threshold pair
	Selection struct {
		// Band is the spectral band to threshold (0-indexed); -1 means
		// pick the band with the highest radiance variance
		Band int `yaml:"band"`

		// Threshold is the radiance cutoff used when UseThreshold is set
		Threshold float64 `yaml:"threshold"`

		// UseThreshold controls whether Threshold is taken as-is; when
		// false the threshold is derived from ThresholdPercentile
		UseThreshold bool `yaml:"useThreshold"`

		// ThresholdPercentile is the radiance percentile used to derive
		// a threshold when none is given explicitly
		ThresholdPercentile float64 `yaml:"thresholdPercentile"`
	} `yaml:"selection"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for the spatial
		// masking loops
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// OutputFolder is the directory where result archives are written
		OutputFolder string `yaml:"outputFolder"`

		// SaveData determines whether mask and masked-cube archives are
		// written after detection
		SaveData bool `yaml:"saveData"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default data parameters
	cfg.Data.DataFolder = "data"
	cfg.Data.NumRows = 956
	cfg.Data.NumCols = 684
	cfg.Data.NumBands = 120
	cfg.Data.MinWavelength = 400
	cfg.Data.MaxWavelength = 800

	// Set default selection parameters
	cfg.Selection.Band = -1
	cfg.Selection.UseThreshold = false
	cfg.Selection.ThresholdPercentile = 95

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	// Set default output parameters
	cfg.Output.OutputFolder = "data_output"
	cfg.Output.SaveData = false
	cfg.Output.Verbose = true

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

// Validate checks the configuration for values the pipeline cannot work with
func (cfg *Config) Validate() error {
	if cfg.Data.NumRows <= 0 || cfg.Data.NumCols <= 0 || cfg.Data.NumBands <= 0 {
		return fmt.Errorf("cube dimensions must be positive, got %dx%dx%d",
			cfg.Data.NumRows, cfg.Data.NumCols, cfg.Data.NumBands)
	}
	if cfg.Data.MaxWavelength <= cfg.Data.MinWavelength {
		return fmt.Errorf("maxWavelength %g must exceed minWavelength %g",
			cfg.Data.MaxWavelength, cfg.Data.MinWavelength)
	}
	if cfg.Selection.Band >= cfg.Data.NumBands {
		return fmt.Errorf("selection band %d exceeds numBands %d",
			cfg.Selection.Band, cfg.Data.NumBands)
	}
	if cfg.Selection.ThresholdPercentile < 0 || cfg.Selection.ThresholdPercentile > 100 {
		return fmt.Errorf("thresholdPercentile must be in [0, 100], got %g",
			cfg.Selection.ThresholdPercentile)
	}
	if cfg.Processing.NumCores < 1 {
		return fmt.Errorf("numCores must be at least 1, got %d", cfg.Processing.NumCores)
	}
	return nil
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

// CubePath returns the full path of the configured datacube file
func (cfg *Config) CubePath() string {
	return filepath.Join(cfg.Data.DataFolder, cfg.Data.Datacube)
}
