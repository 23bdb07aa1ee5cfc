package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Columns  ColumnsConfig  `yaml:"columns" envconfig:"COLUMNS"`
	Cleaning CleaningConfig `yaml:"cleaning" envconfig:"CLEANING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`

	// Countries lists the datasets to process, in processing order. The
	// order is load-bearing: per-country results and ranking tie-breaks
	// follow it.
	Countries []CountryConfig `yaml:"countries"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
}

// ColumnsConfig names the expected dataset columns. Column presence is
// optional per dataset; operations skip absent columns.
type ColumnsConfig struct {
	Timestamp     string   `yaml:"timestamp" envconfig:"TIMESTAMP"`
	Solar         []string `yaml:"solar" envconfig:"SOLAR"`
	Environmental []string `yaml:"environmental" envconfig:"ENVIRONMENTAL"`
	Maintenance   []string `yaml:"maintenance" envconfig:"MAINTENANCE"`
}

// CleaningConfig contains data cleaning parameters.
type CleaningConfig struct {
	ZThreshold     float64  `yaml:"z_threshold" envconfig:"Z_THRESHOLD"`
	Strategy       string   `yaml:"strategy" envconfig:"STRATEGY"`
	ImputeColumns  []string `yaml:"impute_columns" envconfig:"IMPUTE_COLUMNS"`
	OutlierColumns []string `yaml:"outlier_columns" envconfig:"OUTLIER_COLUMNS"`
}

// AnalysisConfig contains statistical analysis parameters.
type AnalysisConfig struct {
	TargetColumn           string  `yaml:"target_column" envconfig:"TARGET_COLUMN"`
	CorrelationThreshold   float64 `yaml:"correlation_threshold" envconfig:"CORRELATION_THRESHOLD"`
	SignificanceLevel      float64 `yaml:"significance_level" envconfig:"SIGNIFICANCE_LEVEL"`
	OperationalThreshold   float64 `yaml:"operational_threshold" envconfig:"OPERATIONAL_THRESHOLD"`
	HighPotentialThreshold float64 `yaml:"high_potential_threshold" envconfig:"HIGH_POTENTIAL_THRESHOLD"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// CountryConfig maps a country to its raw and cleaned dataset files.
type CountryConfig struct {
	Name        string `yaml:"name"`
	File        string `yaml:"file"`
	CleanedFile string `yaml:"cleaned_file"`
	Location    string `yaml:"location"`
}

// Default returns the configuration used when no file or environment
// overrides are present. Thresholds follow the measurement campaign
// conventions: GHI in W/m², operational hours above 50 W/m², high potential
// above 400 W/m².
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:    "data",
			OutputDir:  "outputs",
			ReportsDir: "reports",
		},
		Columns: ColumnsConfig{
			Timestamp:     "Timestamp",
			Solar:         []string{"GHI", "DNI", "DHI", "ModA", "ModB"},
			Environmental: []string{"Tamb", "RH", "WS", "WSgust", "BP"},
			Maintenance:   []string{"Cleaning", "Precipitation"},
		},
		Cleaning: CleaningConfig{
			ZThreshold:     3,
			Strategy:       "median",
			ImputeColumns:  []string{"GHI", "DNI", "DHI", "Tamb", "WS", "RH", "BP"},
			OutlierColumns: []string{"GHI", "DNI", "DHI", "ModA", "ModB", "WS", "WSgust", "Tamb"},
		},
		Analysis: AnalysisConfig{
			TargetColumn:           "GHI",
			CorrelationThreshold:   0.3,
			SignificanceLevel:      0.05,
			OperationalThreshold:   50,
			HighPotentialThreshold: 400,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Countries: []CountryConfig{
			{Name: "Benin", File: "benin-malanville.csv", CleanedFile: "benin_clean.csv", Location: "Malanville"},
			{Name: "Sierra_Leone", File: "sierra_leone.csv", CleanedFile: "sierra_leone_clean.csv", Location: "Sierra Leone"},
			{Name: "Togo", File: "togo.csv", CleanedFile: "togo_clean.csv", Location: "Togo"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, then
// SOLAR_-prefixed environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("SOLAR", cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Cleaning.ZThreshold <= 0 {
		return fmt.Errorf("z_threshold must be positive, got %v", c.Cleaning.ZThreshold)
	}
	switch c.Cleaning.Strategy {
	case "median", "mean":
	default:
		return fmt.Errorf("unknown imputation strategy %q (want median or mean)", c.Cleaning.Strategy)
	}
	if c.Analysis.SignificanceLevel <= 0 || c.Analysis.SignificanceLevel >= 1 {
		return fmt.Errorf("significance_level must be in (0,1), got %v", c.Analysis.SignificanceLevel)
	}
	if c.Analysis.CorrelationThreshold < 0 || c.Analysis.CorrelationThreshold > 1 {
		return fmt.Errorf("correlation_threshold must be in [0,1], got %v", c.Analysis.CorrelationThreshold)
	}
	if c.Analysis.HighPotentialThreshold < c.Analysis.OperationalThreshold {
		return fmt.Errorf("high_potential_threshold (%v) below operational_threshold (%v)",
			c.Analysis.HighPotentialThreshold, c.Analysis.OperationalThreshold)
	}
	if c.Columns.Timestamp == "" {
		return fmt.Errorf("timestamp column name must not be empty")
	}

	seen := make(map[string]bool, len(c.Countries))
	for _, country := range c.Countries {
		if country.Name == "" || country.File == "" {
			return fmt.Errorf("country entries require name and file, got %+v", country)
		}
		if seen[country.Name] {
			return fmt.Errorf("duplicate country %q", country.Name)
		}
		seen[country.Name] = true
	}
	return nil
}

// Country returns the configuration for the named country.
func (c *Config) Country(name string) (CountryConfig, bool) {
	for _, country := range c.Countries {
		if country.Name == name {
			return country, true
		}
	}
	return CountryConfig{}, false
}

// CountryNames returns all configured country names in processing order.
func (c *Config) CountryNames() []string {
	names := make([]string, len(c.Countries))
	for i, country := range c.Countries {
		names[i] = country.Name
	}
	return names
}

// RawPath returns the path to a country's raw dataset.
func (c *Config) RawPath(country CountryConfig) string {
	return filepath.Join(c.Paths.DataDir, country.File)
}

// CleanedPath returns the path a country's cleaned dataset is exported to.
// When no cleaned file name is configured one is derived from the country
// name.
func (c *Config) CleanedPath(country CountryConfig) string {
	name := country.CleanedFile
	if name == "" {
		name = strings.ToLower(country.Name) + "_clean.csv"
	}
	return filepath.Join(c.Paths.DataDir, name)
}

// EnsureDirectories creates the output and reports directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.ReportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
