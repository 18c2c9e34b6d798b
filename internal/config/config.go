package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WebConfig holds the web server settings.
type WebConfig struct {
	Addr string `yaml:"addr"` // listen address, e.g. ":8080"
}

// DefaultsConfig holds the default form/calculation inputs.
type DefaultsConfig struct {
	Camera           string  `yaml:"camera"`            // catalog key; empty = first catalog entry
	FocalLengthMm    float64 `yaml:"focal_length_mm"`   // lens focal length in mm
	Unit             string  `yaml:"unit"`              // unit of the object measurements: mm, cm, in, ft
	ObjectWidth      float64 `yaml:"object_width"`      // object width in Unit
	ObjectHeight     float64 `yaml:"object_height"`     // object height in Unit
	PPI              float64 `yaml:"ppi"`               // target output resolution
	RadiusMultiplier float64 `yaml:"radius_multiplier"` // light coverage multiplier
}

// Config aggregates all application configuration.
type Config struct {
	CatalogPath string         `yaml:"catalog_path,omitempty"` // optional; empty = built-in catalog
	LogMode     string         `yaml:"log_mode"`               // "development" or "production"
	TraceLevel  int            `yaml:"trace_level"`            // 0=off, 1=results, 2=calculation details
	Web         WebConfig      `yaml:"web"`
	Defaults    DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation; zero values fall back to defaults.
	if cfg.Defaults.FocalLengthMm < 0 || math.IsNaN(cfg.Defaults.FocalLengthMm) {
		return nil, fmt.Errorf("defaults.focal_length_mm must be > 0, got %g", cfg.Defaults.FocalLengthMm)
	}
	if cfg.Defaults.FocalLengthMm == 0 {
		cfg.Defaults.FocalLengthMm = 110 // common copy-stand lens
	}
	if cfg.Defaults.PPI < 0 {
		return nil, fmt.Errorf("defaults.ppi must be > 0, got %g", cfg.Defaults.PPI)
	}
	if cfg.Defaults.PPI == 0 {
		cfg.Defaults.PPI = 300
	}
	if cfg.Defaults.RadiusMultiplier < 0 {
		return nil, fmt.Errorf("defaults.radius_multiplier must be > 0, got %g", cfg.Defaults.RadiusMultiplier)
	}
	if cfg.Defaults.RadiusMultiplier == 0 {
		cfg.Defaults.RadiusMultiplier = 1.2
	}
	if cfg.Defaults.ObjectWidth < 0 || cfg.Defaults.ObjectHeight < 0 {
		return nil, fmt.Errorf("defaults.object_width/object_height must be > 0, got %g x %g",
			cfg.Defaults.ObjectWidth, cfg.Defaults.ObjectHeight)
	}
	if cfg.Defaults.ObjectWidth == 0 {
		cfg.Defaults.ObjectWidth = 10
	}
	if cfg.Defaults.ObjectHeight == 0 {
		cfg.Defaults.ObjectHeight = 8
	}
	if cfg.Defaults.Unit == "" {
		cfg.Defaults.Unit = "in"
	}
	switch cfg.LogMode {
	case "":
		cfg.LogMode = "development"
	case "development", "production":
	default:
		return nil, fmt.Errorf("log_mode must be \"development\" or \"production\", got %q", cfg.LogMode)
	}
	if cfg.TraceLevel < 0 || cfg.TraceLevel > 2 {
		return nil, fmt.Errorf("trace_level must be 0-2, got %d", cfg.TraceLevel)
	}
	if cfg.Web.Addr == "" {
		cfg.Web.Addr = ":8080"
	}

	return &cfg, nil
}

// ValidateConfigPath checks that the path points to a .yaml file inside
// a configs/ directory and does not traverse outside it.
func ValidateConfigPath(path string) error {
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have .yaml extension, got %q", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config file must live in a configs/ directory, got %q", path)
	}
	if strings.Contains(filepath.ToSlash(path), "../") {
		return fmt.Errorf("config path must not traverse directories, got %q", path)
	}
	return nil
}
