// Package config loads registration settings from a JSON, TOML or YAML file.
//
// Every field is a pointer so a partial file only overrides what it names;
// the Get* methods fall back to the built-in defaults for everything else.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/banshee-data/scanalign/internal/fsutil"
	"github.com/banshee-data/scanalign/internal/registration"
)

// DefaultConfigPath is the path to the checked-in defaults file.
const DefaultConfigPath = "config/scanalign.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Defaults used when a field is unset.
const (
	DefaultWorkers       = 1
	DefaultWatchDebounce = 500 * time.Millisecond
	DefaultPlotWidthCm   = 16.0
	DefaultLogLevel      = "info"
)

// Config is the root configuration for a registration run.
type Config struct {
	// Registration params
	MinOverlap *int `json:"min_overlap,omitempty" toml:"min_overlap,omitempty" yaml:"min_overlap,omitempty"`
	Workers    *int `json:"workers,omitempty" toml:"workers,omitempty" yaml:"workers,omitempty"`

	// Watch mode
	WatchDebounce *string `json:"watch_debounce,omitempty" toml:"watch_debounce,omitempty" yaml:"watch_debounce,omitempty"` // duration string like "500ms"

	// Outputs
	PlotWidthCm *float64 `json:"plot_width_cm,omitempty" toml:"plot_width_cm,omitempty" yaml:"plot_width_cm,omitempty"`
	DBPath      *string  `json:"db_path,omitempty" toml:"db_path,omitempty" yaml:"db_path,omitempty"`

	// Logging
	LogLevel *string `json:"log_level,omitempty" toml:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogJSON  *bool   `json:"log_json,omitempty" toml:"log_json,omitempty" yaml:"log_json,omitempty"`
}

// Load reads a config file, choosing the decoder from its extension
// (.json, .toml, .yaml or .yml). Unknown keys are rejected.
func Load(fsys fsutil.FileSystem, path string) (*Config, error) {
	cleanPath := filepath.Clean(path)

	data, err := fsutil.ReadFileLimit(fsys, cleanPath, maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(cleanPath)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); errors.Is(err, io.EOF) {
			err = nil // empty document
		}
	default:
		return nil, fmt.Errorf("config file must be .json, .toml, .yaml or .yml, got %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.MinOverlap != nil && *c.MinOverlap < 1 {
		return fmt.Errorf("min_overlap must be at least 1, got %d", *c.MinOverlap)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	if c.WatchDebounce != nil && *c.WatchDebounce != "" {
		d, err := time.ParseDuration(*c.WatchDebounce)
		if err != nil {
			return fmt.Errorf("invalid watch_debounce '%s': %w", *c.WatchDebounce, err)
		}
		if d < 0 {
			return fmt.Errorf("watch_debounce must be non-negative, got %s", d)
		}
	}
	if c.PlotWidthCm != nil && *c.PlotWidthCm <= 0 {
		return fmt.Errorf("plot_width_cm must be positive, got %f", *c.PlotWidthCm)
	}
	return nil
}

// GetMinOverlap returns the min_overlap value or the default.
func (c *Config) GetMinOverlap() int {
	if c.MinOverlap == nil {
		return registration.DefaultMinOverlap
	}
	return *c.MinOverlap
}

// GetWorkers returns the workers value or the default.
func (c *Config) GetWorkers() int {
	if c.Workers == nil {
		return DefaultWorkers
	}
	return *c.Workers
}

// GetWatchDebounce parses and returns the WatchDebounce as a time.Duration.
func (c *Config) GetWatchDebounce() time.Duration {
	if c.WatchDebounce == nil || *c.WatchDebounce == "" {
		return DefaultWatchDebounce
	}
	d, err := time.ParseDuration(*c.WatchDebounce)
	if err != nil {
		return DefaultWatchDebounce // default on parse error
	}
	return d
}

// GetPlotWidthCm returns the plot_width_cm value or the default.
func (c *Config) GetPlotWidthCm() float64 {
	if c.PlotWidthCm == nil {
		return DefaultPlotWidthCm
	}
	return *c.PlotWidthCm
}

// GetDBPath returns the db_path value; empty disables run persistence.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetLogLevel returns the log_level value or the default.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return DefaultLogLevel
	}
	return *c.LogLevel
}

// GetLogJSON returns the log_json value or the default.
func (c *Config) GetLogJSON() bool {
	if c.LogJSON == nil {
		return false
	}
	return *c.LogJSON
}

// EngineConfig returns the registration engine parameters.
func (c *Config) EngineConfig() registration.Config {
	return registration.Config{
		MinOverlap: c.GetMinOverlap(),
		Workers:    c.GetWorkers(),
	}
}
