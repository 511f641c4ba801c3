package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputDir    = "ics_output"
	DefaultTimezone     = "UTC"
	DefaultAlertMinutes = 30
	DefaultLogLevel     = "info"
)

// CalDAVConfig describes an optional CalDAV collection that generated
// events are also uploaded to.
type CalDAVConfig struct {
	Endpoint     string `yaml:"endpoint" toml:"endpoint"`
	Username     string `yaml:"username" toml:"username"`
	Password     string `yaml:"password" toml:"password"`
	CalendarName string `yaml:"calendar" toml:"calendar"`
	CalendarPath string `yaml:"calendar_path" toml:"calendar_path"`
}

// Enabled reports whether publishing is configured.
func (c CalDAVConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Config is the effective configuration of a conversion run.
type Config struct {
	// OutputDir receives one .ics file per row.
	OutputDir string `yaml:"output" toml:"output"`

	// Timezone is the IANA name events are placed in (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" toml:"timezone"`

	// AlertMinutes is the travel alert lead time. Its sign is ignored.
	AlertMinutes int `yaml:"alert_minutes" toml:"alert_minutes"`

	// Sheet names the worksheet to read; empty means the first one.
	Sheet string `yaml:"sheet" toml:"sheet"`

	LogLevel string `yaml:"log_level" toml:"log_level"`

	DryRun bool `yaml:"dry_run" toml:"dry_run"`

	CalDAV CalDAVConfig `yaml:"caldav" toml:"caldav"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		OutputDir:    DefaultOutputDir,
		Timezone:     DefaultTimezone,
		AlertMinutes: DefaultAlertMinutes,
		LogLevel:     DefaultLogLevel,
	}
}

// Normalize fills blank fields with defaults.
func (c *Config) Normalize() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}
