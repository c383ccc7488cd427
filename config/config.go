// Package config loads the cbx configuration from a YAML file and CBX_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/fueleu/compliance/route"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig      = "CBX_CONFIG"
	EnvLedgerFile  = "CBX_LEDGER_FILE"
	EnvDatabaseURL = "CBX_DATABASE_URL"
	EnvYear        = "CBX_YEAR"
	EnvTarget      = "CBX_TARGET"
	EnvLogLevel    = "CBX_LOG_LEVEL"
	EnvMetricsFile = "CBX_METRICS_FILE"
	EnvStyle       = "CBX_STYLE"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "cbx.yaml"

// Config is the cbx configuration.
type Config struct {
	LedgerFile      string  `yaml:"ledger_file"`      // JSONL journal
	DatabaseURL     string  `yaml:"database_url"`     // when set, the journal lives in Postgres instead
	Year            int     `yaml:"year"`             // reported period, zero for each ship's current one
	TargetIntensity float64 `yaml:"target_intensity"` // gCO₂e/MJ
	LogLevel        string  `yaml:"log_level"`
	MetricsFile     string  `yaml:"metrics_file"` // Prometheus textfile written after each command
	Style           string  `yaml:"style"`        // glamour style for terminal output
	RouteSelector   string  `yaml:"route_selector"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LedgerFile:      "compliance.jsonl",
		TargetIntensity: route.Target2025,
		LogLevel:        "warn",
		Style:           "auto",
		RouteSelector:   route.DefaultSelector,
	}
}

// Load reads the configuration. Values come, by increasing priority, from
// the defaults, the YAML file and the environment. An empty path reads
// $CBX_CONFIG, or cbx.yaml; a missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = getenvDefault(EnvConfig, DefaultFile)
		explicit = os.Getenv(EnvConfig) != ""
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("config: %w", err)
	}

	cfg.LedgerFile = getenvDefault(EnvLedgerFile, cfg.LedgerFile)
	cfg.DatabaseURL = getenvDefault(EnvDatabaseURL, cfg.DatabaseURL)
	cfg.LogLevel = getenvDefault(EnvLogLevel, cfg.LogLevel)
	cfg.MetricsFile = getenvDefault(EnvMetricsFile, cfg.MetricsFile)
	cfg.Style = getenvDefault(EnvStyle, cfg.Style)
	if cfg.Year, err = getenvIntDefault(EnvYear, cfg.Year); err != nil {
		return cfg, err
	}
	if cfg.TargetIntensity, err = getenvFloatDefault(EnvTarget, cfg.TargetIntensity); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.LedgerFile == "" && c.DatabaseURL == "" {
		return errors.New("config: ledger file or database url required")
	}
	if c.Year < 0 {
		return fmt.Errorf("config: invalid year %d", c.Year)
	}
	if c.TargetIntensity <= 0 {
		return fmt.Errorf("config: target intensity must be positive, got %v", c.TargetIntensity)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}

func getenvFloatDefault(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}
