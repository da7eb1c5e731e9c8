// Package config loads process configuration from a YAML file and
// layers environment-variable overrides on top, following the pack's
// layering convention: chycee-CryptoGo's gopkg.in/yaml.v3-driven
// Config/LoadConfig/overrideWithEnv shape for the file+override split,
// and r3e-network-neo-miniapps-platform's joho/godotenv +
// joeshaw/envdecode pairing for how the override layer itself is built
// (load a .env file into the process environment, then decode tagged
// env vars onto the struct) rather than chycee-CryptoGo's hand-written
// os.Getenv checks.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// QueueMode selects the backing implementation for internal/quotequeue.
type QueueMode string

const (
	QueueModeLockFree QueueMode = "lockfree"
	QueueModeMutex    QueueMode = "mutex"
)

// SourceKind selects which internal/sources adapter a configured source
// uses.
type SourceKind string

const (
	SourceKindSimulated SourceKind = "simulated"
	SourceKindWS        SourceKind = "ws"
)

// SourceConfig describes one configured quote source.
type SourceConfig struct {
	Venue string     `yaml:"venue"`
	Kind  SourceKind `yaml:"kind"`
	WSURL string     `yaml:"ws_url,omitempty"`
}

// Config is the top-level process configuration.
type Config struct {
	Queue struct {
		Mode     QueueMode `yaml:"mode"`
		Capacity int       `yaml:"capacity"`
	} `yaml:"queue"`

	Detect struct {
		MinProfitBps   float64 `yaml:"min_profit_bps"`
		TickIntervalMS int     `yaml:"tick_interval_ms"`
		MaxReports     int     `yaml:"max_reports"`
	} `yaml:"detect"`

	Affinity struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"affinity"`

	Dashboard struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"dashboard"`

	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`

	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`

	Sources []SourceConfig `yaml:"sources"`

	// envOverrides is populated by envdecode and merged into the struct
	// above after YAML unmarshal, rather than unmarshalled directly —
	// envdecode and yaml.v3 use different struct tags, so they decode
	// onto two distinct structs and this package reconciles them.
	envOverrides struct {
		LogLevel     string `env:"ARBITCORE_LOG_LEVEL"`
		JournalPath  string `env:"ARBITCORE_JOURNAL_PATH"`
		MinProfitBps string `env:"ARBITCORE_MIN_PROFIT_BPS"`
	}
}

// Default returns the documented defaults from the detection engine and
// queue components.
func Default() *Config {
	var c Config
	c.Queue.Mode = QueueModeLockFree
	c.Queue.Capacity = 4096
	c.Detect.MinProfitBps = 5.0
	c.Detect.TickIntervalMS = 100
	c.Detect.MaxReports = 0
	c.Affinity.Enabled = true
	c.Dashboard.Enabled = true
	c.Logging.Level = "info"
	c.Logging.JSON = false
	c.Journal.Path = "arbitcore.db"
	return &c
}

// Load reads path as YAML onto the documented defaults, loads a .env
// file from the working directory if present (godotenv.Load reports a
// missing file as an error, which Load ignores, since env overrides are
// optional), then applies
// ARBITCORE_-prefixed environment overrides via envdecode, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	_ = godotenv.Load() // optional; a missing .env is not fatal

	if err := envdecode.Decode(&cfg.envOverrides); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("config: decode env overrides: %w", err)
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if c.envOverrides.LogLevel != "" {
		c.Logging.Level = c.envOverrides.LogLevel
	}
	if c.envOverrides.JournalPath != "" {
		c.Journal.Path = c.envOverrides.JournalPath
	}
	if c.envOverrides.MinProfitBps != "" {
		if v, err := parseFloat(c.envOverrides.MinProfitBps); err == nil {
			c.Detect.MinProfitBps = v
		}
	}
}

// Validate checks the fields detect.Config and quotequeue construction
// depend on being in range, separately from detect.Config.validate so a
// bad config file is caught at load time rather than at engine
// construction.
func (c *Config) Validate() error {
	if c.Queue.Mode != QueueModeLockFree && c.Queue.Mode != QueueModeMutex {
		return fmt.Errorf("queue.mode must be %q or %q, got %q", QueueModeLockFree, QueueModeMutex, c.Queue.Mode)
	}
	if c.Queue.Capacity <= 0 || c.Queue.Capacity&(c.Queue.Capacity-1) != 0 {
		return fmt.Errorf("queue.capacity must be a positive power of two, got %d", c.Queue.Capacity)
	}
	if c.Detect.MinProfitBps < 0 {
		return fmt.Errorf("detect.min_profit_bps must be >= 0, got %v", c.Detect.MinProfitBps)
	}
	if c.Detect.TickIntervalMS <= 0 {
		return fmt.Errorf("detect.tick_interval_ms must be > 0, got %v", c.Detect.TickIntervalMS)
	}
	for i, s := range c.Sources {
		if s.Kind != SourceKindSimulated && s.Kind != SourceKindWS {
			return fmt.Errorf("sources[%d]: unknown kind %q", i, s.Kind)
		}
		if s.Kind == SourceKindWS && s.WSURL == "" {
			return fmt.Errorf("sources[%d]: ws_url required for kind=ws", i)
		}
	}
	return nil
}

// TickInterval converts the configured millisecond interval to a
// time.Duration for detect.Config.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Detect.TickIntervalMS) * time.Millisecond
}

func parseFloat(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(s, "%g", &v)
	return v, err
}
