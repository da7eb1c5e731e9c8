package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesYAMLOverDefaults(t *testing.T) {
	path := writeTempConfig(t, `
queue:
  mode: mutex
  capacity: 1024
detect:
  min_profit_bps: 7.5
  tick_interval_ms: 250
  max_reports: 3
sources:
  - venue: binance
    kind: simulated
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Queue.Mode != QueueModeMutex || cfg.Queue.Capacity != 1024 {
		t.Fatalf("queue section not applied: %+v", cfg.Queue)
	}
	if cfg.Detect.MinProfitBps != 7.5 || cfg.Detect.MaxReports != 3 {
		t.Fatalf("detect section not applied: %+v", cfg.Detect)
	}
	if cfg.TickInterval().Milliseconds() != 250 {
		t.Fatalf("TickInterval() = %v, want 250ms", cfg.TickInterval())
	}
	if cfg.Logging.Level != "info" { // untouched by file, should retain default
		t.Fatalf("logging.level = %q, want default %q", cfg.Logging.Level, "info")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadRejectsInvalidQueueMode(t *testing.T) {
	path := writeTempConfig(t, "queue:\n  mode: bogus\n  capacity: 16\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown queue mode")
	}
}

func TestLoadRejectsNonPowerOfTwoCapacity(t *testing.T) {
	path := writeTempConfig(t, "queue:\n  mode: lockfree\n  capacity: 100\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for non-power-of-two capacity")
	}
}

func TestLoadRejectsWSSourceWithoutURL(t *testing.T) {
	path := writeTempConfig(t, `
queue:
  mode: lockfree
  capacity: 16
sources:
  - venue: binance
    kind: ws
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for ws source missing ws_url")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() failed its own validation: %v", err)
	}
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	path := writeTempConfig(t, "queue:\n  mode: lockfree\n  capacity: 16\nlogging:\n  level: warn\n")

	t.Setenv("ARBITCORE_LOG_LEVEL", "debug")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging.level = %q, want env override %q", cfg.Logging.Level, "debug")
	}
}
