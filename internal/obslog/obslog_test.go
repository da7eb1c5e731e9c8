package obslog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTextHandlerWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, false)
	log.Info("hello", slog.String("venue", "binance"))

	if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "binance") {
		t.Fatalf("text log missing expected content: %s", buf.String())
	}
}

func TestNewJSONHandlerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, true)
	log.Info("hello")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected JSON output, got: %s", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn, false)
	log.Info("should be filtered")
	if buf.Len() != 0 {
		t.Fatalf("info log should be suppressed below warn level, got: %s", buf.String())
	}
	log.Warn("should appear")
	if buf.Len() == 0 {
		t.Fatal("warn log should have been written")
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default() should return the same logger instance")
	}
}
