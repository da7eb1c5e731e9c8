// Package obslog wraps log/slog with the construction convention used
// throughout this module: a constructor that takes explicit dependencies
// for tests, plus a lazily-initialized process-wide Default() for the
// thin cmd/arbitcore entry layer. Grounded on chycee-CryptoGo's
// slog.Info/Warn/Error usage with structured attributes; this package
// only supplies the handler construction chycee-CryptoGo left inline in
// its main().
package obslog

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// New builds a structured logger writing to w at the given level, using
// a JSON handler when json is true and a text handler otherwise.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

var (
	defaultOnce sync.Once
	defaultLog  *slog.Logger
)

// Default returns the process-wide logger, a text handler at Info level
// writing to stderr, constructed on first use. Every cold-path component
// below cmd/arbitcore takes a *slog.Logger by constructor injection;
// only the thin main-entry wiring should reach for this.
func Default() *slog.Logger {
	defaultOnce.Do(func() {
		defaultLog = New(os.Stderr, slog.LevelInfo, false)
	})
	return defaultLog
}
