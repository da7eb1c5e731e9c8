// Package affinity pins the calling goroutine's OS thread to a logical
// CPU, generalizing single-purpose ring-consumer pinning to any tagged
// goroutine in the pipeline. Tag priority and naming follow
// original_source/src/thread_affinity.hpp.
package affinity

import (
	"fmt"
	"log/slog"
	"runtime"
)

// Tag identifies a pinnable role. Lower values are higher priority and,
// all else equal, claim lower-numbered CPUs first.
type Tag int

const (
	TagDetectionEngine Tag = iota
	TagQuoteSourceBase      // TagQuoteSource(i) = TagQuoteSourceBase + i
	TagDashboard        = Tag(1 << 20) // always sorts last regardless of source count
)

// TagQuoteSource returns the tag for the i'th registered quote source.
func TagQuoteSource(i int) Tag {
	return TagQuoteSourceBase + Tag(i)
}

func (t Tag) String() string {
	switch {
	case t == TagDetectionEngine:
		return "detection-engine"
	case t == TagDashboard:
		return "dashboard"
	default:
		return fmt.Sprintf("quote-source-%d", t-TagQuoteSourceBase)
	}
}

// Pin attempts to restrict the calling goroutine's current OS thread to
// a single logical CPU chosen from tag. Pin does not lock the goroutine
// to that thread: callers call runtime.LockOSThread() themselves first,
// since the caller's lifecycle (when to UnlockOSThread) is theirs to own.
//
// Failure is never fatal: a denied or unsupported affinity call is
// logged at Warn via the given logger and otherwise ignored.
func Pin(tag Tag, log *slog.Logger) {
	cpu := int(tag) % runtime.NumCPU()
	if cpu < 0 {
		cpu = -cpu
	}
	if err := setAffinity(cpu); err != nil {
		log.Warn("affinity pin failed", slog.String("tag", tag.String()), slog.Int("cpu", cpu), slog.Any("err", err))
	}
}
