// Package quotequeue is the facade a quote-source adapter pushes into and
// the detection engine drains from. It wraps one of internal/ring's two
// Queue implementations, stamping every push with a cycle-accurate
// latency sample keyed by venue.
//
// Grounded on original_source/src/exchange_queue.hpp's
// MutexSharedQueue/MPSCSharedQueue pair: both capture an enqueue TSC
// before the push, capture occupancy at the same instant, push, then
// record (start, end, occupancy) against the venue's latency slot. This
// package generalizes the pair's shared surface into one interface
// backed by either of internal/ring's implementations, replacing the
// original's USE_MPSC_QUEUE compile-time switch with a choice of
// constructor.
package quotequeue

import (
	"github.com/arbitcore/arbitcore/internal/domain"
	"github.com/arbitcore/arbitcore/internal/latency"
	"github.com/arbitcore/arbitcore/internal/ring"
	"github.com/arbitcore/arbitcore/internal/snapshot"
	"github.com/arbitcore/arbitcore/internal/timing"
)

// Queue is the push/drain surface the rest of the pipeline depends on.
type Queue interface {
	Push(q domain.Quote) bool
	DrainAll(snap *snapshot.Snapshot) int
	DroppedCount() uint64
}

type queue struct {
	backing ring.Queue
	tracker *latency.Tracker
	cal     *timing.Calibrator
}

// NewLockFree wraps a lock-free MPSC ring of the given power-of-two
// capacity. This is the production path: many exchange-adapter
// goroutines push concurrently, the detection loop is the sole drainer.
func NewLockFree(capacity int, tracker *latency.Tracker, cal *timing.Calibrator) Queue {
	return &queue{backing: ring.NewMPSC(capacity), tracker: tracker, cal: cal}
}

// NewMutex wraps the never-drops mutex-backed FIFO. Used as the
// regression baseline and in tests where deterministic ordering across
// producers matters more than throughput.
func NewMutex(tracker *latency.Tracker, cal *timing.Calibrator) Queue {
	return &queue{backing: ring.NewMutex(), tracker: tracker, cal: cal}
}

// Push enqueues q, recording how long the push itself took under
// q.Venue's producer slot. Occupancy is sampled just before the push, mirroring
// the original's "size before push" capture.
func (q *queue) Push(quote domain.Quote) bool {
	idx := q.tracker.IndexForVenue(quote.Venue)
	occupancy := q.backing.Len()

	start := timing.TSC()
	ok := q.backing.TryPush(quote)
	end := timing.TSC()

	q.tracker.Record(idx, start, end, occupancy)
	return ok
}

// DrainAll empties the backing queue into snap and returns the count
// drained.
func (q *queue) DrainAll(snap *snapshot.Snapshot) int {
	return q.backing.DrainAll(snap.Put)
}

// DroppedCount reports how many pushes were rejected because the
// backing queue was full (always 0 for the mutex backing).
func (q *queue) DroppedCount() uint64 {
	return q.backing.DroppedCount()
}
