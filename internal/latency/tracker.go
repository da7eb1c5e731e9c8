// Package latency tracks queue push latency per producer: count, sum,
// min, max, and a bounded sample ring for percentile reporting. Grounded
// on queue_latency_tracker.hpp's ExchangeStats, generalized from a
// fixed-size exchange array to a small venue-name registry capped at
// MaxProducers.
package latency

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/arbitcore/arbitcore/internal/timing"
)

// sampleBufferSize mirrors the original's SAMPLE_BUFFER_SIZE.
const sampleBufferSize = 10_000

// producerStats is one producer's running statistics. Padded implicitly
// by its own cache line via the slice layout in Tracker; fields are
// touched by many goroutines concurrently (any producer on that venue)
// plus the occasional reporting goroutine.
type producerStats struct {
	name  string
	count atomic.Uint64
	sumNS atomic.Uint64
	minNS atomic.Uint64
	maxNS atomic.Uint64

	sampleIdx   atomic.Uint64
	samples     [sampleBufferSize]uint64
	occupancies [sampleBufferSize]uint32
}

func newProducerStats(name string) *producerStats {
	p := &producerStats{name: name}
	p.minNS.Store(^uint64(0))
	return p
}

func (p *producerStats) record(latencyNS uint64, occupancy int) {
	p.count.Add(1)
	p.sumNS.Add(latencyNS)

	for {
		cur := p.minNS.Load()
		if latencyNS >= cur || p.minNS.CompareAndSwap(cur, latencyNS) {
			break
		}
	}
	for {
		cur := p.maxNS.Load()
		if latencyNS <= cur || p.maxNS.CompareAndSwap(cur, latencyNS) {
			break
		}
	}

	idx := (p.sampleIdx.Add(1) - 1) % sampleBufferSize
	p.samples[idx] = latencyNS
	p.occupancies[idx] = uint32(occupancy)
}

// Tracker is the registry of per-producer statistics. The zero value is
// not usable; construct with New.
type Tracker struct {
	cal *timing.Calibrator

	mu           sync.Mutex // guards registration only; hot path never locks
	index        map[string]int
	producers    []*producerStats
	maxProducers int
}

// New constructs a tracker that converts cycle deltas using cal.
func New(cal *timing.Calibrator, maxProducers int) *Tracker {
	if maxProducers <= 0 {
		maxProducers = 8
	}
	return &Tracker{
		cal:          cal,
		index:        make(map[string]int, maxProducers),
		maxProducers: maxProducers,
	}
}

// defaultTracker is the process-wide fallback, lazily built against
// timing.Default(), mirroring the singleton idiom used throughout
// internal/timing.
var (
	defaultTracker     *Tracker
	defaultTrackerOnce sync.Once
)

// Default returns the process-wide Tracker, constructing it on first use.
func Default() *Tracker {
	defaultTrackerOnce.Do(func() {
		defaultTracker = New(timing.Default(), 8)
	})
	return defaultTracker
}

// IndexForVenue returns the producer slot for venue, registering it if
// this is the first time it's seen. Once MaxProducers slots are taken,
// unregistered venues fall back to slot 0, matching
// QueueLatencyTracker::register_exchange's saturation behavior.
func (t *Tracker) IndexForVenue(venue string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx, ok := t.index[venue]; ok {
		return idx
	}
	if len(t.producers) >= t.maxProducers {
		return 0
	}
	idx := len(t.producers)
	t.producers = append(t.producers, newProducerStats(venue))
	t.index[venue] = idx
	return idx
}

// Record logs how long one queue push took, given as start/end cycle
// stamps, and the ring
// occupancy observed at push time, against the given producer slot.
// startTSC/endTSC of zero, or a non-positive delta, are silently
// dropped — they indicate a caller that didn't capture a cycle stamp.
func (t *Tracker) Record(producer int, startTSC, endTSC uint64, occupancy int) {
	if startTSC == 0 || endTSC == 0 || endTSC <= startTSC {
		return
	}
	t.mu.Lock()
	if producer < 0 || producer >= len(t.producers) {
		t.mu.Unlock()
		return
	}
	p := t.producers[producer]
	t.mu.Unlock()

	ns := t.cal.CyclesToNS(endTSC - startTSC)
	if overhead := t.cal.RDTSCOverheadNS(); ns > overhead {
		ns -= overhead
	} else {
		ns = 0
	}
	p.record(ns, occupancy)
}

type snapshot struct {
	name             string
	count            uint64
	meanNS           float64
	minNS, maxNS     uint64
	p50, p99         uint64
	histogram        [8]int
	meanOcc          float64
	minOcc, maxOcc   uint32
}

var histogramBoundsNS = [7]uint64{50, 100, 250, 500, 1000, 5000, 10000}

func bucketFor(ns uint64) int {
	for i, bound := range histogramBoundsNS {
		if ns < bound {
			return i
		}
	}
	return len(histogramBoundsNS)
}

func (p *producerStats) snapshot() snapshot {
	count := p.count.Load()
	s := snapshot{name: p.name, count: count}
	if count == 0 {
		return s
	}
	s.meanNS = float64(p.sumNS.Load()) / float64(count)
	s.minNS = p.minNS.Load()
	s.maxNS = p.maxNS.Load()

	n := int(p.sampleIdx.Load())
	if n > sampleBufferSize {
		n = sampleBufferSize
	}
	if n == 0 {
		return s
	}
	samples := make([]uint64, n)
	copy(samples, p.samples[:n])
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	s.p50 = percentile(samples, 50)
	s.p99 = percentile(samples, 99)
	for _, v := range samples {
		s.histogram[bucketFor(v)]++
	}

	var occSum uint64
	occMin, occMax := ^uint32(0), uint32(0)
	for i := 0; i < n; i++ {
		o := p.occupancies[i]
		occSum += uint64(o)
		if o < occMin {
			occMin = o
		}
		if o > occMax {
			occMax = o
		}
	}
	s.meanOcc = float64(occSum) / float64(n)
	s.minOcc, s.maxOcc = occMin, occMax
	return s
}

func percentile(sorted []uint64, pct int) uint64 {
	idx := pct * len(sorted) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// PrintReport writes a box-drawn latency report for every producer that
// has recorded at least one sample. Reporting never blocks a concurrent
// producer: it only takes atomic loads and a private scratch copy of the
// sample ring before sorting, so a report taken mid-write may see a
// slightly stale percentile — acceptable, not a bug.
func (t *Tracker) PrintReport(w io.Writer) {
	t.mu.Lock()
	producers := make([]*producerStats, len(t.producers))
	copy(producers, t.producers)
	t.mu.Unlock()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔════════════════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                                QUEUE PUSH LATENCY                                       ║")
	fmt.Fprintln(w, "╠════════════════════════════════════════════════════════════════════════════════════════╣")
	fmt.Fprintln(w, "║ Producer   │   Count   │    Mean    │   Median   │     Min    │     Max    │    P99   ║")
	fmt.Fprintln(w, "╠════════════════════════════════════════════════════════════════════════════════════════╣")

	for _, p := range producers {
		s := p.snapshot()
		if s.count == 0 {
			continue
		}
		fmt.Fprintf(w, "║ %-10s │ %9d │ %10s │ %10s │ %10s │ %10s │ %8s ║\n",
			s.name, s.count, formatNS(s.meanNS), formatNS(float64(s.p50)),
			formatNS(float64(s.minNS)), formatNS(float64(s.maxNS)), formatNS(float64(s.p99)))
	}
	fmt.Fprintln(w, "╚════════════════════════════════════════════════════════════════════════════════════════╝")

	for _, p := range producers {
		s := p.snapshot()
		if s.count == 0 {
			continue
		}
		printHistogram(w, s)
	}
}

func formatNS(ns float64) string {
	switch {
	case ns < 1000:
		return fmt.Sprintf("%4.0fns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%4.1fus", ns/1000)
	default:
		return fmt.Sprintf("%4.1fms", ns/1_000_000)
	}
}

var histogramLabels = [8]string{
	"<50ns", "50-100ns", "100-250ns", "250-500ns",
	"0.5-1us", "1-5us", "5-10us", ">10us",
}

func printHistogram(w io.Writer, s snapshot) {
	fmt.Fprintf(w, "  %s occupancy(mean/min/max)=%.1f/%d/%d\n", s.name, s.meanOcc, s.minOcc, s.maxOcc)
	max := 0
	for _, c := range s.histogram {
		if c > max {
			max = c
		}
	}
	if max == 0 {
		return
	}
	for i, c := range s.histogram {
		barLen := 0
		if max > 0 {
			barLen = c * 40 / max
		}
		fmt.Fprintf(w, "    %-10s [%-40s] %d\n", histogramLabels[i], repeat('#', barLen), c)
	}
}

func repeat(ch byte, n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ch
	}
	return string(b)
}
