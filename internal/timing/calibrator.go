// Package timing provides cycle-accurate timestamps and the one-time
// calibration that turns raw cycle counts into nanoseconds.
//
// Grounded on the original C++ TSCCalibrator: read cycles before and
// after a sleep of known wall-clock duration, divide to get
// cycles-per-second, then do all subsequent conversion in integer
// arithmetic. TSC() itself follows the same "read a raw counter, keep
// the hot path allocation-free" discipline used throughout this tree's
// lock-free data structures.
package timing

import (
	"sync"
	"time"
)

// calibrationSleep is how long the one-time calibration measurement waits
// against the wall clock. Longer windows calibrate more precisely but slow
// startup; 120ms keeps startup snappy while comfortably exceeding the
// "at least 100ms" floor used to calibrate.
const calibrationSleep = 120 * time.Millisecond

// Calibrator converts TSC() cycle deltas into nanoseconds. A Calibrator is
// safe to share across goroutines: Calibrate runs once, CyclesToNS only
// reads the resulting frequency.
type Calibrator struct {
	cyclesPerSecond uint64
	overheadNS      uint64
}

// NewCalibrator measures the cycle-counter frequency and the overhead of
// TSC() itself. It is constructor-injectable so tests never depend on the
// process-wide singleton below.
func NewCalibrator() *Calibrator {
	c := &Calibrator{}
	c.calibrate()
	c.overheadNS = c.measureOverhead()
	return c
}

func (c *Calibrator) calibrate() {
	startTSC := TSC()
	startWall := time.Now()
	time.Sleep(calibrationSleep)
	endTSC := TSC()
	elapsed := time.Since(startWall)

	cycles := endTSC - startTSC
	ns := uint64(elapsed.Nanoseconds())
	if ns == 0 {
		// Should not happen outside of a frozen clock, but keep CyclesToNS
		// well-defined rather than dividing by zero.
		c.cyclesPerSecond = 1_000_000_000
		return
	}
	c.cyclesPerSecond = cycles * 1_000_000_000 / ns
	if c.cyclesPerSecond == 0 {
		c.cyclesPerSecond = 1_000_000_000
	}
}

// measureOverhead is the mean of 1000 back-to-back TSC() reads,
// matching the rdtsc_overhead_ns definition from the original timing
// model.
func (c *Calibrator) measureOverhead() uint64 {
	const iterations = 1000
	var total uint64
	for i := 0; i < iterations; i++ {
		start := TSC()
		end := TSC()
		total += end - start
	}
	return c.CyclesToNS(total / iterations)
}

// CyclesToNS converts a cycle delta to nanoseconds using pure integer
// arithmetic; monotonic-non-decreasing for monotonic cycle inputs.
func (c *Calibrator) CyclesToNS(delta uint64) uint64 {
	return delta * 1_000_000_000 / c.cyclesPerSecond
}

// RDTSCOverheadNS returns the empirically measured self-timing overhead.
func (c *Calibrator) RDTSCOverheadNS() uint64 {
	return c.overheadNS
}

// CyclesPerSecond exposes the calibrated frequency, mostly for reports.
func (c *Calibrator) CyclesPerSecond() uint64 {
	return c.cyclesPerSecond
}

var (
	defaultOnce sync.Once
	defaultCal  *Calibrator
)

// Default returns the process-wide calibrator, lazily initialized on first
// use. Only the thin cmd/arbitcore wiring layer should call this — every
// other component takes a *Calibrator by constructor injection so tests
// never share calibration state.
func Default() *Calibrator {
	defaultOnce.Do(func() {
		defaultCal = NewCalibrator()
	})
	return defaultCal
}
