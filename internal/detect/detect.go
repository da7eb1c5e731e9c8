// Package detect implements the cross-exchange BBO arbitrage detection
// loop: drain the quote queue, bucket live quotes by canonical symbol,
// pairwise-compare bid/ask across venues, and publish profitable,
// freshness-gated edges.
//
// Grounded on original_source/src/arbitrage_engine.hpp/.cpp's
// ArbitrageEngine (start/stop lifecycle, calculation_loop, the
// set_min_profit_bps/set_calculation_interval/set_max_reports/
// set_shutdown_callback configuration surface) and on a
// pinned-goroutine start/stop idiom for translating a joinable
// std::thread into a context-cancelled goroutine joined via
// sync.WaitGroup.
package detect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arbitcore/arbitcore/internal/affinity"
	"github.com/arbitcore/arbitcore/internal/domain"
	"github.com/arbitcore/arbitcore/internal/latency"
	"github.com/arbitcore/arbitcore/internal/oppbuf"
	"github.com/arbitcore/arbitcore/internal/quotequeue"
	"github.com/arbitcore/arbitcore/internal/snapshot"
	"github.com/arbitcore/arbitcore/internal/symbol"
)

// maxPairAgeDeltaMS rejects a candidate pair whose producer timestamps
// disagree by more than this.
const maxPairAgeDeltaMS = 500

// reportInterval is how often a latency report is triggered from inside
// the detection tick, matching the original's 10-second cadence.
const reportInterval = 10 * time.Second

// Config holds the engine's tunable thresholds. Zero-value Config is not
// valid; use DefaultConfig and override fields as needed.
type Config struct {
	MinProfitBps float64
	TickInterval time.Duration
	MaxReports   int // 0 = unlimited
	PinAffinity  bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MinProfitBps: 5.0,
		TickInterval: 100 * time.Millisecond,
		MaxReports:   0,
		PinAffinity:  true,
	}
}

func (c Config) validate() error {
	if c.MinProfitBps < 0 {
		return fmt.Errorf("detect: MinProfitBps must be >= 0, got %v", c.MinProfitBps)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("detect: TickInterval must be > 0, got %v", c.TickInterval)
	}
	return nil
}

// Engine is the detection loop. The zero value is not usable; construct
// with New.
type Engine struct {
	cfg     Config
	queue   quotequeue.Queue
	tracker *latency.Tracker
	snap    *snapshot.Snapshot
	opps    *oppbuf.Buffer
	entries atomic.Pointer[[]snapshot.Entry]
	log     *slog.Logger
	report  io.Writer

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	calcCount atomic.Uint64
	oppCount  atomic.Uint64
	reportSeq atomic.Uint64

	cbMu         sync.Mutex
	oppCB        func(domain.Opportunity)
	shutdown     func()
	shutdownOnce sync.Once
}

// New constructs an Engine, returning an error if cfg is out of range.
func New(cfg Config, queue quotequeue.Queue, tracker *latency.Tracker, log *slog.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		queue:   queue,
		tracker: tracker,
		snap:    snapshot.New(),
		opps:    oppbuf.New(),
		log:     log,
		report:  os.Stdout,
	}
	empty := []snapshot.Entry{}
	e.entries.Store(&empty)
	return e, nil
}

// SetReportWriter redirects where PrintReport output from periodic
// latency reports is written. Defaults to os.Stdout; tests typically
// redirect this to a buffer.
func (e *Engine) SetReportWriter(w io.Writer) {
	e.report = w
}

// SetOpportunityCallback installs the callback invoked for every
// detected opportunity. Re-registration replaces the prior callback;
// there is exactly one slot.
func (e *Engine) SetOpportunityCallback(cb func(domain.Opportunity)) {
	e.cbMu.Lock()
	e.oppCB = cb
	e.cbMu.Unlock()
}

// SetShutdownCallback installs the callback invoked exactly once when
// MaxReports is reached.
func (e *Engine) SetShutdownCallback(cb func()) {
	e.cbMu.Lock()
	e.shutdown = cb
	e.cbMu.Unlock()
}

// Ingest accepts one quote update from a source adapter and forwards it
// to the queue facade. Adapters call this once per BBO update; it never
// blocks past the queue's own push latency.
func (e *Engine) Ingest(q domain.Quote) bool {
	return e.queue.Push(q)
}

// SnapshotOpportunities returns the most recently published opportunity
// slice. Callers must not mutate the returned slice.
func (e *Engine) SnapshotOpportunities() []domain.Opportunity {
	return e.opps.Snapshot()
}

// SnapshotEntries returns the market snapshot entries as of the last
// tick, newest producer timestamp (WallMS) first. This is the only
// concurrency-safe way to read the market snapshot from outside the
// detection goroutine — internal/dashboard uses it exclusively rather
// than touching internal/snapshot.Snapshot directly, since that type
// carries no synchronization of its own.
func (e *Engine) SnapshotEntries() []snapshot.Entry {
	return *e.entries.Load()
}

// CalculationCount returns how many ticks have run.
func (e *Engine) CalculationCount() uint64 { return e.calcCount.Load() }

// OpportunityCount returns how many opportunities have been detected in
// total across the engine's lifetime.
func (e *Engine) OpportunityCount() uint64 { return e.oppCount.Load() }

// DroppedCount returns how many inbound quotes the backing queue has
// rejected because it was full, across the engine's lifetime.
func (e *Engine) DroppedCount() uint64 { return e.queue.DroppedCount() }

// Start spawns the detection goroutine. A second call while already
// running is a no-op.
func (e *Engine) Start(ctx context.Context) {
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(runCtx)
	}()
}

// Stop cancels the engine's context and blocks until the detection
// goroutine has fully exited.
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

func (e *Engine) run(ctx context.Context) {
	if e.cfg.PinAffinity {
		runtime.LockOSThread()
		affinity.Pin(affinity.TagDetectionEngine, e.log)
	}

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	lastReport := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick()

			if time.Since(lastReport) >= reportInterval {
				lastReport = time.Now()
				seq := e.reportSeq.Add(1)
				e.log.Info("latency report", slog.Uint64("sequence", seq))
				e.tracker.PrintReport(e.report)

				if e.cfg.MaxReports > 0 && int(seq) >= e.cfg.MaxReports {
					e.running.Store(false)
					e.cbMu.Lock()
					shutdown := e.shutdown
					e.cbMu.Unlock()
					e.shutdownOnce.Do(func() {
						if shutdown != nil {
							shutdown()
						}
					})
					return
				}
			}
		}
	}
}

func (e *Engine) tick() {
	e.tickAt(time.Now().UnixMilli())
}

// tickAt runs one detection pass using nowMS as the current time, so
// tests can drive deterministic freshness/age-delta scenarios without
// wall-clock flakiness.
func (e *Engine) tickAt(nowMS int64) {
	e.calcCount.Add(1)
	e.queue.DrainAll(e.snap)

	buckets := make(map[string][]domain.Quote)
	e.snap.All(func(q domain.Quote) {
		switch q.FreshnessAt(nowMS) {
		case domain.Live, domain.Slow:
			canon := symbol.Normalize(q.RawSymbol)
			buckets[canon] = append(buckets[canon], q)
		}
	})

	var opps []domain.Opportunity
	for canon, quotes := range buckets {
		if len(quotes) < 2 {
			continue
		}
		for i := 0; i < len(quotes); i++ {
			for j := i + 1; j < len(quotes); j++ {
				q1, q2 := quotes[i], quotes[j]
				if !q1.Tradeable() || !q2.Tradeable() {
					continue
				}

				age1, age2 := q1.AgeMS(nowMS), q2.AgeMS(nowMS)
				delta := age1 - age2
				if delta < 0 {
					delta = -delta
				}
				if delta > maxPairAgeDeltaMS {
					continue
				}

				if opp, ok := e.evaluate(canon, q1, q2, nowMS); ok {
					opps = append(opps, opp)
					e.emit(opp)
				}
				if opp, ok := e.evaluate(canon, q2, q1, nowMS); ok {
					opps = append(opps, opp)
					e.emit(opp)
				}
			}
		}
	}

	sort.Slice(opps, func(i, j int) bool { return opps[i].ProfitBps > opps[j].ProfitBps })
	e.opps.Publish(opps)

	entries := e.snap.Entries(nowMS)
	e.entries.Store(&entries)
}

// evaluate checks the buy/sell direction buy=a,sell=b: is b's bid above
// a's ask by at least MinProfitBps?
func (e *Engine) evaluate(canon string, a, b domain.Quote, nowMS int64) (domain.Opportunity, bool) {
	if b.BidPrice <= a.AskPrice {
		return domain.Opportunity{}, false
	}
	profitBps := (b.BidPrice - a.AskPrice) / a.AskPrice * 10000.0
	if profitBps < e.cfg.MinProfitBps {
		return domain.Opportunity{}, false
	}
	maxSize := a.AskSize
	if b.BidSize < maxSize {
		maxSize = b.BidSize
	}
	return domain.Opportunity{
		CanonicalSymbol: canon,
		BuyVenue:        a.Venue,
		SellVenue:       b.Venue,
		BuyPrice:        a.AskPrice,
		SellPrice:       b.BidPrice,
		ProfitBps:       profitBps,
		MaxSize:         maxSize,
		WallMS:          nowMS,
	}, true
}

func (e *Engine) emit(opp domain.Opportunity) {
	e.oppCount.Add(1)

	e.cbMu.Lock()
	cb := e.oppCB
	e.cbMu.Unlock()
	if cb == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("opportunity callback panicked", slog.Any("recovered", r))
		}
	}()
	cb(opp)
}
