// Command arbitcore runs the cross-exchange BBO arbitrage detection
// core: quote sources, the detection engine, the diagnostics journal,
// and an optional terminal dashboard, wired together from a YAML
// config file. Follows a phased bootstrap-then-steady-state
// orchestration with a dedicated signal-handling phase, built around a
// single spf13/cobra `run` command instead of an untagged func main.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arbitcore/arbitcore/internal/affinity"
	"github.com/arbitcore/arbitcore/internal/config"
	"github.com/arbitcore/arbitcore/internal/dashboard"
	"github.com/arbitcore/arbitcore/internal/detect"
	"github.com/arbitcore/arbitcore/internal/domain"
	"github.com/arbitcore/arbitcore/internal/journal"
	"github.com/arbitcore/arbitcore/internal/latency"
	"github.com/arbitcore/arbitcore/internal/obslog"
	"github.com/arbitcore/arbitcore/internal/quotequeue"
	"github.com/arbitcore/arbitcore/internal/sources"
	"github.com/arbitcore/arbitcore/internal/timing"
)

var (
	flagConfigPath string
	flagMaxReports int
	flagQueueMode  string
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func newRootCommand() *cobra.Command {
	run := &cobra.Command{
		Use:   "arbitcore",
		Short: "cross-exchange BBO arbitrage detection core",
		RunE:  runArbitcore,
	}
	run.Flags().StringVar(&flagConfigPath, "config", "config.yaml", "path to the YAML config file")
	run.Flags().IntVar(&flagMaxReports, "max-reports", 0, "stop after N latency reports (0 = unlimited)")
	run.Flags().StringVar(&flagQueueMode, "queue-mode", "", "override queue.mode from config (lockfree|mutex)")
	return run
}

// configError maps to exit code 2 (bad configuration) and adapterError
// to exit code 1. runArbitcore never returns an adapterError: quote-source
// failures, including a failed connect of the first source, are logged
// as warnings on the feed's goroutine and do not end the process.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }

type adapterError struct{ err error }

func (e adapterError) Error() string { return e.err.Error() }

func exitCodeFor(err error) int {
	switch err.(type) {
	case configError:
		return 2
	case adapterError:
		return 1
	default:
		return 1
	}
}

func runArbitcore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return configError{err}
	}
	if flagMaxReports > 0 {
		cfg.Detect.MaxReports = flagMaxReports
	}
	if flagQueueMode != "" {
		cfg.Queue.Mode = config.QueueMode(flagQueueMode)
	}
	if err := cfg.Validate(); err != nil {
		return configError{err}
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.Logging.Level))
	log := obslog.New(os.Stdout, level, cfg.Logging.JSON)

	cal := timing.NewCalibrator()
	tracker := latency.New(cal, 16)

	var queue quotequeue.Queue
	if cfg.Queue.Mode == config.QueueModeMutex {
		queue = quotequeue.NewMutex(tracker, cal)
	} else {
		queue = quotequeue.NewLockFree(cfg.Queue.Capacity, tracker, cal)
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open diagnostics journal: %w", err)
	}
	defer j.Close()

	detectCfg := detect.DefaultConfig()
	detectCfg.MinProfitBps = cfg.Detect.MinProfitBps
	detectCfg.TickInterval = cfg.TickInterval()
	detectCfg.MaxReports = cfg.Detect.MaxReports
	detectCfg.PinAffinity = cfg.Affinity.Enabled

	engine, err := detect.New(detectCfg, queue, tracker, log)
	if err != nil {
		return fmt.Errorf("construct detection engine: %w", err)
	}
	engine.SetOpportunityCallback(func(o domain.Opportunity) {
		log.Info("opportunity",
			slog.String("symbol", o.CanonicalSymbol),
			slog.String("buy", o.BuyVenue),
			slog.String("sell", o.SellVenue),
			slog.Float64("profit_bps", o.ProfitBps),
		)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownComplete := make(chan struct{})
	engine.SetShutdownCallback(func() {
		appendFinalJournalRow(j, engine, log)
		close(shutdownComplete)
	})

	feeds := buildFeeds(cfg)
	for i, feed := range feeds {
		i, feed := i, feed
		go func() {
			if cfg.Affinity.Enabled {
				runtime.LockOSThread()
				affinity.Pin(affinity.TagQuoteSource(i), log)
			}
			runtimeErr := feed.Run(ctx, func(q domain.Quote) { engine.Ingest(q) })
			if runtimeErr != nil && ctx.Err() == nil {
				log.Warn("quote source exited", slog.Int("source", i), slog.Any("err", runtimeErr))
			}
		}()
	}

	if cfg.Dashboard.Enabled {
		dash := dashboard.New(engine.SnapshotEntries, engine.SnapshotOpportunities, os.Stdout, log)
		go dash.Run(ctx)
	}

	go journalReportLoop(ctx, engine, j, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	engine.Start(ctx)

	select {
	case <-sigCh:
		log.Info("received interrupt, shutting down")
		engine.Stop()
		appendFinalJournalRow(j, engine, log)
	case <-shutdownComplete:
		engine.Stop()
	}

	return nil
}

func buildFeeds(cfg *config.Config) []sources.Feed {
	feeds := make([]sources.Feed, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		switch s.Kind {
		case config.SourceKindWS:
			feeds = append(feeds, sources.NewWSFeed(sources.WSFeedConfig{Venue: s.Venue, URL: s.WSURL}))
		default:
			feeds = append(feeds, sources.NewSimulatedFeed(s.Venue, "BTCUSDT", 100.0, 4.0, 50*time.Millisecond))
		}
	}
	if len(feeds) == 0 {
		feeds = append(feeds, sources.NewSimulatedFeed("simulated", "BTCUSDT", 100.0, 4.0, 50*time.Millisecond))
	}
	return feeds
}

// journalReportLoop writes one diagnostics row on a fixed interval,
// polling rather than taking a direct dependency from internal/detect
// on internal/journal — keeping the diagnostics sink out of the hot
// core. Journal rows are written through internal/journal, not by the
// engine itself.
func journalReportLoop(ctx context.Context, engine *detect.Engine, j *journal.Journal, log *slog.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq++
			if err := j.Append(rowFor(engine, seq)); err != nil {
				log.Warn("journal append failed", slog.Any("err", err))
			}
		}
	}
}

func rowFor(engine *detect.Engine, seq uint64) journal.Row {
	opps := engine.SnapshotOpportunities()
	var best float64
	if len(opps) > 0 {
		best = opps[0].ProfitBps
	}
	return journal.Row{
		ReportSeq:        seq,
		WallMS:           time.Now().UnixMilli(),
		DroppedCount:     engine.DroppedCount(),
		OpportunityCount: engine.OpportunityCount(),
		TickCount:        engine.CalculationCount(),
		BestProfitBps:    best,
	}
}

func appendFinalJournalRow(j *journal.Journal, engine *detect.Engine, log *slog.Logger) {
	if err := j.Append(rowFor(engine, 0)); err != nil {
		log.Warn("final journal append failed", slog.Any("err", err))
	}
}
