// Package dashboard renders a refreshing terminal view of the market
// snapshot and the current opportunity buffer. It is a read-only
// reader: it never touches the detection engine's internals, only the
// two accessor closures handed to it at construction.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/fatih/color"

	"github.com/arbitcore/arbitcore/internal/affinity"
	"github.com/arbitcore/arbitcore/internal/domain"
	"github.com/arbitcore/arbitcore/internal/snapshot"
)

// defaultRefreshInterval is the documented default refresh cadence.
const defaultRefreshInterval = 500 * time.Millisecond

// defaultMaxRows caps how many snapshot entries are printed per
// refresh, keeping the table readable on a typical terminal.
const defaultMaxRows = 20

var (
	liveColor   = color.New(color.FgGreen)
	slowColor   = color.New(color.FgYellow)
	staleColor  = color.New(color.FgRed)
	profitColor = color.New(color.FgCyan, color.Bold)
)

// Dashboard polls its two accessors on its own ticker and prints a
// refreshed table to its writer. It never mutates what the accessors
// return.
type Dashboard struct {
	entries  func() []snapshot.Entry
	opps     func() []domain.Opportunity
	out      io.Writer
	log      *slog.Logger
	interval time.Duration
	maxRows  int
}

// New constructs a Dashboard. entries and opps are read-only accessors
// — typically detect.Engine.SnapshotEntries and
// detect.Engine.SnapshotOpportunities — never internal engine state
// directly.
func New(entries func() []snapshot.Entry, opps func() []domain.Opportunity, out io.Writer, log *slog.Logger) *Dashboard {
	return &Dashboard{
		entries:  entries,
		opps:     opps,
		out:      out,
		log:      log,
		interval: defaultRefreshInterval,
		maxRows:  defaultMaxRows,
	}
}

// SetRefreshInterval overrides the default 500ms refresh cadence.
func (d *Dashboard) SetRefreshInterval(interval time.Duration) {
	if interval > 0 {
		d.interval = interval
	}
}

// Run pins the calling goroutine to TagDashboard (after
// runtime.LockOSThread, matching the detection engine's pinning
// discipline) and renders on every tick until ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context) {
	runtime.LockOSThread()
	affinity.Pin(affinity.TagDashboard, d.log)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.render()
		}
	}
}

func (d *Dashboard) render() {
	entries := d.entries()
	if len(entries) > d.maxRows {
		entries = entries[:d.maxRows]
	}

	fmt.Fprintln(d.out, "┌─ market snapshot ──────────────────────────────────────────────┐")
	for _, e := range entries {
		fmt.Fprintf(d.out, "│ %-10s %-12s bid=%-10.4f ask=%-10.4f %s\n",
			e.Venue, e.RawSymbol, e.Quote.BidPrice, e.Quote.AskPrice, colorFreshness(e.Freshness))
	}
	fmt.Fprintln(d.out, "└────────────────────────────────────────────────────────────────┘")

	opps := d.opps()
	fmt.Fprintln(d.out, "┌─ opportunities ────────────────────────────────────────────────┐")
	for _, o := range opps {
		fmt.Fprintf(d.out, "│ %-10s buy=%-8s sell=%-8s %s size=%.4f\n",
			o.CanonicalSymbol, o.BuyVenue, o.SellVenue, colorProfit(o.ProfitBps), o.MaxSize)
	}
	fmt.Fprintln(d.out, "└────────────────────────────────────────────────────────────────┘")
}

func colorFreshness(f domain.Freshness) string {
	switch f {
	case domain.Live:
		return liveColor.Sprint(f.String())
	case domain.Slow:
		return slowColor.Sprint(f.String())
	default:
		return staleColor.Sprint(f.String())
	}
}

func colorProfit(bps float64) string {
	return profitColor.Sprintf("%.2fbps", bps)
}
