package dashboard

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/arbitcore/arbitcore/internal/domain"
	"github.com/arbitcore/arbitcore/internal/snapshot"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderPrintsEntriesAndOpportunities(t *testing.T) {
	var buf bytes.Buffer

	entries := func() []snapshot.Entry {
		return []snapshot.Entry{
			{Venue: "binance", RawSymbol: "BTCUSDT", Quote: domain.Quote{BidPrice: 100, AskPrice: 100.1}, Freshness: domain.Live},
			{Venue: "kraken", RawSymbol: "XBT/USD", Quote: domain.Quote{BidPrice: 99, AskPrice: 99.2}, Freshness: domain.Stale},
		}
	}
	opps := func() []domain.Opportunity {
		return []domain.Opportunity{
			{CanonicalSymbol: "BTC", BuyVenue: "binance", SellVenue: "kraken", ProfitBps: 12.5, MaxSize: 1.5},
		}
	}

	d := New(entries, opps, &buf, testLogger())
	d.render()

	out := buf.String()
	for _, want := range []string{"binance", "BTCUSDT", "kraken", "XBT/USD", "BTC", "12.50bps"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCapsRowsAtMaxRows(t *testing.T) {
	var buf bytes.Buffer

	many := make([]snapshot.Entry, defaultMaxRows+5)
	for i := range many {
		many[i] = snapshot.Entry{Venue: "v", RawSymbol: "s", Freshness: domain.Live}
	}

	d := New(
		func() []snapshot.Entry { return many },
		func() []domain.Opportunity { return nil },
		&buf, testLogger(),
	)
	d.render()

	if got := strings.Count(buf.String(), "bid="); got != defaultMaxRows {
		t.Fatalf("rendered %d snapshot rows, want %d (maxRows cap)", got, defaultMaxRows)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	var buf bytes.Buffer
	d := New(
		func() []snapshot.Entry { return nil },
		func() []domain.Opportunity { return nil },
		&buf, testLogger(),
	)
	d.SetRefreshInterval(2 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() { d.Run(ctx); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context deadline")
	}
	if buf.Len() == 0 {
		t.Fatal("expected at least one render before the deadline")
	}
}
