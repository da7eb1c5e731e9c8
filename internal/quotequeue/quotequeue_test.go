package quotequeue

import (
	"testing"

	"github.com/arbitcore/arbitcore/internal/domain"
	"github.com/arbitcore/arbitcore/internal/latency"
	"github.com/arbitcore/arbitcore/internal/snapshot"
	"github.com/arbitcore/arbitcore/internal/timing"
)

func newTestDeps(t *testing.T) (*latency.Tracker, *timing.Calibrator) {
	t.Helper()
	cal := timing.NewCalibrator()
	return latency.New(cal, 4), cal
}

func TestLockFreePushDrainRoundTrip(t *testing.T) {
	tracker, cal := newTestDeps(t)
	q := NewLockFree(16, tracker, cal)

	quote := domain.Quote{Venue: "binance", RawSymbol: "BTCUSDT", BidPrice: 100, AskPrice: 100.1}
	if !q.Push(quote) {
		t.Fatal("push should succeed on an empty queue")
	}

	snap := snapshot.New()
	n := q.DrainAll(snap)
	if n != 1 {
		t.Fatalf("drained %d, want 1", n)
	}
	got, ok := snap.Get("binance", "BTCUSDT")
	if !ok || got != quote {
		t.Fatalf("got %+v, ok=%v, want %+v", got, ok, quote)
	}
}

func TestLockFreeReportsDrops(t *testing.T) {
	tracker, cal := newTestDeps(t)
	q := NewLockFree(2, tracker, cal)

	for i := 0; i < 2; i++ {
		q.Push(domain.Quote{Venue: "binance"})
	}
	if q.Push(domain.Quote{Venue: "binance"}) {
		t.Fatal("push into full queue should fail")
	}
	if q.DroppedCount() != 1 {
		t.Fatalf("dropped = %d, want 1", q.DroppedCount())
	}
}

func TestMutexQueueNeverDrops(t *testing.T) {
	tracker, cal := newTestDeps(t)
	q := NewMutex(tracker, cal)

	for i := 0; i < 1000; i++ {
		if !q.Push(domain.Quote{Venue: "coinbase"}) {
			t.Fatalf("push %d unexpectedly failed", i)
		}
	}
	if q.DroppedCount() != 0 {
		t.Fatalf("dropped = %d, want 0", q.DroppedCount())
	}
}

func TestPushRecordsLatencyPerVenue(t *testing.T) {
	tracker, cal := newTestDeps(t)
	q := NewLockFree(16, tracker, cal)

	q.Push(domain.Quote{Venue: "binance"})
	q.Push(domain.Quote{Venue: "coinbase"})

	if idx := tracker.IndexForVenue("binance"); idx != 0 {
		t.Fatalf("binance should already be registered at slot 0, got %d", idx)
	}
	if idx := tracker.IndexForVenue("coinbase"); idx != 1 {
		t.Fatalf("coinbase should already be registered at slot 1, got %d", idx)
	}
}

func TestDrainAllOnEmptyQueueReturnsZero(t *testing.T) {
	tracker, cal := newTestDeps(t)
	q := NewLockFree(8, tracker, cal)

	snap := snapshot.New()
	if n := q.DrainAll(snap); n != 0 {
		t.Fatalf("drained %d from empty queue, want 0", n)
	}
}
