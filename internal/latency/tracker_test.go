package latency

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arbitcore/arbitcore/internal/timing"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	return New(timing.NewCalibrator(), 4)
}

func TestIndexForVenueRegistersOnce(t *testing.T) {
	tr := newTestTracker(t)
	a := tr.IndexForVenue("binance")
	b := tr.IndexForVenue("binance")
	if a != b {
		t.Fatalf("same venue returned different slots: %d vs %d", a, b)
	}
	c := tr.IndexForVenue("coinbase")
	if c == a {
		t.Fatalf("distinct venues collided on slot %d", a)
	}
}

func TestIndexForVenueSaturatesToZero(t *testing.T) {
	tr := New(timing.NewCalibrator(), 2)
	first := tr.IndexForVenue("a")
	tr.IndexForVenue("b")
	overflow := tr.IndexForVenue("c")
	if overflow != first {
		t.Fatalf("overflow venue should fall back to slot 0, got %d", overflow)
	}
}

func TestRecordIgnoresInvalidStamps(t *testing.T) {
	tr := newTestTracker(t)
	idx := tr.IndexForVenue("binance")
	tr.Record(idx, 0, 100, 1)
	tr.Record(idx, 100, 0, 1)
	tr.Record(idx, 200, 100, 1)

	var buf bytes.Buffer
	tr.PrintReport(&buf)
	if strings.Contains(buf.String(), "binance") {
		t.Fatal("invalid stamps should not have produced a sample")
	}
}

func TestRecordAccumulatesStats(t *testing.T) {
	tr := newTestTracker(t)
	idx := tr.IndexForVenue("binance")
	for i := uint64(1); i <= 100; i++ {
		tr.Record(idx, 1, 1+i*1000, int(i))
	}

	var buf bytes.Buffer
	tr.PrintReport(&buf)
	out := buf.String()
	if !strings.Contains(out, "binance") {
		t.Fatalf("report missing producer name:\n%s", out)
	}
	if !strings.Contains(out, "100") {
		t.Fatalf("report missing count:\n%s", out)
	}
}

func TestPrintReportOmitsUnusedProducers(t *testing.T) {
	tr := newTestTracker(t)
	tr.IndexForVenue("binance")
	tr.IndexForVenue("coinbase")

	var buf bytes.Buffer
	tr.PrintReport(&buf)
	if strings.Contains(buf.String(), "coinbase") {
		t.Fatal("producer with zero samples should not appear in report")
	}
}

func TestDefaultTrackerIsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default() should return the same instance across calls")
	}
}
