package snapshot

import (
	"testing"

	"github.com/arbitcore/arbitcore/internal/domain"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	q := domain.Quote{Venue: "binance", RawSymbol: "BTCUSDT", BidPrice: 100}
	s.Put(q)

	got, ok := s.Get("binance", "BTCUSDT")
	if !ok || got != q {
		t.Fatalf("got %+v, ok=%v, want %+v", got, ok, q)
	}
}

func TestPutOverwritesSameKey(t *testing.T) {
	s := New()
	s.Put(domain.Quote{Venue: "binance", RawSymbol: "BTCUSDT", BidPrice: 100})
	s.Put(domain.Quote{Venue: "binance", RawSymbol: "BTCUSDT", BidPrice: 200})

	got, _ := s.Get("binance", "BTCUSDT")
	if got.BidPrice != 200 {
		t.Fatalf("bid = %v, want 200 (latest write should win)", got.BidPrice)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
}

func TestDistinctVenuesDoNotCollide(t *testing.T) {
	s := New()
	s.Put(domain.Quote{Venue: "binance", RawSymbol: "BTCUSDT", BidPrice: 100})
	s.Put(domain.Quote{Venue: "coinbase", RawSymbol: "BTC-USD", BidPrice: 101})

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	b, _ := s.Get("binance", "BTCUSDT")
	c, _ := s.Get("coinbase", "BTC-USD")
	if b.BidPrice == c.BidPrice {
		t.Fatal("distinct venues unexpectedly share a value")
	}
}

func TestGetMissingReturnsFalse(t *testing.T) {
	s := New()
	if _, ok := s.Get("binance", "ETHUSDT"); ok {
		t.Fatal("expected ok=false for an untracked pair")
	}
}

func TestAllVisitsEveryEntry(t *testing.T) {
	s := New()
	s.Put(domain.Quote{Venue: "binance", RawSymbol: "BTCUSDT"})
	s.Put(domain.Quote{Venue: "kraken", RawSymbol: "XBT/USD"})

	seen := map[string]bool{}
	s.All(func(q domain.Quote) { seen[q.Venue] = true })
	if len(seen) != 2 || !seen["binance"] || !seen["kraken"] {
		t.Fatalf("All visited %v, want both venues", seen)
	}
}

func TestEntriesOrdersByRecencyAndTagsFreshness(t *testing.T) {
	s := New()
	const nowMS = int64(10_000)

	s.Put(domain.Quote{Venue: "binance", RawSymbol: "BTCUSDT", WallMS: nowMS - 6000}) // Stale
	s.Put(domain.Quote{Venue: "kraken", RawSymbol: "XBT/USD", WallMS: nowMS - 200})    // Live
	s.Put(domain.Quote{Venue: "coinbase", RawSymbol: "BTC-USD", WallMS: nowMS - 2000}) // Slow

	entries := s.Entries(nowMS)
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[0].Venue != "kraken" || entries[0].Freshness != domain.Live {
		t.Fatalf("entries[0] = %+v, want most-recent kraken/Live first", entries[0])
	}
	if entries[2].Venue != "binance" || entries[2].Freshness != domain.Stale {
		t.Fatalf("entries[2] = %+v, want least-recent binance/Stale last", entries[2])
	}
}
