package sources

import (
	"context"
	"math/rand"
	"time"

	"github.com/arbitcore/arbitcore/internal/domain"
)

// SimulatedFeed generates synthetic BBO updates for one venue/symbol
// pair around a starting mid price, at a fixed interval. It is the
// default feed when no real venue is configured — a stand-in for a real
// exchange reader thread, implementing only the Feed interface those
// threads are described at.
type SimulatedFeed struct {
	Venue     string
	Symbol    string
	MidPrice  float64
	SpreadBps float64
	Interval  time.Duration
	rng       *rand.Rand
}

// NewSimulatedFeed constructs a feed seeded deterministically from its
// venue name, so repeated test runs reproduce the same quote sequence.
func NewSimulatedFeed(venue, symbol string, midPrice, spreadBps float64, interval time.Duration) *SimulatedFeed {
	seed := int64(0)
	for _, c := range venue {
		seed = seed*31 + int64(c)
	}
	return &SimulatedFeed{
		Venue:     venue,
		Symbol:    symbol,
		MidPrice:  midPrice,
		SpreadBps: spreadBps,
		Interval:  interval,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Run emits one synthetic quote per tick until ctx is cancelled. It
// never errors — simulated data generation has no failure mode.
func (f *SimulatedFeed) Run(ctx context.Context, ingest func(domain.Quote)) error {
	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ingest(f.next())
		}
	}
}

func (f *SimulatedFeed) next() domain.Quote {
	jitterBps := (f.rng.Float64() - 0.5) * f.SpreadBps
	mid := f.MidPrice * (1 + jitterBps/10000.0)
	halfSpread := mid * (f.SpreadBps / 2 / 10000.0)

	return domain.Quote{
		Venue:     f.Venue,
		RawSymbol: f.Symbol,
		BidPrice:  mid - halfSpread,
		AskPrice:  mid + halfSpread,
		BidSize:   1 + f.rng.Float64()*9,
		AskSize:   1 + f.rng.Float64()*9,
		WallMS:    time.Now().UnixMilli(),
	}
}
