// Package snapshot holds the detection engine's view of the market: the
// most recent quote seen per (venue, raw symbol) pair. Grounded on
// original_source/src/exchange_queue.hpp's MarketDataMap — keyed by a
// string concatenation there, by a small value struct here since Go lets
// map keys be comparable structs without hashing a concatenated string.
package snapshot

import (
	"sort"

	"github.com/arbitcore/arbitcore/internal/domain"
)

// Key identifies one venue's view of one raw symbol.
type Key struct {
	Venue     string
	RawSymbol string
}

// Snapshot is owned by exactly one goroutine — the detection loop that
// drains internal/quotequeue — and carries no synchronization. Entries
// persist for the process lifetime; there is no eviction.
type Snapshot struct {
	quotes map[Key]domain.Quote
}

// New constructs an empty snapshot with room for an initial working set.
func New() *Snapshot {
	return &Snapshot{quotes: make(map[Key]domain.Quote, 64)}
}

// Put records q as the latest quote for its (venue, symbol) pair,
// overwriting whatever was there.
func (s *Snapshot) Put(q domain.Quote) {
	s.quotes[Key{Venue: q.Venue, RawSymbol: q.RawSymbol}] = q
}

// Get returns the latest quote for (venue, rawSymbol), if any.
func (s *Snapshot) Get(venue, rawSymbol string) (domain.Quote, bool) {
	q, ok := s.quotes[Key{Venue: venue, RawSymbol: rawSymbol}]
	return q, ok
}

// Len reports how many distinct (venue, symbol) pairs are tracked.
func (s *Snapshot) Len() int {
	return len(s.quotes)
}

// All calls fn once per tracked entry. Order is unspecified, matching Go
// map iteration; the detection engine buckets entries in this order and
// sorts only the resulting opportunities, by profit.
func (s *Snapshot) All(fn func(domain.Quote)) {
	for _, q := range s.quotes {
		fn(q)
	}
}

// Entry is a read-only view of one tracked (venue, symbol) pair for
// consumers outside the detection loop, such as internal/dashboard.
type Entry struct {
	Venue     string
	RawSymbol string
	Quote     domain.Quote
	Freshness domain.Freshness
}

// Entries returns every tracked entry as of nowMS, newest producer
// timestamp (WallMS) first. Like All, this must only be called from the owning goroutine;
// callers needing a concurrency-safe view take a copy published through
// an atomic buffer instead (see detect.Engine.SnapshotEntries).
func (s *Snapshot) Entries(nowMS int64) []Entry {
	out := make([]Entry, 0, len(s.quotes))
	for k, q := range s.quotes {
		out = append(out, Entry{
			Venue:     k.Venue,
			RawSymbol: k.RawSymbol,
			Quote:     q,
			Freshness: q.FreshnessAt(nowMS),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quote.WallMS > out[j].Quote.WallMS })
	return out
}
