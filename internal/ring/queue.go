// Package ring implements the bounded multi-producer/single-consumer
// handoff at the center of the ingestion pipeline: a lock-free ring
// following Dmitry Vyukov's bounded MPMC slot/sequence protocol
// (simplified for one consumer), plus a mutex-backed FIFO that trades
// throughput for a never-drops baseline used as the latency-benchmark
// regression reference.
//
// Both implementations satisfy Queue so callers — in practice
// internal/quotequeue — can select one at construction time the way
// the original C++ implementation selected between them with a
// compile-time #ifdef; Go expresses that same choice as an interface
// instead.
package ring

import "github.com/arbitcore/arbitcore/internal/domain"

// Queue is the shared push/pop/drain surface both ring implementations
// expose. TryPush never blocks. DrainAll calls fn once per drained quote,
// in pop order, and returns the count drained.
type Queue interface {
	TryPush(q domain.Quote) bool
	TryPop() (domain.Quote, bool)
	DrainAll(fn func(domain.Quote)) int
	DroppedCount() uint64
	Len() int
}
