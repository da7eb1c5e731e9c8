package ring

import (
	"sync/atomic"

	"github.com/arbitcore/arbitcore/internal/domain"
)

// slot couples a payload with its sequence stamp, cache-line-conscious
// layout, generalized from a fixed-size blob to the concrete Quote
// payload this module needs, and from SPSC to Vyukov's full MPSC
// protocol per mpsc_ring_buffer.hpp in the original C++ source.
type slot struct {
	seq atomic.Uint64
	val domain.Quote
}

// MPSC is a fixed-capacity lock-free ring dedicated to many producers and
// one consumer. head is consumer-only and touched with plain loads/stores;
// tail is producer-contended and advanced via CAS. Both counters, and the
// slot backing array, sit on distinct cache lines via explicit padding
// fields, the same isolation discipline a single-producer ring would
// use, just sized for Quote instead of a fixed-size blob.
type MPSC struct {
	_    [64]byte
	head uint64 // consumer-only

	_    [56]byte
	tail uint64 // CAS-contended by producers

	_ [56]byte

	mask    uint64
	step    uint64
	buf     []slot
	dropped atomic.Uint64
}

// NewMPSC allocates a ring of the given power-of-two capacity.
func NewMPSC(capacity int) *MPSC {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be >0 and a power of two")
	}
	r := &MPSC{
		mask: uint64(capacity - 1),
		step: uint64(capacity),
		buf:  make([]slot, capacity),
	}
	for i := range r.buf {
		r.buf[i].seq.Store(uint64(i))
	}
	return r
}

// TryPush attempts to enqueue q. Multiple goroutines may call TryPush
// concurrently; none may call TryPop concurrently with another TryPop.
func (r *MPSC) TryPush(q domain.Quote) bool {
	pos := atomic.LoadUint64(&r.tail)
	for {
		s := &r.buf[pos&r.mask]
		seq := s.seq.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if atomic.CompareAndSwapUint64(&r.tail, pos, pos+1) {
				s.val = q
				s.seq.Store(pos + 1)
				return true
			}
			cpuRelax()
			// CAS lost the race; another producer claimed pos. Reload and
			// retry against the live tail rather than pos+1, since a third
			// producer may have claimed a slot out of order.
			pos = atomic.LoadUint64(&r.tail)
		case diff < 0:
			r.dropped.Add(1)
			return false
		default:
			pos = atomic.LoadUint64(&r.tail)
		}
	}
}

// TryPop dequeues the oldest available quote, or reports false if empty.
// Single-consumer only: head is not synchronized against concurrent pops.
func (r *MPSC) TryPop() (domain.Quote, bool) {
	pos := r.head
	s := &r.buf[pos&r.mask]
	seq := s.seq.Load()
	diff := int64(seq) - int64(pos+1)
	if diff < 0 {
		return domain.Quote{}, false
	}
	q := s.val
	s.seq.Store(pos + r.step)
	r.head = pos + 1
	return q, true
}

// DrainAll pops everything currently available, calling fn per item in pop
// order, and returns the number drained.
func (r *MPSC) DrainAll(fn func(domain.Quote)) int {
	n := 0
	for {
		q, ok := r.TryPop()
		if !ok {
			return n
		}
		fn(q)
		n++
	}
}

// DroppedCount returns the number of pushes rejected because the ring was
// full. The caller is never notified synchronously (backpressuring an
// exchange stream is worse than dropping one update); this counter is the
// only signal.
func (r *MPSC) DroppedCount() uint64 {
	return r.dropped.Load()
}

// Len returns an approximate occupancy: tail minus head, read without
// synchronization against either counter. Producers and the consumer may
// both be mid-update, so this is a snapshot for reporting, never a value
// to branch correctness on.
func (r *MPSC) Len() int {
	tail := atomic.LoadUint64(&r.tail)
	head := r.head
	diff := int64(tail - head)
	if diff < 0 {
		return 0
	}
	return int(diff)
}
