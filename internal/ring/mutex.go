package ring

import (
	"sync"

	"github.com/arbitcore/arbitcore/internal/domain"
)

// Mutex is the regression baseline for the MPSC ring: a plain FIFO behind
// one lock, grounded on the original's MutexSharedQueue (std::queue guarded
// by std::mutex). It never drops — TryPush always succeeds, growing the
// backing slice — which is what makes it useful as a latency-benchmark
// reference for the lock-free variant's drop behavior under load.
type Mutex struct {
	mu  sync.Mutex
	buf []domain.Quote
}

// NewMutex constructs an empty mutex-backed queue.
func NewMutex() *Mutex {
	return &Mutex{}
}

// TryPush always succeeds.
func (m *Mutex) TryPush(q domain.Quote) bool {
	m.mu.Lock()
	m.buf = append(m.buf, q)
	m.mu.Unlock()
	return true
}

// TryPop removes and returns the oldest queued quote.
func (m *Mutex) TryPop() (domain.Quote, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.buf) == 0 {
		return domain.Quote{}, false
	}
	q := m.buf[0]
	m.buf = m.buf[1:]
	return q, true
}

// DrainAll empties the queue under a single lock hold, calling fn per item.
func (m *Mutex) DrainAll(fn func(domain.Quote)) int {
	m.mu.Lock()
	drained := m.buf
	m.buf = nil
	m.mu.Unlock()

	for _, q := range drained {
		fn(q)
	}
	return len(drained)
}

// DroppedCount is always zero: the mutex queue never drops.
func (m *Mutex) DroppedCount() uint64 {
	return 0
}

// Len reports the current backlog size.
func (m *Mutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buf)
}
