// Package oppbuf publishes the detection engine's most recent tick of
// opportunities for readers — a dashboard, a reporting endpoint — without
// ever blocking the publisher. Grounded on the original's
// opportunities_mutex_-guarded vector, rendered here as a lock-free
// pointer swap: the buffer is replaced wholesale each tick, never
// appended to, and carries no history.
package oppbuf

import (
	"sync/atomic"

	"github.com/arbitcore/arbitcore/internal/domain"
)

// Buffer holds the most recently published opportunity slice.
type Buffer struct {
	ptr atomic.Pointer[[]domain.Opportunity]
}

// New constructs an empty buffer.
func New() *Buffer {
	b := &Buffer{}
	empty := []domain.Opportunity{}
	b.ptr.Store(&empty)
	return b
}

// Publish atomically replaces the published slice. Callers must not
// mutate opps after calling Publish.
func (b *Buffer) Publish(opps []domain.Opportunity) {
	b.ptr.Store(&opps)
}

// Snapshot returns the most recently published slice. Callers must
// treat the result as read-only.
func (b *Buffer) Snapshot() []domain.Opportunity {
	return *b.ptr.Load()
}
