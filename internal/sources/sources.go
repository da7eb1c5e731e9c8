// Package sources provides quote-source adapters that feed
// domain.Quote updates into the detection core's Ingest path. These are
// illustrative, not production exchange clients: one simulated feed for
// tests and default runs, one real-network WebSocket feed demonstrating
// the inbound contract end to end.
package sources

import (
	"context"

	"github.com/arbitcore/arbitcore/internal/domain"
)

// Feed is the inbound contract every quote source adapter implements.
// Run dials/starts the source and blocks, calling ingest once per
// decoded BBO update, until ctx is cancelled or the source errs.
// Implementations must not retain a Quote by pointer after handing it
// to ingest; each call gets its own value.
type Feed interface {
	Run(ctx context.Context, ingest func(domain.Quote)) error
}
