package status

import (
	"context"
	"log/slog"

	"credledger/pkg/domain"
	"credledger/pkg/platform/circuit"
)

// Cache is the contract shared by InMemory, Redis and Guarded. Put never
// replaces a revoked entry with a non-revoked one.
type Cache interface {
	Get(ctx context.Context, addr domain.Pubkey) (Entry, bool, error)
	Put(ctx context.Context, addr domain.Pubkey, entry Entry) error
}

// Guarded stops reading from a failing cache until it recovers. Reads that
// are short-circuited report a miss so callers go to the ledger. Writes are
// always attempted; a revocation must reach the cache if it can.
type Guarded struct {
	cache   Cache
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(cache Cache, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guarded{cache: cache, breaker: breaker, logger: logger}
}

func (g *Guarded) Get(ctx context.Context, addr domain.Pubkey) (Entry, bool, error) {
	if !g.breaker.Allow() {
		return Entry{}, false, nil
	}
	entry, ok, err := g.cache.Get(ctx, addr)
	g.record(ctx, err)
	return entry, ok, err
}

func (g *Guarded) Put(ctx context.Context, addr domain.Pubkey, entry Entry) error {
	err := g.cache.Put(ctx, addr, entry)
	g.record(ctx, err)
	return err
}

func (g *Guarded) record(ctx context.Context, err error) {
	change := g.breaker.Record(err)
	switch {
	case change.Opened:
		g.logger.ErrorContext(ctx, "status cache circuit opened",
			"circuit", g.breaker.Name(),
			"error", err,
		)
	case change.Closed:
		g.logger.InfoContext(ctx, "status cache circuit closed",
			"circuit", g.breaker.Name(),
		)
	}
}
