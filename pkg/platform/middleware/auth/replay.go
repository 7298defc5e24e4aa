package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryReplayGuard is a process-local ReplayGuard. Entries are pruned once expired.
type MemoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemoryReplayGuard() *MemoryReplayGuard {
	return &MemoryReplayGuard{seen: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryReplayGuard) Claim(_ context.Context, jti string, until time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for id, exp := range g.seen {
		if now.After(exp) {
			delete(g.seen, id)
		}
	}
	if _, ok := g.seen[jti]; ok {
		return false, nil
	}
	g.seen[jti] = until
	return true, nil
}
