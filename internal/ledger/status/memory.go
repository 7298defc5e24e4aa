package status

import (
	"context"
	"sync"

	"credledger/internal/ledger/models"
	"credledger/pkg/domain"
)

// InMemory is a process-local cache used when no Redis is configured.
// Entries are returned as stored; callers re-check expiry with Entry.At.
type InMemory struct {
	mu      sync.RWMutex
	entries map[domain.Pubkey]Entry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[domain.Pubkey]Entry)}
}

func (m *InMemory) Get(_ context.Context, addr domain.Pubkey) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[addr]
	return e, ok, nil
}

func (m *InMemory) Put(_ context.Context, addr domain.Pubkey, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries[addr]; ok && cur.Status == models.CredentialStatusRevoked &&
		entry.Status != models.CredentialStatusRevoked {
		return nil
	}
	m.entries[addr] = entry
	return nil
}
