package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"credledger/pkg/platform/outbox"
	"credledger/pkg/platform/sentinel"
)

// InMemory is an outbox for the memory ledger backend and tests.
type InMemory struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*outbox.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[uuid.UUID]*outbox.Entry)}
}

func (s *InMemory) Append(_ context.Context, entry *outbox.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.ID]; exists {
		return fmt.Errorf("outbox entry %s: %w", entry.ID, sentinel.ErrAlreadyUsed)
	}
	cp := *entry
	s.entries[entry.ID] = &cp
	return nil
}

func (s *InMemory) FetchUnprocessed(_ context.Context, limit int) ([]*outbox.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make([]*outbox.Entry, 0)
	for _, e := range s.entries {
		if e.IsPending() {
			cp := *e
			pending = append(pending, &cp)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *InMemory) MarkProcessed(_ context.Context, id uuid.UUID, processedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || !e.IsPending() {
		return fmt.Errorf("outbox entry %s: %w", id, sentinel.ErrNotFound)
	}
	at := processedAt
	e.ProcessedAt = &at
	return nil
}

func (s *InMemory) CountPending(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.entries {
		if e.IsPending() {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, e := range s.entries {
		if e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}
