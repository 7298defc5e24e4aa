package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"credledger/internal/ledger/codec"
	"credledger/pkg/domain"
	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/platform/sentinel"
)

// InMemory keeps accounts in a map. Transactions are serialized and stage
// their writes until fn returns without error.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[domain.Pubkey]*Account

	txSem   chan struct{}
	timeout time.Duration
	now     func() time.Time
}

type memTxKey struct{}

type memTx struct {
	writes  map[domain.Pubkey]*Account
	created map[domain.Pubkey]bool
	order   []domain.Pubkey
}

func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[domain.Pubkey]*Account),
		txSem:    make(chan struct{}, 1),
		timeout:  defaultTxTimeout,
		now:      time.Now,
	}
}

// WithTxTimeout bounds how long RunInTx waits for the transaction slot.
func (s *InMemory) WithTxTimeout(d time.Duration) *InMemory {
	if d > 0 {
		s.timeout = d
	}
	return s
}

func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	select {
	case s.txSem <- struct{}{}:
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction aborted: waiting for ledger lock")
	}
	defer func() { <-s.txSem }()

	tx := &memTx{
		writes:  make(map[domain.Pubkey]*Account),
		created: make(map[domain.Pubkey]bool),
	}
	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *InMemory) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, addr := range tx.order {
		if _, exists := s.accounts[addr]; exists && tx.created[addr] {
			return fmt.Errorf("commit account %s: %w", addr, sentinel.ErrAlreadyUsed)
		}
	}
	now := s.now()
	for _, addr := range tx.order {
		acct := tx.writes[addr]
		if tx.created[addr] {
			acct.CreatedAt = now
		}
		acct.UpdatedAt = now
		s.accounts[addr] = acct
	}
	return nil
}

func txFrom(ctx context.Context) (*memTx, bool) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	return tx, ok
}

func (s *InMemory) Get(ctx context.Context, addr domain.Pubkey) (*Account, error) {
	if tx, ok := txFrom(ctx); ok {
		if acct, staged := tx.writes[addr]; staged {
			return acct.clone(), nil
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[addr]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", addr, sentinel.ErrNotFound)
	}
	return acct.clone(), nil
}

// GetForUpdate is Get: transactions are already serialized.
func (s *InMemory) GetForUpdate(ctx context.Context, addr domain.Pubkey) (*Account, error) {
	return s.Get(ctx, addr)
}

func (s *InMemory) Create(ctx context.Context, acct *Account) error {
	if tx, ok := txFrom(ctx); ok {
		if _, staged := tx.writes[acct.Address]; staged {
			return fmt.Errorf("account %s: %w", acct.Address, sentinel.ErrAlreadyUsed)
		}
		s.mu.RLock()
		_, exists := s.accounts[acct.Address]
		s.mu.RUnlock()
		if exists {
			return fmt.Errorf("account %s: %w", acct.Address, sentinel.ErrAlreadyUsed)
		}
		tx.stage(acct.clone(), true)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acct.Address]; exists {
		return fmt.Errorf("account %s: %w", acct.Address, sentinel.ErrAlreadyUsed)
	}
	cp := acct.clone()
	cp.CreatedAt = s.now()
	cp.UpdatedAt = cp.CreatedAt
	s.accounts[acct.Address] = cp
	return nil
}

func (s *InMemory) Update(ctx context.Context, acct *Account) error {
	if tx, ok := txFrom(ctx); ok {
		if prev, staged := tx.writes[acct.Address]; staged {
			cp := acct.clone()
			cp.CreatedAt = prev.CreatedAt
			tx.writes[acct.Address] = cp
			return nil
		}
		s.mu.RLock()
		prev, exists := s.accounts[acct.Address]
		s.mu.RUnlock()
		if !exists {
			return fmt.Errorf("account %s: %w", acct.Address, sentinel.ErrNotFound)
		}
		cp := acct.clone()
		cp.CreatedAt = prev.CreatedAt
		tx.stage(cp, false)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, exists := s.accounts[acct.Address]
	if !exists {
		return fmt.Errorf("account %s: %w", acct.Address, sentinel.ErrNotFound)
	}
	cp := acct.clone()
	cp.CreatedAt = prev.CreatedAt
	cp.UpdatedAt = s.now()
	s.accounts[acct.Address] = cp
	return nil
}

// ListByDiscriminator returns committed accounts of one record type ordered by address.
func (s *InMemory) ListByDiscriminator(_ context.Context, disc codec.Discriminator) ([]*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Account, 0)
	for _, acct := range s.accounts {
		if acct.Discriminator == disc {
			out = append(out, acct.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Address[:], out[j].Address[:]) < 0
	})
	return out, nil
}

func (t *memTx) stage(acct *Account, created bool) {
	if _, seen := t.writes[acct.Address]; !seen {
		t.order = append(t.order, acct.Address)
	}
	t.writes[acct.Address] = acct
	if created {
		t.created[acct.Address] = true
	}
}
