// Package store persists raw ledger records keyed by their derived address.
// It knows nothing about record contents beyond the type tag.
package store

import (
	"context"
	"time"

	"credledger/internal/ledger/codec"
	"credledger/pkg/domain"
)

// Account is one record at one address.
type Account struct {
	Address       domain.Pubkey
	Discriminator codec.Discriminator
	Data          []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewAccount encodes record and tags it with its discriminator.
func NewAccount(addr domain.Pubkey, record any) (*Account, error) {
	data, err := codec.Encode(record)
	if err != nil {
		return nil, err
	}
	disc, err := codec.DiscriminatorOf(data)
	if err != nil {
		return nil, err
	}
	return &Account{Address: addr, Discriminator: disc, Data: data}, nil
}

func (a *Account) clone() *Account {
	cp := *a
	cp.Data = append([]byte(nil), a.Data...)
	return &cp
}

// Store is the keyed account map.
//
// Create is exclusive per address: it fails with sentinel.ErrAlreadyUsed when
// the address already holds data. Get and Update fail with
// sentinel.ErrNotFound for empty addresses.
type Store interface {
	Get(ctx context.Context, addr domain.Pubkey) (*Account, error)
	// GetForUpdate reads an account the caller intends to rewrite in the
	// current transaction; concurrent writers to it wait until commit.
	GetForUpdate(ctx context.Context, addr domain.Pubkey) (*Account, error)
	Create(ctx context.Context, acct *Account) error
	Update(ctx context.Context, acct *Account) error
	ListByDiscriminator(ctx context.Context, disc codec.Discriminator) ([]*Account, error)
}

// Tx runs fn so that every store write inside it commits together or not at all.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second
