package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"credledger/internal/ledger/codec"
	"credledger/internal/ledger/models"
	"credledger/pkg/domain"
	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/platform/sentinel"
	"credledger/pkg/testutil"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func addr(b byte) domain.Pubkey {
	var pk domain.Pubkey
	pk[0] = b
	return pk
}

func (s *InMemorySuite) configAccount(at domain.Pubkey, admin byte) *Account {
	acct, err := NewAccount(at, models.NewProgramConfig(addr(admin), 255))
	s.Require().NoError(err)
	return acct
}

func (s *InMemorySuite) TestCreateIsExclusive() {
	s.Require().NoError(s.store.Create(s.ctx, s.configAccount(addr(1), 7)))

	err := s.store.Create(s.ctx, s.configAccount(addr(1), 8))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	got, err := s.store.Get(s.ctx, addr(1))
	s.Require().NoError(err)
	cfg, err := codec.Decode[models.ProgramConfig](got.Data)
	s.Require().NoError(err)
	s.Equal(addr(7), cfg.Admin, "first writer wins")
}

func (s *InMemorySuite) TestMissingAccounts() {
	_, err := s.store.Get(s.ctx, addr(9))
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(s.ctx, s.configAccount(addr(9), 1)), sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestReturnedAccountsAreCopies() {
	s.Require().NoError(s.store.Create(s.ctx, s.configAccount(addr(1), 7)))
	got, err := s.store.Get(s.ctx, addr(1))
	s.Require().NoError(err)
	got.Data[8] = 0xff

	again, err := s.store.Get(s.ctx, addr(1))
	s.Require().NoError(err)
	s.NotEqual(byte(0xff), again.Data[8])
}

func (s *InMemorySuite) TestTransactions() {
	s.Run("failed transaction leaves nothing behind", func() {
		boom := errors.New("precondition failed")
		err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
			s.Require().NoError(s.store.Create(ctx, s.configAccount(addr(20), 1)))
			return boom
		})
		s.ErrorIs(err, boom)
		_, err = s.store.Get(s.ctx, addr(20))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("staged writes are visible inside the transaction only", func() {
		err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
			s.Require().NoError(s.store.Create(ctx, s.configAccount(addr(21), 1)))
			_, err := s.store.Get(ctx, addr(21))
			s.Require().NoError(err)
			_, err = s.store.Get(s.ctx, addr(21))
			s.Require().ErrorIs(err, sentinel.ErrNotFound)
			return nil
		})
		s.Require().NoError(err)
		_, err = s.store.Get(s.ctx, addr(21))
		s.NoError(err)
	})

	s.Run("double create within one transaction", func() {
		err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
			s.Require().NoError(s.store.Create(ctx, s.configAccount(addr(22), 1)))
			return s.store.Create(ctx, s.configAccount(addr(22), 2))
		})
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("cancelled context is a timeout", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		err := s.store.RunInTx(ctx, func(context.Context) error { return nil })
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	s.Run("waiting for a busy slot times out", func() {
		st := NewInMemory().WithTxTimeout(20 * time.Millisecond)
		release := make(chan struct{})
		held := make(chan struct{})
		go func() {
			_ = st.RunInTx(s.ctx, func(context.Context) error {
				close(held)
				<-release
				return nil
			})
		}()
		<-held
		err := st.RunInTx(s.ctx, func(context.Context) error { return nil })
		close(release)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func (s *InMemorySuite) TestConcurrentCreateHasOneWinner() {
	result := testutil.RunConcurrent(50, func(idx int) error {
		return s.store.RunInTx(s.ctx, func(ctx context.Context) error {
			return s.store.Create(ctx, s.configAccount(addr(30), byte(idx)))
		})
	})
	s.Equal(1, result.Successes)
	s.Equal(49, result.Conflicts())
}

func (s *InMemorySuite) TestListByDiscriminator() {
	s.Require().NoError(s.store.Create(s.ctx, s.configAccount(addr(3), 1)))
	s.Require().NoError(s.store.Create(s.ctx, s.configAccount(addr(2), 1)))
	reg, err := NewAccount(addr(4), models.NewIssuerRegistry(addr(1), 255))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, reg))

	got, err := s.store.ListByDiscriminator(s.ctx, codec.ProgramConfigDiscriminator)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(addr(2), got[0].Address)
	s.Equal(addr(3), got[1].Address)
}
