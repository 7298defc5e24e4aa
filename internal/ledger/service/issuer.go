package service

import (
	"context"

	"credledger/internal/ledger/address"
	"credledger/internal/ledger/models"
	"credledger/pkg/domain"
	"credledger/pkg/platform/middleware/requesttime"
)

// InitializeIssuer creates the issuer identity record for the caller's authority key.
func (s *Service) InitializeIssuer(ctx context.Context, cmd models.InitializeIssuerCommand) (*models.IssuerAccount, error) {
	var out *models.IssuerAccount
	err := s.execute(ctx, InstructionInitializeIssuer, cmd.Caller, func(ctx context.Context) error {
		if err := s.checkExpected(cmd.Expected, address.IssuerSeeds(cmd.Caller)); err != nil {
			return err
		}
		issuerAddr, err := s.derive(func() (address.Derived, error) { return s.deriver.Issuer(cmd.Caller) })
		if err != nil {
			return err
		}
		now := requesttime.Unix(ctx)
		issuer, err := models.NewIssuerAccount(cmd.Caller, cmd.Name, cmd.ZkPublicKeyX, cmd.ZkPublicKeyY, now, issuerAddr.Bump)
		if err != nil {
			return err
		}
		if err := s.create(ctx, issuerAddr.Address, issuer, models.ErrAlreadyInitialized); err != nil {
			return err
		}
		out = issuer
		return s.emit(ctx, models.IssuerInitialized{
			IssuerAccount: issuerAddr.Address,
			Authority:     cmd.Caller,
			Name:          cmd.Name,
			RegisteredAt:  now,
		}, recordIssuerAccount)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) DeactivateIssuer(ctx context.Context, caller, authority domain.Pubkey) (*models.IssuerAccount, error) {
	return s.toggleIssuer(ctx, InstructionDeactivateIssuer, caller, authority, func(issuer *models.IssuerAccount, addr domain.Pubkey) (models.Event, error) {
		if err := issuer.Deactivate(); err != nil {
			return nil, err
		}
		return models.IssuerDeactivated{IssuerAccount: addr, Authority: authority}, nil
	})
}

func (s *Service) ReactivateIssuer(ctx context.Context, caller, authority domain.Pubkey) (*models.IssuerAccount, error) {
	return s.toggleIssuer(ctx, InstructionReactivateIssuer, caller, authority, func(issuer *models.IssuerAccount, addr domain.Pubkey) (models.Event, error) {
		if err := issuer.Reactivate(); err != nil {
			return nil, err
		}
		return models.IssuerReactivated{IssuerAccount: addr, Authority: authority}, nil
	})
}

func (s *Service) toggleIssuer(
	ctx context.Context,
	instruction string,
	caller, authority domain.Pubkey,
	toggle func(issuer *models.IssuerAccount, addr domain.Pubkey) (models.Event, error),
) (*models.IssuerAccount, error) {
	var out *models.IssuerAccount
	err := s.execute(ctx, instruction, caller, func(ctx context.Context) error {
		issuer, issuerAddr, err := s.loadIssuer(ctx, authority, true)
		if err != nil {
			return err
		}
		if issuer.Authority != caller {
			return models.ErrUnauthorizedIssuer
		}
		event, err := toggle(issuer, issuerAddr.Address)
		if err != nil {
			return err
		}
		if err := s.update(ctx, issuerAddr.Address, issuer); err != nil {
			return err
		}
		out = issuer
		return s.emit(ctx, event, recordIssuerAccount)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
