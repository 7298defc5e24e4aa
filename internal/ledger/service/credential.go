package service

import (
	"context"
	"errors"

	"credledger/internal/ledger/address"
	"credledger/internal/ledger/models"
	"credledger/internal/ledger/status"
	"credledger/internal/ledger/tracer"
	"credledger/internal/ledger/zk"
	"credledger/pkg/platform/middleware/requesttime"
)

// IssueCredential records a credential for (issuer, holder). At most one
// credential exists per pair; a second attempt fails with DuplicateCredential
// whatever else it carries. The create collision still guards racing callers.
func (s *Service) IssueCredential(ctx context.Context, cmd models.IssueCredentialCommand) (*models.UserCredential, error) {
	var (
		out      *models.UserCredential
		credAddr address.Derived
	)
	err := s.execute(ctx, InstructionIssueCredential, cmd.Caller, func(ctx context.Context) error {
		reg, _, err := s.loadRegistry(ctx, true)
		if errors.Is(err, models.ErrNotInitialized) {
			return models.ErrIssuerNotRegistered
		}
		if err != nil {
			return err
		}
		if !reg.Contains(cmd.IssuerAuthority) {
			return models.ErrIssuerNotRegistered
		}
		issuer, issuerAddr, err := s.loadIssuer(ctx, cmd.IssuerAuthority, true)
		if errors.Is(err, models.ErrIssuerNotFound) {
			return models.ErrIssuerNotRegistered.With("issuer is registered but has no identity record")
		}
		if err != nil {
			return err
		}
		if !issuer.IsActive {
			return models.ErrIssuerInactive
		}
		if issuer.Authority != cmd.Caller {
			return models.ErrUnauthorizedIssuer
		}

		// A taken pair is DuplicateCredential whatever the remaining arguments hold.
		credAddr, err = s.derive(func() (address.Derived, error) {
			return s.deriver.Credential(cmd.Holder, issuerAddr.Address)
		})
		if err != nil {
			return err
		}
		taken, err := s.exists(ctx, credAddr.Address)
		if err != nil {
			return err
		}
		if taken {
			return models.ErrDuplicateCredential
		}

		if cmd.DateOfBirth != nil {
			return models.ErrPlaintextAttributeRejected
		}
		if cmd.CredentialHash.IsZero() {
			return models.ErrInvalidCredentialHash
		}
		now := requesttime.Unix(ctx)
		if err := models.ValidateWindow(cmd.IssuedAt, cmd.ExpiresAt, now); err != nil {
			return err
		}
		if err := s.verifySignature(ctx, issuer, cmd); err != nil {
			return err
		}
		if err := s.checkExpected(cmd.Expected, address.CredentialSeeds(cmd.Holder, issuerAddr.Address)); err != nil {
			return err
		}

		cred, err := models.NewUserCredential(cmd.Holder, issuerAddr.Address, cmd.CredentialHash,
			cmd.IssuedAt, cmd.ExpiresAt, now, cmd.Signature, credAddr.Bump)
		if err != nil {
			return err
		}
		if err := s.create(ctx, credAddr.Address, cred, models.ErrDuplicateCredential); err != nil {
			return err
		}

		issuer.RecordIssuance()
		if err := s.update(ctx, issuerAddr.Address, issuer); err != nil {
			return err
		}
		out = cred
		return s.emit(ctx, models.CredentialIssued{
			Credential:     credAddr.Address,
			Holder:         cmd.Holder,
			IssuerAccount:  issuerAddr.Address,
			CredentialHash: cmd.CredentialHash,
			IssuedAt:       cmd.IssuedAt,
			ExpiresAt:      cmd.ExpiresAt,
		}, recordCredential)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementCredentialsIssued()
	}
	s.putStatus(ctx, credAddr.Address, status.Entry{Status: models.CredentialStatusActive, ExpiresAt: out.ExpiresAt})
	return out, nil
}

func (s *Service) verifySignature(ctx context.Context, issuer *models.IssuerAccount, cmd models.IssueCredentialCommand) error {
	if s.verifier == nil {
		return nil
	}
	pub := zk.PublicKey{X: issuer.ZkPublicKeyX, Y: issuer.ZkPublicKeyY}
	sig := zk.Signature{R8X: cmd.Signature.R8X, R8Y: cmd.Signature.R8Y, S: cmd.Signature.S}
	ctx, span := s.tracer.Start(ctx, tracer.SpanPrefix+"zk_verify")
	ok, err := s.verifier.Verify(ctx, pub, cmd.CredentialHash, sig)
	span.AddEvent(tracer.EventVerified, tracer.Bool("valid", ok))
	span.End(err)
	if err != nil {
		return models.ErrInvalidZkProof.With(err.Error())
	}
	if !ok {
		return models.ErrInvalidZkProof
	}
	return nil
}

// RevokeCredential marks the (issuer, holder) credential revoked. Only the
// issuer that recorded it may revoke, and revocation is terminal.
func (s *Service) RevokeCredential(ctx context.Context, cmd models.RevokeCredentialCommand) (*models.UserCredential, error) {
	var (
		out      *models.UserCredential
		credAddr address.Derived
	)
	err := s.execute(ctx, InstructionRevokeCredential, cmd.Caller, func(ctx context.Context) error {
		issuerAddr, err := s.derive(func() (address.Derived, error) { return s.deriver.Issuer(cmd.IssuerAuthority) })
		if err != nil {
			return err
		}
		seeds := address.CredentialSeeds(cmd.Holder, issuerAddr.Address)
		if err := s.checkExpected(cmd.Expected, seeds); err != nil {
			return err
		}
		credAddr, err = s.derive(func() (address.Derived, error) {
			return s.deriver.Credential(cmd.Holder, issuerAddr.Address)
		})
		if err != nil {
			return err
		}
		cred, err := load[models.UserCredential](ctx, s.accounts.GetForUpdate, credAddr.Address, models.ErrCredentialNotFound)
		if err != nil {
			return err
		}

		callerIssuer, err := s.derive(func() (address.Derived, error) { return s.deriver.Issuer(cmd.Caller) })
		if err != nil {
			return err
		}
		if callerIssuer.Address != cred.Issuer {
			return models.ErrUnauthorizedIssuer
		}
		if err := cred.Revoke(); err != nil {
			return err
		}
		if err := s.update(ctx, credAddr.Address, cred); err != nil {
			return err
		}
		out = cred
		return s.emit(ctx, models.CredentialRevoked{
			Credential:    credAddr.Address,
			Holder:        cred.Holder,
			IssuerAccount: cred.Issuer,
			RevokedAt:     requesttime.Unix(ctx),
			ExpiresAt:     cred.ExpiresAt,
		}, recordCredential)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementCredentialsRevoked()
	}
	s.putStatus(ctx, credAddr.Address, status.Entry{Status: models.CredentialStatusRevoked, ExpiresAt: out.ExpiresAt})
	return out, nil
}
