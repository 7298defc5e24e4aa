package service

import (
	"context"

	"credledger/internal/ledger/address"
	"credledger/internal/ledger/models"
	"credledger/internal/ledger/status"
	"credledger/internal/ledger/tracer"
	"credledger/pkg/domain"
	"credledger/pkg/platform/middleware/requesttime"
)

// Queries read committed state only and need no caller.

func (s *Service) GetConfig(ctx context.Context) (*models.ProgramConfig, error) {
	cfg, _, err := s.loadConfig(ctx)
	return cfg, err
}

func (s *Service) GetRegistry(ctx context.Context) (*models.IssuerRegistry, error) {
	reg, _, err := s.loadRegistry(ctx, false)
	return reg, err
}

func (s *Service) GetIssuer(ctx context.Context, authority domain.Pubkey) (*models.IssuerAccount, error) {
	issuer, _, err := s.loadIssuer(ctx, authority, false)
	return issuer, err
}

func (s *Service) GetCredential(ctx context.Context, issuerAuthority, holder domain.Pubkey) (*models.UserCredential, error) {
	cred, _, err := s.loadCredential(ctx, issuerAuthority, holder)
	return cred, err
}

// CredentialStatus answers whether the credential can be trusted at the
// request time. A cache hit skips the ledger read; misses repopulate the cache.
func (s *Service) CredentialStatus(ctx context.Context, issuerAuthority, holder domain.Pubkey) (*models.CredentialStatusView, error) {
	now := requesttime.Unix(ctx)
	credAddr, err := s.credentialAddress(issuerAuthority, holder)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanPrefix+"credential_status",
		tracer.String(tracer.AttrAddress, credAddr.String()),
	)
	defer span.End(nil)

	if entry, ok := s.cachedStatus(ctx, credAddr); ok {
		span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
		return &models.CredentialStatusView{
			Address:   credAddr,
			Status:    entry.At(now),
			ExpiresAt: entry.ExpiresAt,
			CheckedAt: now,
		}, nil
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))

	cred, err := load[models.UserCredential](ctx, s.accounts.Get, credAddr, models.ErrCredentialNotFound)
	if err != nil {
		return nil, err
	}
	st := cred.StatusAt(now)
	s.putStatus(ctx, credAddr, status.Entry{Status: st, ExpiresAt: cred.ExpiresAt})
	span.AddEvent(tracer.EventCachePut)

	return &models.CredentialStatusView{
		Address:   credAddr,
		Status:    st,
		ExpiresAt: cred.ExpiresAt,
		CheckedAt: now,
	}, nil
}

func (s *Service) cachedStatus(ctx context.Context, addr domain.Pubkey) (status.Entry, bool) {
	if s.cache == nil {
		return status.Entry{}, false
	}
	entry, ok, err := s.cache.Get(ctx, addr)
	if s.metrics != nil {
		s.metrics.IncrementCacheLookup(ok && err == nil)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "credential status cache read failed",
			"credential", addr.String(),
			"error", err,
		)
		return status.Entry{}, false
	}
	return entry, ok
}

func (s *Service) credentialAddress(issuerAuthority, holder domain.Pubkey) (domain.Pubkey, error) {
	issuerAddr, err := s.derive(func() (address.Derived, error) { return s.deriver.Issuer(issuerAuthority) })
	if err != nil {
		return domain.Pubkey{}, err
	}
	credAddr, err := s.derive(func() (address.Derived, error) { return s.deriver.Credential(holder, issuerAddr.Address) })
	if err != nil {
		return domain.Pubkey{}, err
	}
	return credAddr.Address, nil
}

func (s *Service) loadCredential(ctx context.Context, issuerAuthority, holder domain.Pubkey) (*models.UserCredential, domain.Pubkey, error) {
	addr, err := s.credentialAddress(issuerAuthority, holder)
	if err != nil {
		return nil, domain.Pubkey{}, err
	}
	cred, err := load[models.UserCredential](ctx, s.accounts.Get, addr, models.ErrCredentialNotFound)
	if err != nil {
		return nil, domain.Pubkey{}, err
	}
	return cred, addr, nil
}
