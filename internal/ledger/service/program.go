package service

import (
	"context"

	"credledger/internal/ledger/address"
	"credledger/internal/ledger/models"
	"credledger/pkg/domain"
)

const (
	recordProgramConfig  = "ProgramConfig"
	recordIssuerRegistry = "IssuerRegistry"
	recordIssuerAccount  = "IssuerAccount"
	recordCredential     = "UserCredential"
)

// Initialize creates the program config with caller as admin. It succeeds at
// most once per program.
func (s *Service) Initialize(ctx context.Context, caller domain.Pubkey) (*models.ProgramConfig, error) {
	var out *models.ProgramConfig
	err := s.execute(ctx, InstructionInitialize, caller, func(ctx context.Context) error {
		cfgAddr, err := s.derive(s.deriver.Config)
		if err != nil {
			return err
		}
		cfg := models.NewProgramConfig(caller, cfgAddr.Bump)
		if err := s.create(ctx, cfgAddr.Address, cfg, models.ErrAlreadyInitialized); err != nil {
			return err
		}
		out = cfg
		return s.emit(ctx, models.ProgramInitialized{Config: cfgAddr.Address, Admin: caller}, recordProgramConfig)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InitializeIssuerRegistry creates the empty trust set. Only the program admin may call it.
func (s *Service) InitializeIssuerRegistry(ctx context.Context, caller domain.Pubkey) (*models.IssuerRegistry, error) {
	var out *models.IssuerRegistry
	err := s.execute(ctx, InstructionInitializeRegistry, caller, func(ctx context.Context) error {
		cfg, _, err := s.loadConfig(ctx)
		if err != nil {
			return err
		}
		if cfg.Admin != caller {
			return models.ErrUnauthorizedAdmin
		}
		regAddr, err := s.derive(s.deriver.Registry)
		if err != nil {
			return err
		}
		reg := models.NewIssuerRegistry(caller, regAddr.Bump)
		if err := s.create(ctx, regAddr.Address, reg, models.ErrAlreadyInitialized); err != nil {
			return err
		}
		out = reg
		return s.emit(ctx, models.RegistryInitialized{Registry: regAddr.Address, Admin: caller}, recordIssuerRegistry)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterIssuer adds issuer (an authority key) to the trust set.
func (s *Service) RegisterIssuer(ctx context.Context, caller, issuer domain.Pubkey) (*models.IssuerRegistry, error) {
	return s.changeRegistry(ctx, InstructionRegisterIssuer, caller, func(reg *models.IssuerRegistry, regAddr domain.Pubkey) (models.Event, error) {
		if err := reg.Register(issuer); err != nil {
			return nil, err
		}
		return models.IssuerRegistered{Registry: regAddr, Issuer: issuer, Count: reg.Count}, nil
	})
}

// DeregisterIssuer removes issuer from the trust set. Existing credentials are
// untouched; only future issuance is blocked.
func (s *Service) DeregisterIssuer(ctx context.Context, caller, issuer domain.Pubkey) (*models.IssuerRegistry, error) {
	return s.changeRegistry(ctx, InstructionDeregisterIssuer, caller, func(reg *models.IssuerRegistry, regAddr domain.Pubkey) (models.Event, error) {
		if err := reg.Deregister(issuer); err != nil {
			return nil, err
		}
		return models.IssuerDeregistered{Registry: regAddr, Issuer: issuer, Count: reg.Count}, nil
	})
}

func (s *Service) changeRegistry(
	ctx context.Context,
	instruction string,
	caller domain.Pubkey,
	change func(reg *models.IssuerRegistry, regAddr domain.Pubkey) (models.Event, error),
) (*models.IssuerRegistry, error) {
	var out *models.IssuerRegistry
	err := s.execute(ctx, instruction, caller, func(ctx context.Context) error {
		reg, regAddr, err := s.loadRegistry(ctx, true)
		if err != nil {
			return err
		}
		if reg.Admin != caller {
			return models.ErrUnauthorizedAdmin
		}
		event, err := change(reg, regAddr)
		if err != nil {
			return err
		}
		if err := s.update(ctx, regAddr, reg); err != nil {
			return err
		}
		out = reg
		return s.emit(ctx, event, recordIssuerRegistry)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) loadConfig(ctx context.Context) (*models.ProgramConfig, domain.Pubkey, error) {
	addr, err := s.derive(s.deriver.Config)
	if err != nil {
		return nil, domain.Pubkey{}, err
	}
	cfg, err := load[models.ProgramConfig](ctx, s.accounts.Get, addr.Address, models.ErrNotInitialized)
	if err != nil {
		return nil, domain.Pubkey{}, err
	}
	return cfg, addr.Address, nil
}

// loadRegistry reads the registry; forUpdate locks it against concurrent membership changes.
func (s *Service) loadRegistry(ctx context.Context, forUpdate bool) (*models.IssuerRegistry, domain.Pubkey, error) {
	addr, err := s.derive(s.deriver.Registry)
	if err != nil {
		return nil, domain.Pubkey{}, err
	}
	read := s.accounts.Get
	if forUpdate {
		read = s.accounts.GetForUpdate
	}
	reg, err := load[models.IssuerRegistry](ctx, read, addr.Address, models.ErrNotInitialized)
	if err != nil {
		return nil, domain.Pubkey{}, err
	}
	return reg, addr.Address, nil
}

func (s *Service) loadIssuer(ctx context.Context, authority domain.Pubkey, forUpdate bool) (*models.IssuerAccount, address.Derived, error) {
	addr, err := s.derive(func() (address.Derived, error) { return s.deriver.Issuer(authority) })
	if err != nil {
		return nil, address.Derived{}, err
	}
	read := s.accounts.Get
	if forUpdate {
		read = s.accounts.GetForUpdate
	}
	issuer, err := load[models.IssuerAccount](ctx, read, addr.Address, models.ErrIssuerNotFound)
	if err != nil {
		return nil, address.Derived{}, err
	}
	return issuer, addr, nil
}
