package models

import (
	"credledger/pkg/domain"
)

// Layout constants. They are part of every record's address and byte layout
// and must not become runtime configuration.
const (
	SchemaVersion       uint8 = 1
	RegistryCapacity          = 32
	MaxIssuerNameLength       = 50
)

// ProgramConfig is the singleton root of trust for admin-gated operations.
type ProgramConfig struct {
	Admin   domain.Pubkey `json:"admin"`
	Version uint8         `json:"version"`
	Bump    uint8         `json:"bump"`
}

func NewProgramConfig(admin domain.Pubkey, bump uint8) *ProgramConfig {
	return &ProgramConfig{Admin: admin, Version: SchemaVersion, Bump: bump}
}

// IssuerRegistry is the admin-curated trust set with fixed capacity.
// Slots [0, Count) are occupied and distinct; the rest are zero.
type IssuerRegistry struct {
	Admin   domain.Pubkey                   `json:"admin"`
	Issuers [RegistryCapacity]domain.Pubkey `json:"-"`
	Count   uint8                           `json:"count"`
	Bump    uint8                           `json:"bump"`
}

func NewIssuerRegistry(admin domain.Pubkey, bump uint8) *IssuerRegistry {
	return &IssuerRegistry{Admin: admin, Bump: bump}
}

// Members returns the occupied slots in registration order.
func (r *IssuerRegistry) Members() []domain.Pubkey {
	out := make([]domain.Pubkey, 0, r.Count)
	out = append(out, r.Issuers[:r.Count]...)
	return out
}

func (r *IssuerRegistry) Contains(issuer domain.Pubkey) bool {
	return r.indexOf(issuer) >= 0
}

// Register appends issuer to the trust set.
func (r *IssuerRegistry) Register(issuer domain.Pubkey) error {
	if r.Contains(issuer) {
		return ErrIssuerAlreadyRegistered
	}
	if int(r.Count) >= RegistryCapacity {
		return ErrRegistryFull
	}
	r.Issuers[r.Count] = issuer
	r.Count++
	return nil
}

// Deregister removes issuer, keeping the order of the remaining members.
func (r *IssuerRegistry) Deregister(issuer domain.Pubkey) error {
	i := r.indexOf(issuer)
	if i < 0 {
		return ErrIssuerNotRegistered
	}
	copy(r.Issuers[i:r.Count], r.Issuers[i+1:r.Count])
	r.Count--
	r.Issuers[r.Count] = domain.Pubkey{}
	return nil
}

func (r *IssuerRegistry) indexOf(issuer domain.Pubkey) int {
	for i := 0; i < int(r.Count); i++ {
		if r.Issuers[i] == issuer {
			return i
		}
	}
	return -1
}

// IssuerAccount is the per-issuer identity record.
type IssuerAccount struct {
	Authority         domain.Pubkey  `json:"authority"`
	ZkPublicKeyX      domain.Bytes32 `json:"zk_public_key_x"`
	ZkPublicKeyY      domain.Bytes32 `json:"zk_public_key_y"`
	Name              string         `json:"name"`
	IsActive          bool           `json:"is_active"`
	RegisteredAt      int64          `json:"registered_at"`
	CredentialsIssued uint64         `json:"credentials_issued"`
	Bump              uint8          `json:"bump"`
}

func NewIssuerAccount(authority domain.Pubkey, name string, zkX, zkY domain.Bytes32, now int64, bump uint8) (*IssuerAccount, error) {
	if name == "" {
		return nil, ErrInvalidIssuerName
	}
	if len(name) > MaxIssuerNameLength {
		return nil, ErrNameTooLong
	}
	return &IssuerAccount{
		Authority:    authority,
		ZkPublicKeyX: zkX,
		ZkPublicKeyY: zkY,
		Name:         name,
		IsActive:     true,
		RegisteredAt: now,
		Bump:         bump,
	}, nil
}

// Deactivate stops the issuer from issuing. No-op transitions are rejected.
func (i *IssuerAccount) Deactivate() error {
	if !i.IsActive {
		return ErrIssuerAlreadyInactive
	}
	i.IsActive = false
	return nil
}

// Reactivate restores issuing capability. No-op transitions are rejected.
func (i *IssuerAccount) Reactivate() error {
	if i.IsActive {
		return ErrIssuerAlreadyActive
	}
	i.IsActive = true
	return nil
}

// RecordIssuance bumps the issuance counter. It never decreases.
func (i *IssuerAccount) RecordIssuance() {
	i.CredentialsIssued++
}

// Signature is the opaque three-component signature over a credential hash.
type Signature struct {
	R8X domain.Bytes32 `json:"r8x"`
	R8Y domain.Bytes32 `json:"r8y"`
	S   domain.Bytes32 `json:"s"`
}

// UserCredential binds a holder to a hashed attribute commitment for a
// validity window. Issuer holds the issuer record address.
type UserCredential struct {
	Holder         domain.Pubkey  `json:"holder"`
	Issuer         domain.Pubkey  `json:"issuer"`
	CredentialHash domain.Bytes32 `json:"credential_hash"`
	IssuedAt       int64          `json:"issued_at"`
	ExpiresAt      int64          `json:"expires_at"`
	ZkSignatureR8X domain.Bytes32 `json:"zk_signature_r8x"`
	ZkSignatureR8Y domain.Bytes32 `json:"zk_signature_r8y"`
	ZkSignatureS   domain.Bytes32 `json:"zk_signature_s"`
	IsRevoked      bool           `json:"is_revoked"`
	Bump           uint8          `json:"bump"`
}

// NewUserCredential validates the validity window against now and builds the record.
func NewUserCredential(holder, issuerRecord domain.Pubkey, hash domain.Bytes32, issuedAt, expiresAt, now int64, sig Signature, bump uint8) (*UserCredential, error) {
	if hash.IsZero() {
		return nil, ErrInvalidCredentialHash
	}
	if err := ValidateWindow(issuedAt, expiresAt, now); err != nil {
		return nil, err
	}
	return &UserCredential{
		Holder:         holder,
		Issuer:         issuerRecord,
		CredentialHash: hash,
		IssuedAt:       issuedAt,
		ExpiresAt:      expiresAt,
		ZkSignatureR8X: sig.R8X,
		ZkSignatureR8Y: sig.R8Y,
		ZkSignatureS:   sig.S,
		Bump:           bump,
	}, nil
}

// ValidateWindow checks issuedAt < expiresAt, then issuedAt <= now < expiresAt.
// An inverted window is reported as such whatever now is.
func ValidateWindow(issuedAt, expiresAt, now int64) error {
	if expiresAt <= issuedAt {
		return ErrExpiryBeforeIssuance
	}
	if issuedAt > now {
		return ErrInvalidIssuedTimestamp
	}
	if expiresAt <= now {
		return ErrInvalidExpiryTimestamp
	}
	return nil
}

func (c *UserCredential) Signature() Signature {
	return Signature{R8X: c.ZkSignatureR8X, R8Y: c.ZkSignatureR8Y, S: c.ZkSignatureS}
}

// Revoke is terminal; there is no way back to a trusted state.
func (c *UserCredential) Revoke() error {
	if c.IsRevoked {
		return ErrCredentialAlreadyRevoked
	}
	c.IsRevoked = true
	return nil
}

// CredentialStatus is computed at query time; expiry is never stored.
type CredentialStatus string

const (
	CredentialStatusActive  CredentialStatus = "active"
	CredentialStatusExpired CredentialStatus = "expired"
	CredentialStatusRevoked CredentialStatus = "revoked"
)

func (c *UserCredential) StatusAt(now int64) CredentialStatus {
	switch {
	case c.IsRevoked:
		return CredentialStatusRevoked
	case now >= c.ExpiresAt:
		return CredentialStatusExpired
	default:
		return CredentialStatusActive
	}
}
