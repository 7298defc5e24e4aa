package handler

import (
	"strings"

	"credledger/internal/ledger/models"
	"credledger/pkg/domain"
	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/validation"
)

// HTTP request DTOs. Identities are base58, 32-byte values are hex.
// Struct tags catch malformed input; ledger rules are left to the service.

type ExpectedAddressRequest struct {
	Address string `json:"address" validate:"required,pubkey"`
	Bump    uint8  `json:"bump"`
}

func (r *ExpectedAddressRequest) toModel() (*models.ExpectedAddress, error) {
	if r == nil {
		return nil, nil
	}
	addr, err := domain.ParsePubkey(r.Address)
	if err != nil {
		return nil, err
	}
	return &models.ExpectedAddress{Address: addr, Bump: r.Bump}, nil
}

type RegisterIssuerRequest struct {
	Issuer string `json:"issuer" validate:"required,pubkey"`
}

func (r *RegisterIssuerRequest) Normalize() {
	if r == nil {
		return
	}
	r.Issuer = strings.TrimSpace(r.Issuer)
}

func (r *RegisterIssuerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type InitializeIssuerRequest struct {
	// Name bounds are ledger rules and are reported as program errors.
	Name         string                  `json:"name"`
	ZkPublicKeyX string                  `json:"zk_public_key_x" validate:"required,hex32"`
	ZkPublicKeyY string                  `json:"zk_public_key_y" validate:"required,hex32"`
	Expected     *ExpectedAddressRequest `json:"expected_address,omitempty" validate:"omitempty"`
}

func (r *InitializeIssuerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *InitializeIssuerRequest) ToCommand(caller domain.Pubkey) (models.InitializeIssuerCommand, error) {
	x, err := domain.ParseBytes32(r.ZkPublicKeyX)
	if err != nil {
		return models.InitializeIssuerCommand{}, err
	}
	y, err := domain.ParseBytes32(r.ZkPublicKeyY)
	if err != nil {
		return models.InitializeIssuerCommand{}, err
	}
	expected, err := r.Expected.toModel()
	if err != nil {
		return models.InitializeIssuerCommand{}, err
	}
	return models.InitializeIssuerCommand{
		Caller:       caller,
		Name:         r.Name,
		ZkPublicKeyX: x,
		ZkPublicKeyY: y,
		Expected:     expected,
	}, nil
}

type SignatureRequest struct {
	R8X string `json:"r8x" validate:"required,hex32"`
	R8Y string `json:"r8y" validate:"required,hex32"`
	S   string `json:"s" validate:"required,hex32"`
}

func (r SignatureRequest) toModel() (models.Signature, error) {
	var (
		sig models.Signature
		err error
	)
	if sig.R8X, err = domain.ParseBytes32(r.R8X); err != nil {
		return sig, err
	}
	if sig.R8Y, err = domain.ParseBytes32(r.R8Y); err != nil {
		return sig, err
	}
	if sig.S, err = domain.ParseBytes32(r.S); err != nil {
		return sig, err
	}
	return sig, nil
}

type IssueCredentialRequest struct {
	IssuerAuthority string `json:"issuer_authority" validate:"required,pubkey"`
	Holder          string `json:"holder" validate:"required,pubkey"`
	CredentialHash  string `json:"credential_hash" validate:"required,hex32"`
	// DateOfBirth is decoded so it can be refused explicitly.
	DateOfBirth *int64                  `json:"date_of_birth,omitempty"`
	IssuedAt    int64                   `json:"issued_at"`
	ExpiresAt   int64                   `json:"expires_at"`
	Signature   SignatureRequest        `json:"zk_signature"`
	Expected    *ExpectedAddressRequest `json:"expected_address,omitempty" validate:"omitempty"`
}

func (r *IssueCredentialRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *IssueCredentialRequest) ToCommand(caller domain.Pubkey) (models.IssueCredentialCommand, error) {
	authority, err := domain.ParsePubkey(r.IssuerAuthority)
	if err != nil {
		return models.IssueCredentialCommand{}, err
	}
	holder, err := domain.ParsePubkey(r.Holder)
	if err != nil {
		return models.IssueCredentialCommand{}, err
	}
	hash, err := domain.ParseBytes32(r.CredentialHash)
	if err != nil {
		return models.IssueCredentialCommand{}, err
	}
	sig, err := r.Signature.toModel()
	if err != nil {
		return models.IssueCredentialCommand{}, err
	}
	expected, err := r.Expected.toModel()
	if err != nil {
		return models.IssueCredentialCommand{}, err
	}
	return models.IssueCredentialCommand{
		Caller:          caller,
		IssuerAuthority: authority,
		Holder:          holder,
		CredentialHash:  hash,
		DateOfBirth:     r.DateOfBirth,
		IssuedAt:        r.IssuedAt,
		ExpiresAt:       r.ExpiresAt,
		Signature:       sig,
		Expected:        expected,
	}, nil
}

type RevokeCredentialRequest struct {
	IssuerAuthority string                  `json:"issuer_authority" validate:"required,pubkey"`
	Holder          string                  `json:"holder" validate:"required,pubkey"`
	Expected        *ExpectedAddressRequest `json:"expected_address,omitempty" validate:"omitempty"`
}

func (r *RevokeCredentialRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *RevokeCredentialRequest) ToCommand(caller domain.Pubkey) (models.RevokeCredentialCommand, error) {
	authority, err := domain.ParsePubkey(r.IssuerAuthority)
	if err != nil {
		return models.RevokeCredentialCommand{}, err
	}
	holder, err := domain.ParsePubkey(r.Holder)
	if err != nil {
		return models.RevokeCredentialCommand{}, err
	}
	expected, err := r.Expected.toModel()
	if err != nil {
		return models.RevokeCredentialCommand{}, err
	}
	return models.RevokeCredentialCommand{
		Caller:          caller,
		IssuerAuthority: authority,
		Holder:          holder,
		Expected:        expected,
	}, nil
}
