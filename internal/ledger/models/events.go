package models

import "credledger/pkg/domain"

// Domain events describe committed state transitions. They are pure data;
// the service writes them to the outbox in the same transaction as the
// records they describe.
type Event interface {
	EventType() string
	// RecordAddress is the address of the record the event is about. It keys
	// the event stream so per-record ordering is preserved.
	RecordAddress() domain.Pubkey
}

type ProgramInitialized struct {
	Config domain.Pubkey `json:"config"`
	Admin  domain.Pubkey `json:"admin"`
}

type RegistryInitialized struct {
	Registry domain.Pubkey `json:"registry"`
	Admin    domain.Pubkey `json:"admin"`
}

type IssuerRegistered struct {
	Registry domain.Pubkey `json:"registry"`
	Issuer   domain.Pubkey `json:"issuer"`
	Count    uint8         `json:"count"`
}

type IssuerDeregistered struct {
	Registry domain.Pubkey `json:"registry"`
	Issuer   domain.Pubkey `json:"issuer"`
	Count    uint8         `json:"count"`
}

type IssuerInitialized struct {
	IssuerAccount domain.Pubkey `json:"issuer_account"`
	Authority     domain.Pubkey `json:"authority"`
	Name          string        `json:"name"`
	RegisteredAt  int64         `json:"registered_at"`
}

type IssuerDeactivated struct {
	IssuerAccount domain.Pubkey `json:"issuer_account"`
	Authority     domain.Pubkey `json:"authority"`
}

type IssuerReactivated struct {
	IssuerAccount domain.Pubkey `json:"issuer_account"`
	Authority     domain.Pubkey `json:"authority"`
}

type CredentialIssued struct {
	Credential     domain.Pubkey  `json:"credential"`
	Holder         domain.Pubkey  `json:"holder"`
	IssuerAccount  domain.Pubkey  `json:"issuer_account"`
	CredentialHash domain.Bytes32 `json:"credential_hash"`
	IssuedAt       int64          `json:"issued_at"`
	ExpiresAt      int64          `json:"expires_at"`
}

type CredentialRevoked struct {
	Credential    domain.Pubkey `json:"credential"`
	Holder        domain.Pubkey `json:"holder"`
	IssuerAccount domain.Pubkey `json:"issuer_account"`
	RevokedAt     int64         `json:"revoked_at"`
	ExpiresAt     int64         `json:"expires_at"`
}

func (ProgramInitialized) EventType() string  { return "program_initialized" }
func (RegistryInitialized) EventType() string { return "registry_initialized" }
func (IssuerRegistered) EventType() string    { return "issuer_registered" }
func (IssuerDeregistered) EventType() string  { return "issuer_deregistered" }
func (IssuerInitialized) EventType() string   { return "issuer_initialized" }
func (IssuerDeactivated) EventType() string   { return "issuer_deactivated" }
func (IssuerReactivated) EventType() string   { return "issuer_reactivated" }
func (CredentialIssued) EventType() string    { return "credential_issued" }
func (CredentialRevoked) EventType() string   { return "credential_revoked" }

func (e ProgramInitialized) RecordAddress() domain.Pubkey  { return e.Config }
func (e RegistryInitialized) RecordAddress() domain.Pubkey { return e.Registry }
func (e IssuerRegistered) RecordAddress() domain.Pubkey    { return e.Registry }
func (e IssuerDeregistered) RecordAddress() domain.Pubkey  { return e.Registry }
func (e IssuerInitialized) RecordAddress() domain.Pubkey   { return e.IssuerAccount }
func (e IssuerDeactivated) RecordAddress() domain.Pubkey   { return e.IssuerAccount }
func (e IssuerReactivated) RecordAddress() domain.Pubkey   { return e.IssuerAccount }
func (e CredentialIssued) RecordAddress() domain.Pubkey    { return e.Credential }
func (e CredentialRevoked) RecordAddress() domain.Pubkey   { return e.Credential }
