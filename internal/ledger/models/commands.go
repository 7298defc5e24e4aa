package models

import "credledger/pkg/domain"

// ExpectedAddress lets a caller pin the record address it derived itself.
// When set, the handler verifies it before touching the record.
type ExpectedAddress struct {
	Address domain.Pubkey
	Bump    uint8
}

type InitializeIssuerCommand struct {
	Caller       domain.Pubkey
	Name         string
	ZkPublicKeyX domain.Bytes32
	ZkPublicKeyY domain.Bytes32
	Expected     *ExpectedAddress
}

type IssueCredentialCommand struct {
	Caller          domain.Pubkey
	IssuerAuthority domain.Pubkey
	Holder          domain.Pubkey
	CredentialHash  domain.Bytes32
	// DateOfBirth is accepted on the wire only to be refused; the ledger keeps
	// the hash alone.
	DateOfBirth *int64
	IssuedAt    int64
	ExpiresAt   int64
	Signature   Signature
	Expected    *ExpectedAddress
}

type RevokeCredentialCommand struct {
	Caller          domain.Pubkey
	IssuerAuthority domain.Pubkey
	Holder          domain.Pubkey
	Expected        *ExpectedAddress
}

// CredentialStatusView is the verifier-facing answer to "can I trust this credential now".
type CredentialStatusView struct {
	Address   domain.Pubkey    `json:"address"`
	Status    CredentialStatus `json:"status"`
	ExpiresAt int64            `json:"expires_at"`
	CheckedAt int64            `json:"checked_at"`
}
