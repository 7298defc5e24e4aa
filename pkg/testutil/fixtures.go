package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"

	"credledger/pkg/domain"
)

// Identity is a caller keypair for tests.
type Identity struct {
	Pubkey     domain.Pubkey
	PrivateKey ed25519.PrivateKey
}

// NewIdentity derives a deterministic keypair from a label, so failures
// reproduce with the same addresses.
func NewIdentity(label string) Identity {
	seed := sha256.Sum256([]byte("credledger-test:" + label))
	priv := ed25519.NewKeyFromSeed(seed[:])
	var pk domain.Pubkey
	copy(pk[:], priv.Public().(ed25519.PublicKey))
	return Identity{Pubkey: pk, PrivateKey: priv}
}

// TestIdentities are the actors used across ledger tests.
var TestIdentities = struct {
	Admin    Identity
	Issuer   Identity
	Issuer2  Identity
	Holder   Identity
	Holder2  Identity
	Outsider Identity
}{
	Admin:    NewIdentity("admin"),
	Issuer:   NewIdentity("issuer"),
	Issuer2:  NewIdentity("issuer-2"),
	Holder:   NewIdentity("holder"),
	Holder2:  NewIdentity("holder-2"),
	Outsider: NewIdentity("outsider"),
}

// Hash32 returns a non-zero 32-byte value derived from label.
func Hash32(label string) domain.Bytes32 {
	return domain.Bytes32(sha256.Sum256([]byte(label)))
}
