// Package domain provides the identity type shared by callers and ledger records.
package domain

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	dErrors "credledger/pkg/domain-errors"
)

// PubkeyLength is the byte length of every identity and record address.
const PubkeyLength = 32

// Pubkey is a 32-byte identity: an ed25519 public key for callers or a
// derived address for records. Its text form is base58.
type Pubkey [PubkeyLength]byte

// ParsePubkey decodes a base58 identity. Use at trust boundaries.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	if s == "" {
		return pk, dErrors.New(dErrors.CodeInvalidInput, "public key cannot be empty")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, dErrors.New(dErrors.CodeInvalidInput, "public key is not valid base58")
	}
	if len(raw) != PubkeyLength {
		return pk, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("public key must be %d bytes, got %d", PubkeyLength, len(raw)))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustParsePubkey panics on invalid input. Intended for constants and tests.
func MustParsePubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// PubkeyFromEd25519 converts an ed25519 public key into an identity.
func PubkeyFromEd25519(key ed25519.PublicKey) (Pubkey, error) {
	var pk Pubkey
	if len(key) != ed25519.PublicKeySize {
		return pk, dErrors.New(dErrors.CodeInvalidInput, "invalid ed25519 public key size")
	}
	copy(pk[:], key)
	return pk, nil
}

func (p Pubkey) String() string { return base58.Encode(p[:]) }

func (p Pubkey) Bytes() []byte { return p[:] }

func (p Pubkey) IsZero() bool { return p == Pubkey{} }

// Ed25519 returns the identity as an ed25519 verification key.
func (p Pubkey) Ed25519() ed25519.PublicKey {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, p[:])
	return key
}

func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
