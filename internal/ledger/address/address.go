// Package address derives deterministic record addresses from a program id,
// a domain tag and identity seeds. Derived addresses are never valid ed25519
// points, so no private key can sign for them.
package address

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"

	"credledger/pkg/domain"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

// Domain tags used as the first seed of every record address.
const (
	TagConfig     = "config"
	TagRegistry   = "issuer_registry"
	TagIssuer     = "issuer"
	TagCredential = "credential"
)

var (
	ErrMaxSeedLength = errors.New("seed exceeds maximum length")
	ErrTooManySeeds  = errors.New("too many seeds")
	ErrOnCurve       = errors.New("derived address lies on the ed25519 curve")
	ErrNoViableBump  = errors.New("no viable bump seed")
	// ErrInvalidRecordAddress reports that a supplied address or bump does not
	// reproduce from the seeds.
	ErrInvalidRecordAddress = errors.New("invalid record address")
)

// Create hashes the seeds, bump and program id into an address. It fails
// with ErrOnCurve when the digest is a valid curve point.
func Create(programID domain.Pubkey, seeds [][]byte, bump uint8) (domain.Pubkey, error) {
	var out domain.Pubkey
	if len(seeds) > MaxSeeds-1 {
		return out, ErrTooManySeeds
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return out, ErrMaxSeedLength
		}
		h.Write(seed)
	}
	h.Write([]byte{bump})
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))
	copy(out[:], h.Sum(nil))

	if onCurve(out) {
		return domain.Pubkey{}, ErrOnCurve
	}
	return out, nil
}

// Find searches bumps from 255 downward and returns the first off-curve
// address with its bump.
func Find(programID domain.Pubkey, seeds [][]byte) (domain.Pubkey, uint8, error) {
	for bump := 255; bump > 0; bump-- {
		addr, err := Create(programID, seeds, uint8(bump))
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return domain.Pubkey{}, 0, err
		}
		return addr, uint8(bump), nil
	}
	return domain.Pubkey{}, 0, ErrNoViableBump
}

// Verify re-derives the address for seeds and bump and compares it with want.
func Verify(programID, want domain.Pubkey, bump uint8, seeds [][]byte) error {
	got, err := Create(programID, seeds, bump)
	if err != nil {
		return errors.Join(ErrInvalidRecordAddress, err)
	}
	if got != want {
		return ErrInvalidRecordAddress
	}
	return nil
}

func onCurve(b domain.Pubkey) bool {
	_, err := new(edwards25519.Point).SetBytes(b[:])
	return err == nil
}
