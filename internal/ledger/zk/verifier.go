// Package zk verifies the issuer signature stored alongside each credential.
// The ledger calls a Verifier at issuance; the concrete scheme is pluggable.
package zk

import (
	"context"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"

	"credledger/pkg/domain"
)

// PublicKey is an issuer's two-coordinate signing key.
type PublicKey struct {
	X domain.Bytes32
	Y domain.Bytes32
}

// Signature is the (R8, S) signature over a credential hash.
type Signature struct {
	R8X domain.Bytes32
	R8Y domain.Bytes32
	S   domain.Bytes32
}

// Verifier reports whether sig signs message under pub. An error means the
// inputs could not be interpreted at all.
type Verifier interface {
	Verify(ctx context.Context, pub PublicKey, message domain.Bytes32, sig Signature) (bool, error)
}

var ErrMalformedPoint = errors.New("point is not a canonically encoded baby jubjub point")

// EdDSA verifies BabyJubJub EdDSA signatures with the MiMC hash. Coordinates,
// scalar and message are 32-byte big-endian field elements.
type EdDSA struct{}

func NewEdDSA() *EdDSA {
	return &EdDSA{}
}

func (EdDSA) Verify(_ context.Context, pub PublicKey, message domain.Bytes32, sig Signature) (bool, error) {
	var pk eddsa.PublicKey
	if err := setPoint(&pk.A, pub.X, pub.Y); err != nil {
		return false, fmt.Errorf("public key: %w", err)
	}

	var s eddsa.Signature
	if err := setPoint(&s.R, sig.R8X, sig.R8Y); err != nil {
		return false, fmt.Errorf("signature R8: %w", err)
	}
	copy(s.S[:], sig.S[:])

	ok, err := pk.Verify(s.Bytes(), message[:], mimc.NewMiMC())
	if err != nil {
		// malformed scalar or message outside the field
		return false, nil
	}
	return ok, nil
}

// setPoint rejects coordinates at or above the field modulus instead of
// reducing them, so each point has exactly one accepted encoding.
func setPoint(p *twistededwards.PointAffine, x, y domain.Bytes32) error {
	if err := p.X.SetBytesCanonical(x[:]); err != nil {
		return fmt.Errorf("%w: x: %v", ErrMalformedPoint, err)
	}
	if err := p.Y.SetBytesCanonical(y[:]); err != nil {
		return fmt.Errorf("%w: y: %v", ErrMalformedPoint, err)
	}
	if !p.IsOnCurve() {
		return ErrMalformedPoint
	}
	return nil
}

// FieldElement reduces b into the scalar field and returns its canonical
// bytes. Callers use it to turn an arbitrary digest into a signable message.
func FieldElement(b []byte) domain.Bytes32 {
	var e fr.Element
	e.SetBytes(b)
	return domain.Bytes32(e.Bytes())
}
