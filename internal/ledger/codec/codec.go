// Package codec reads and writes ledger records in their fixed-width on-ledger
// layout: an 8-byte type tag followed by Borsh-encoded fields in declaration
// order, zero-padded to the record's allocated size.
package codec

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"credledger/internal/ledger/models"
)

const DiscriminatorLength = 8

// Discriminator is the 8-byte type tag prefixed to every record.
type Discriminator [DiscriminatorLength]byte

var (
	ErrShortRecord           = errors.New("record data shorter than discriminator")
	ErrDiscriminatorMismatch = errors.New("record discriminator mismatch")
	ErrRecordOverflow        = errors.New("encoded record exceeds allocated size")
	ErrUnknownRecord         = errors.New("unknown record type")
)

// AccountDiscriminator returns sha256("account:<name>")[:8].
func AccountDiscriminator(name string) Discriminator {
	sum := sha256.Sum256([]byte("account:" + name))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

// Record names as they appear in the type tag.
const (
	ProgramConfigName  = "ProgramConfig"
	IssuerRegistryName = "IssuerRegistry"
	IssuerAccountName  = "IssuerAccount"
	UserCredentialName = "UserCredential"
)

// Allocated sizes including the discriminator.
const (
	ProgramConfigSize  = DiscriminatorLength + 32 + 1 + 1
	IssuerRegistrySize = DiscriminatorLength + 32 + models.RegistryCapacity*32 + 1 + 1
	IssuerAccountSize  = DiscriminatorLength + 32 + 32 + 32 + (4 + models.MaxIssuerNameLength) + 1 + 8 + 8 + 1
	UserCredentialSize = DiscriminatorLength + 32 + 32 + 32 + 8 + 8 + 32 + 32 + 32 + 1 + 1
)

var (
	ProgramConfigDiscriminator  = AccountDiscriminator(ProgramConfigName)
	IssuerRegistryDiscriminator = AccountDiscriminator(IssuerRegistryName)
	IssuerAccountDiscriminator  = AccountDiscriminator(IssuerAccountName)
	UserCredentialDiscriminator = AccountDiscriminator(UserCredentialName)
)

type layout struct {
	name string
	disc Discriminator
	size int
}

func layoutOf(record any) (layout, error) {
	switch record.(type) {
	case *models.ProgramConfig:
		return layout{ProgramConfigName, ProgramConfigDiscriminator, ProgramConfigSize}, nil
	case *models.IssuerRegistry:
		return layout{IssuerRegistryName, IssuerRegistryDiscriminator, IssuerRegistrySize}, nil
	case *models.IssuerAccount:
		return layout{IssuerAccountName, IssuerAccountDiscriminator, IssuerAccountSize}, nil
	case *models.UserCredential:
		return layout{UserCredentialName, UserCredentialDiscriminator, UserCredentialSize}, nil
	default:
		return layout{}, fmt.Errorf("%w: %T", ErrUnknownRecord, record)
	}
}

// Encode serializes a record pointer into its allocated byte layout.
func Encode(record any) ([]byte, error) {
	l, err := layoutOf(record)
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, l.size))
	buf.Write(l.disc[:])
	if err := bin.NewBorshEncoder(buf).Encode(record); err != nil {
		return nil, fmt.Errorf("encode %s: %w", l.name, err)
	}
	if buf.Len() > l.size {
		return nil, fmt.Errorf("%w: %s is %d bytes, allocated %d", ErrRecordOverflow, l.name, buf.Len(), l.size)
	}

	out := make([]byte, l.size)
	copy(out, buf.Bytes())
	return out, nil
}

// Record is the set of types stored in the ledger.
type Record interface {
	models.ProgramConfig | models.IssuerRegistry | models.IssuerAccount | models.UserCredential
}

// Decode parses data as a T, checking the type tag first.
func Decode[T Record](data []byte) (*T, error) {
	out := new(T)
	l, err := layoutOf(out)
	if err != nil {
		return nil, err
	}
	disc, err := DiscriminatorOf(data)
	if err != nil {
		return nil, err
	}
	if disc != l.disc {
		return nil, fmt.Errorf("%w: want %s", ErrDiscriminatorMismatch, l.name)
	}
	if err := bin.NewBorshDecoder(data[DiscriminatorLength:]).Decode(out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.name, err)
	}
	return out, nil
}

// DiscriminatorOf returns the type tag of raw record data.
func DiscriminatorOf(data []byte) (Discriminator, error) {
	var d Discriminator
	if len(data) < DiscriminatorLength {
		return d, ErrShortRecord
	}
	copy(d[:], data[:DiscriminatorLength])
	return d, nil
}

// DiscriminatorFor returns the type tag a record pointer is stored under.
func DiscriminatorFor(record any) (Discriminator, error) {
	l, err := layoutOf(record)
	if err != nil {
		return Discriminator{}, err
	}
	return l.disc, nil
}
