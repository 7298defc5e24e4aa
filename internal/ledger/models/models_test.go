package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"credledger/pkg/domain"
	dErrors "credledger/pkg/domain-errors"
)

func pk(b byte) domain.Pubkey {
	var p domain.Pubkey
	p[0] = b
	p[31] = b
	return p
}

func hash(b byte) domain.Bytes32 {
	var h domain.Bytes32
	h[0] = b
	return h
}

// IssuerAccountSuite tests issuer identity behaviors.
type IssuerAccountSuite struct {
	suite.Suite
}

func TestIssuerAccountSuite(t *testing.T) {
	suite.Run(t, new(IssuerAccountSuite))
}

func (s *IssuerAccountSuite) TestNew() {
	s.Run("starts active with zero issuance", func() {
		acct, err := NewIssuerAccount(pk(1), "Acme KYC", hash(1), hash(2), 1000, 254)
		s.Require().NoError(err)
		s.True(acct.IsActive)
		s.Zero(acct.CredentialsIssued)
		s.Equal(int64(1000), acct.RegisteredAt)
		s.Equal(uint8(254), acct.Bump)
	})

	s.Run("name at the bound is accepted", func() {
		_, err := NewIssuerAccount(pk(1), strings.Repeat("a", MaxIssuerNameLength), hash(1), hash(2), 0, 255)
		s.NoError(err)
	})

	s.Run("name over the bound is rejected", func() {
		_, err := NewIssuerAccount(pk(1), strings.Repeat("a", MaxIssuerNameLength+1), hash(1), hash(2), 0, 255)
		s.ErrorIs(err, ErrNameTooLong)
	})

	s.Run("bound counts bytes", func() {
		// 26 two-byte runes
		_, err := NewIssuerAccount(pk(1), strings.Repeat("é", 26), hash(1), hash(2), 0, 255)
		s.ErrorIs(err, ErrNameTooLong)
	})

	s.Run("empty name is rejected", func() {
		_, err := NewIssuerAccount(pk(1), "", hash(1), hash(2), 0, 255)
		s.ErrorIs(err, ErrInvalidIssuerName)
	})
}

func (s *IssuerAccountSuite) TestLifecycle() {
	s.Run("deactivate active issuer succeeds", func() {
		acct := &IssuerAccount{IsActive: true}
		s.Require().NoError(acct.Deactivate())
		s.False(acct.IsActive)
	})

	s.Run("deactivate inactive issuer is a conflict", func() {
		acct := &IssuerAccount{}
		err := acct.Deactivate()
		s.ErrorIs(err, ErrIssuerAlreadyInactive)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("reactivate inactive issuer succeeds", func() {
		acct := &IssuerAccount{}
		s.Require().NoError(acct.Reactivate())
		s.True(acct.IsActive)
	})

	s.Run("reactivate active issuer is a conflict", func() {
		acct := &IssuerAccount{IsActive: true}
		s.ErrorIs(acct.Reactivate(), ErrIssuerAlreadyActive)
	})

	s.Run("issuance counter only grows", func() {
		acct := &IssuerAccount{IsActive: true, CredentialsIssued: 41}
		acct.RecordIssuance()
		s.Equal(uint64(42), acct.CredentialsIssued)
	})
}

// RegistrySuite tests the fixed-capacity trust set.
type RegistrySuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) TestRegister() {
	s.Run("appends in order", func() {
		reg := NewIssuerRegistry(pk(9), 255)
		s.Require().NoError(reg.Register(pk(1)))
		s.Require().NoError(reg.Register(pk(2)))
		s.Equal([]domain.Pubkey{pk(1), pk(2)}, reg.Members())
		s.Equal(uint8(2), reg.Count)
	})

	s.Run("rejects duplicates", func() {
		reg := NewIssuerRegistry(pk(9), 255)
		s.Require().NoError(reg.Register(pk(1)))
		s.ErrorIs(reg.Register(pk(1)), ErrIssuerAlreadyRegistered)
		s.Equal(uint8(1), reg.Count)
	})

	s.Run("rejects when full", func() {
		reg := NewIssuerRegistry(pk(9), 255)
		for i := 0; i < RegistryCapacity; i++ {
			s.Require().NoError(reg.Register(pk(byte(i + 1))))
		}
		err := reg.Register(pk(200))
		s.ErrorIs(err, ErrRegistryFull)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(uint8(RegistryCapacity), reg.Count)
	})
}

func (s *RegistrySuite) TestDeregister() {
	s.Run("shifts remaining members and clears the tail", func() {
		reg := NewIssuerRegistry(pk(9), 255)
		for _, b := range []byte{1, 2, 3} {
			s.Require().NoError(reg.Register(pk(b)))
		}
		s.Require().NoError(reg.Deregister(pk(2)))
		s.Equal([]domain.Pubkey{pk(1), pk(3)}, reg.Members())
		s.True(reg.Issuers[2].IsZero())
		s.False(reg.Contains(pk(2)))
	})

	s.Run("rejects non members", func() {
		reg := NewIssuerRegistry(pk(9), 255)
		s.ErrorIs(reg.Deregister(pk(1)), ErrIssuerNotRegistered)
	})

	s.Run("frees a slot in a full registry", func() {
		reg := NewIssuerRegistry(pk(9), 255)
		for i := 0; i < RegistryCapacity; i++ {
			s.Require().NoError(reg.Register(pk(byte(i + 1))))
		}
		s.Require().NoError(reg.Deregister(pk(1)))
		s.NoError(reg.Register(pk(200)))
	})
}

// CredentialSuite tests credential window validation and revocation.
type CredentialSuite struct {
	suite.Suite
}

func TestCredentialSuite(t *testing.T) {
	suite.Run(t, new(CredentialSuite))
}

func (s *CredentialSuite) TestWindow() {
	cases := []struct {
		name                string
		issuedAt, expiresAt int64
		now                 int64
		want                error
	}{
		{"issued now is allowed", 1000, 2000, 1000, nil},
		{"issued in the past", 500, 2000, 1000, nil},
		{"issued in the future", 1001, 2000, 1000, ErrInvalidIssuedTimestamp},
		{"expiry equal to now", 500, 1000, 1000, ErrInvalidExpiryTimestamp},
		{"expiry in the past", 100, 900, 1000, ErrInvalidExpiryTimestamp},
		{"expiry equal to issuance", 1000, 1000, 1000, ErrExpiryBeforeIssuance},
		{"inverted window in the future", 3000, 2500, 1000, ErrExpiryBeforeIssuance},
		{"inverted window in the past", 900, 800, 1000, ErrExpiryBeforeIssuance},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			err := ValidateWindow(tc.issuedAt, tc.expiresAt, tc.now)
			if tc.want == nil {
				s.NoError(err)
				return
			}
			s.ErrorIs(err, tc.want)
		})
	}

	s.Run("errors are distinguishable", func() {
		s.False(errors.Is(ErrInvalidIssuedTimestamp, ErrInvalidExpiryTimestamp))
		s.False(errors.Is(ErrExpiryBeforeIssuance, ErrInvalidExpiryTimestamp))
	})
}

func (s *CredentialSuite) TestNew() {
	s.Run("zero hash is rejected", func() {
		_, err := NewUserCredential(pk(1), pk(2), domain.Bytes32{}, 1000, 2000, 1000, Signature{}, 255)
		s.ErrorIs(err, ErrInvalidCredentialHash)
	})

	s.Run("populated verbatim", func() {
		sig := Signature{R8X: hash(1), R8Y: hash(2), S: hash(3)}
		cred, err := NewUserCredential(pk(1), pk(2), hash(7), 1000, 2000, 1000, sig, 253)
		s.Require().NoError(err)
		s.Equal(pk(1), cred.Holder)
		s.Equal(pk(2), cred.Issuer)
		s.Equal(hash(7), cred.CredentialHash)
		s.Equal(sig, cred.Signature())
		s.False(cred.IsRevoked)
		s.Equal(uint8(253), cred.Bump)
	})
}

func (s *CredentialSuite) TestRevoke() {
	cred := &UserCredential{ExpiresAt: 2000}
	s.Require().NoError(cred.Revoke())
	s.True(cred.IsRevoked)

	err := cred.Revoke()
	s.ErrorIs(err, ErrCredentialAlreadyRevoked)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.True(cred.IsRevoked)
}

func (s *CredentialSuite) TestStatusAt() {
	cred := &UserCredential{IssuedAt: 1000, ExpiresAt: 2000}
	s.Equal(CredentialStatusActive, cred.StatusAt(1999))
	s.Equal(CredentialStatusExpired, cred.StatusAt(2000))

	cred.IsRevoked = true
	s.Equal(CredentialStatusRevoked, cred.StatusAt(1500))
}

func TestProgramErrors(t *testing.T) {
	suite.Run(t, new(programErrorSuite))
}

type programErrorSuite struct {
	suite.Suite
}

func (s *programErrorSuite) TestMatching() {
	s.Run("matches by program code", func() {
		s.ErrorIs(ErrNameTooLong.With("name is 51 bytes"), ErrNameTooLong)
		s.NotErrorIs(ErrNameTooLong, ErrRegistryFull)
	})

	s.Run("exposes kind through the chain", func() {
		s.True(dErrors.HasCode(ErrUnauthorizedAdmin, dErrors.CodeForbidden))
		s.True(dErrors.HasCode(ErrCredentialNotFound, dErrors.CodeNotFound))
	})

	s.Run("extracts from wrapped errors", func() {
		wrapped := dErrors.Wrap(ErrDuplicateCredential, dErrors.CodeInternal, "issue credential")
		pe, ok := AsProgramError(wrapped)
		s.Require().True(ok)
		s.Equal(uint32(6012), pe.Code)
		s.Equal("DuplicateCredential", pe.Name)
	})
}
