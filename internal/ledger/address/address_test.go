package address

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"filippo.io/edwards25519"
	"github.com/stretchr/testify/suite"

	"credledger/pkg/domain"
)

type AddressSuite struct {
	suite.Suite
	programID domain.Pubkey
	deriver   *Deriver
}

func TestAddressSuite(t *testing.T) {
	suite.Run(t, new(AddressSuite))
}

func (s *AddressSuite) SetupTest() {
	s.programID = domain.MustParsePubkey("5AFgFmdQthc3DZKmygrsGZkNnCN9JYMefADiAvNXpYCg")
	s.deriver = NewDeriver(s.programID)
}

func key(b byte) domain.Pubkey {
	var pk domain.Pubkey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func (s *AddressSuite) TestCreate() {
	s.Run("hashes seeds bump program id and marker", func() {
		seeds := [][]byte{[]byte("config")}
		addr, bump, err := Find(s.programID, seeds)
		s.Require().NoError(err)

		var buf bytes.Buffer
		buf.WriteString("config")
		buf.WriteByte(bump)
		buf.Write(s.programID[:])
		buf.WriteString("ProgramDerivedAddress")
		s.Equal(domain.Pubkey(sha256.Sum256(buf.Bytes())), addr)
	})

	s.Run("derived addresses are off curve", func() {
		addr, _, err := Find(s.programID, IssuerSeeds(key(7)))
		s.Require().NoError(err)
		_, err = new(edwards25519.Point).SetBytes(addr[:])
		s.Error(err)
	})

	s.Run("rejects oversized seed", func() {
		_, err := Create(s.programID, [][]byte{make([]byte, MaxSeedLength+1)}, 255)
		s.ErrorIs(err, ErrMaxSeedLength)
	})

	s.Run("rejects too many seeds", func() {
		seeds := make([][]byte, MaxSeeds)
		_, err := Create(s.programID, seeds, 255)
		s.ErrorIs(err, ErrTooManySeeds)
	})
}

func (s *AddressSuite) TestFindIsCanonical() {
	seeds := CredentialSeeds(key(1), key(2))
	addr, bump, err := Find(s.programID, seeds)
	s.Require().NoError(err)

	for b := 255; b > int(bump); b-- {
		_, err := Create(s.programID, seeds, uint8(b))
		s.True(errors.Is(err, ErrOnCurve), "bump %d above canonical must be on curve", b)
	}
	again, err := Create(s.programID, seeds, bump)
	s.Require().NoError(err)
	s.Equal(addr, again)
}

func (s *AddressSuite) TestSeedTuples() {
	s.Equal([][]byte{[]byte("config")}, ConfigSeeds())
	s.Equal([][]byte{[]byte("issuer_registry")}, RegistrySeeds())
	s.Equal([][]byte{[]byte("issuer"), key(4).Bytes()}, IssuerSeeds(key(4)),
		"issuer records are keyed by authority alone, one per authority")
	s.Equal([][]byte{[]byte("credential"), key(1).Bytes(), key(2).Bytes()}, CredentialSeeds(key(1), key(2)))

	s.Run("deriver uses the authority-only issuer seed", func() {
		got, err := s.deriver.Issuer(key(4))
		s.Require().NoError(err)
		addr, bump, err := Find(s.programID, [][]byte{[]byte("issuer"), key(4).Bytes()})
		s.Require().NoError(err)
		s.Equal(Derived{Address: addr, Bump: bump}, got)
	})
}

func (s *AddressSuite) TestDeterminism() {
	s.Run("same inputs same address", func() {
		a, err := s.deriver.Credential(key(1), key(2))
		s.Require().NoError(err)
		b, err := s.deriver.Credential(key(1), key(2))
		s.Require().NoError(err)
		s.Equal(a, b)
	})

	s.Run("distinct holders never collide", func() {
		a, err := s.deriver.Credential(key(1), key(2))
		s.Require().NoError(err)
		b, err := s.deriver.Credential(key(3), key(2))
		s.Require().NoError(err)
		s.NotEqual(a.Address, b.Address)
	})

	s.Run("seed order matters", func() {
		a, err := s.deriver.Credential(key(1), key(2))
		s.Require().NoError(err)
		b, err := s.deriver.Credential(key(2), key(1))
		s.Require().NoError(err)
		s.NotEqual(a.Address, b.Address)
	})

	s.Run("program id scopes every address", func() {
		other := NewDeriver(key(9))
		a, err := s.deriver.Config()
		s.Require().NoError(err)
		b, err := other.Config()
		s.Require().NoError(err)
		s.NotEqual(a.Address, b.Address)
	})

	s.Run("singletons are distinct", func() {
		cfg, err := s.deriver.Config()
		s.Require().NoError(err)
		reg, err := s.deriver.Registry()
		s.Require().NoError(err)
		s.NotEqual(cfg.Address, reg.Address)
	})
}

func (s *AddressSuite) TestVerify() {
	issuer, err := s.deriver.Issuer(key(4))
	s.Require().NoError(err)

	s.Run("accepts the canonical address", func() {
		s.NoError(s.deriver.Verify(issuer.Address, issuer.Bump, IssuerSeeds(key(4))))
	})

	s.Run("rejects a wrong bump", func() {
		err := s.deriver.Verify(issuer.Address, issuer.Bump-1, IssuerSeeds(key(4)))
		s.ErrorIs(err, ErrInvalidRecordAddress)
	})

	s.Run("rejects another authority", func() {
		err := s.deriver.Verify(issuer.Address, issuer.Bump, IssuerSeeds(key(5)))
		s.ErrorIs(err, ErrInvalidRecordAddress)
	})
}
