package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "credledger/pkg/domain-errors"
)

type sampleRequest struct {
	Authority string `json:"authority" validate:"required,pubkey"`
	Hash      string `json:"credential_hash" validate:"required,hex32"`
	Name      string `json:"name" validate:"notblank,max=50"`
}

type ValidationSuite struct {
	suite.Suite
	valid sampleRequest
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

func (s *ValidationSuite) SetupTest() {
	s.valid = sampleRequest{
		Authority: "11111111111111111111111111111111",
		Hash:      "0x" + strings.Repeat("ab", 32),
		Name:      "State DMV",
	}
}

func (s *ValidationSuite) TestValidate() {
	s.Run("accepts a well formed request", func() {
		s.NoError(Validate(s.valid))
	})

	s.Run("reports json field names", func() {
		req := s.valid
		req.Authority = ""
		err := Validate(req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("authority is required", err.Error())
	})

	s.Run("rejects non base58 keys", func() {
		req := s.valid
		req.Authority = "0OIl"
		s.Contains(Validate(req).Error(), "base58")
	})

	s.Run("rejects short hashes", func() {
		req := s.valid
		req.Hash = "abcd"
		s.Equal("credential_hash must be 32 hex encoded bytes", Validate(req).Error())
	})

	s.Run("rejects blank names", func() {
		req := s.valid
		req.Name = "   "
		s.Equal("name must not be blank", Validate(req).Error())
	})

	s.Run("max counts characters", func() {
		req := s.valid
		req.Name = strings.Repeat("n", 51)
		s.Equal("name must be at most 50", Validate(req).Error())
	})
}
