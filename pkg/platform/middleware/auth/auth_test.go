package auth

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/iotest"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"credledger/pkg/domain"
	"credledger/pkg/requestcontext"
)

type AuthSuite struct {
	suite.Suite
	priv     ed25519.PrivateKey
	signer   domain.Pubkey
	verifier *Verifier
	logger   *slog.Logger
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	seed := sha256.Sum256([]byte("auth-suite"))
	s.priv = ed25519.NewKeyFromSeed(seed[:])
	pk, err := domain.PubkeyFromEd25519(s.priv.Public().(ed25519.PublicKey))
	s.Require().NoError(err)
	s.signer = pk
	s.verifier = NewVerifier(5 * time.Minute)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *AuthSuite) TestVerify() {
	body := []byte(`{"holder":"abc"}`)

	s.Run("accepts a token signed over the body", func() {
		token, err := SignRequest(s.priv, body, time.Now(), time.Minute)
		s.Require().NoError(err)

		caller, claims, err := s.verifier.Verify(token, body)
		s.Require().NoError(err)
		s.Equal(s.signer, caller)
		s.NotEmpty(claims.ID)
	})

	s.Run("rejects a different body", func() {
		token, err := SignRequest(s.priv, body, time.Now(), time.Minute)
		s.Require().NoError(err)

		_, _, err = s.verifier.Verify(token, []byte(`{"holder":"xyz"}`))
		s.ErrorIs(err, ErrBodyMismatch)
	})

	s.Run("rejects expired tokens", func() {
		token, err := SignRequest(s.priv, body, time.Now().Add(-time.Hour), time.Minute)
		s.Require().NoError(err)

		_, _, err = s.verifier.Verify(token, body)
		s.ErrorIs(err, jwt.ErrTokenExpired)
	})

	s.Run("rejects long lived tokens", func() {
		token, err := SignRequest(s.priv, body, time.Now(), time.Hour)
		s.Require().NoError(err)

		_, _, err = s.verifier.Verify(token, body)
		s.ErrorIs(err, ErrTokenTooLong)
	})

	s.Run("rejects a subject that did not sign", func() {
		otherSeed := sha256.Sum256([]byte("someone-else"))
		other := ed25519.NewKeyFromSeed(otherSeed[:])
		token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, CallerClaims{
			BodySHA256: BodyDigest(body),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   s.signer.String(),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		})
		signed, err := token.SignedString(other)
		s.Require().NoError(err)

		_, _, err = s.verifier.Verify(signed, body)
		s.ErrorIs(err, jwt.ErrTokenSignatureInvalid)
	})

	s.Run("rejects HMAC tokens", func() {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, CallerClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   s.signer.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		})
		signed, err := token.SignedString([]byte("secret"))
		s.Require().NoError(err)

		_, _, err = s.verifier.Verify(signed, body)
		s.Error(err)
	})
}

type failingGuard struct {
	err error
}

func (g failingGuard) Claim(context.Context, string, time.Time) (bool, error) {
	return false, g.err
}

func (s *AuthSuite) serve(guard ReplayGuard, req *http.Request) (*httptest.ResponseRecorder, domain.Pubkey, []byte) {
	var caller domain.Pubkey
	var seen []byte
	handler := RequireCaller(s.verifier, guard, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, _ = requestcontext.Caller(r.Context())
		seen, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, caller, seen
}

func (s *AuthSuite) signedRequest(body []byte) *http.Request {
	token, err := SignRequest(s.priv, body, time.Now(), time.Minute)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/v1/credentials", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (s *AuthSuite) TestRequireCaller() {
	body := []byte(`{"holder":"abc"}`)

	s.Run("stores caller and preserves body", func() {
		rec, caller, seen := s.serve(nil, s.signedRequest(body))
		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal(s.signer, caller)
		s.Equal(body, seen)
	})

	s.Run("missing header", func() {
		req := httptest.NewRequest(http.MethodPost, "/v1/credentials", bytes.NewReader(body))
		rec, _, _ := s.serve(nil, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("replayed token", func() {
		guard := NewMemoryReplayGuard()
		req := s.signedRequest(body)
		token := req.Header.Get("Authorization")

		rec, _, _ := s.serve(guard, req)
		s.Equal(http.StatusNoContent, rec.Code)

		replay := httptest.NewRequest(http.MethodPost, "/v1/credentials", bytes.NewReader(body))
		replay.Header.Set("Authorization", token)
		rec, _, _ = s.serve(guard, replay)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("oversized body", func() {
		req := s.signedRequest(body)
		rec := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(rec, req.Body, 4)
		handler := RequireCaller(s.verifier, nil, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		handler.ServeHTTP(rec, req)
		s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
		s.JSONEq(`{"error":"payload_too_large","error_description":"Request body too large"}`, rec.Body.String())
	})

	s.Run("unreadable body", func() {
		req := s.signedRequest(body)
		req.Body = io.NopCloser(iotest.ErrReader(errors.New("connection reset")))
		rec, _, _ := s.serve(nil, req)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), `"bad_request"`)
	})

	s.Run("guard failure is internal", func() {
		rec, _, _ := s.serve(failingGuard{err: errors.New("redis down")}, s.signedRequest(body))
		s.Equal(http.StatusInternalServerError, rec.Code)
	})
}
