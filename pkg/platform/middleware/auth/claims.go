package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"credledger/pkg/domain"
)

var (
	ErrBodyMismatch = errors.New("body_sha256 does not match request body")
	ErrTokenTooLong = errors.New("token lifetime exceeds maximum")
)

// CallerClaims bind a signed request to its signer and body. The subject is the
// base58 public key of the signer; the token is signed with that key.
type CallerClaims struct {
	BodySHA256 string `json:"body_sha256"`
	jwt.RegisteredClaims
}

// BodyDigest is the hex sha256 of a request body.
func BodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// SignRequest produces a bearer token authorising body on behalf of the key holder.
func SignRequest(priv ed25519.PrivateKey, body []byte, now time.Time, ttl time.Duration) (string, error) {
	signer, err := domain.PubkeyFromEd25519(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, CallerClaims{
		BodySHA256: BodyDigest(body),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   signer.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(priv)
}

// Verifier checks caller tokens against the key named in their subject.
type Verifier struct {
	maxAge time.Duration
	now    func() time.Time
}

func NewVerifier(maxAge time.Duration) *Verifier {
	return &Verifier{maxAge: maxAge, now: time.Now}
}

// Verify returns the signer and claims of a token that authorises body.
func (v *Verifier) Verify(tokenString string, body []byte) (domain.Pubkey, *CallerClaims, error) {
	claims := &CallerClaims{}
	var signer domain.Pubkey
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		pk, err := domain.ParsePubkey(claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("subject: %w", err)
		}
		signer = pk
		return pk.Ed25519(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return domain.Pubkey{}, nil, err
	}
	if claims.IssuedAt == nil || claims.ExpiresAt.Sub(claims.IssuedAt.Time) > v.maxAge {
		return domain.Pubkey{}, nil, ErrTokenTooLong
	}
	if claims.BodySHA256 != BodyDigest(body) {
		return domain.Pubkey{}, nil, ErrBodyMismatch
	}
	return signer, claims, nil
}
