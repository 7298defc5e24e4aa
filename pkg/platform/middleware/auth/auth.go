// Package auth authenticates instruction signers. A mutating request carries a
// bearer token signed by the caller's ed25519 key over the sha256 of the body.
package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"credledger/pkg/requestcontext"
)

// ReplayGuard records token IDs so a signed request is accepted once.
// Claim returns false when the ID was already seen.
type ReplayGuard interface {
	Claim(ctx context.Context, jti string, until time.Time) (bool, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireCaller verifies the bearer token against the request body and stores
// the signer in the context. guard may be nil.
func RequireCaller(verifier *Verifier, guard ReplayGuard, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token", "request_id", requestID)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeJSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
					return
				}
				writeJSONError(w, http.StatusBadRequest, "bad_request", "Request body could not be read")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			caller, claims, err := verifier.Verify(token, body)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if guard != nil {
				if claims.ID == "" {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token is missing jti")
					return
				}
				fresh, err := guard.Claim(ctx, claims.ID, claims.ExpiresAt.Time)
				if err != nil {
					logger.ErrorContext(ctx, "failed to record token id",
						"error", err,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate token")
					return
				}
				if !fresh {
					logger.WarnContext(ctx, "unauthorized access - token replayed",
						"jti", claims.ID,
						"caller", caller.String(),
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token has already been used")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, caller)))
		})
	}
}
