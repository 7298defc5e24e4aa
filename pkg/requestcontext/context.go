// Package requestcontext holds request-scoped values set by middleware and read
// by services. It has no net/http dependency.
package requestcontext

import (
	"context"

	"credledger/pkg/domain"
)

type (
	callerKey    struct{}
	requestIDKey struct{}
	clientIPKey  struct{}
	clientKey    struct{}
)

// Caller is the authenticated signer of the current instruction.
// Returns the zero key and false when the request was not authenticated.
func Caller(ctx context.Context) (domain.Pubkey, bool) {
	pk, ok := ctx.Value(callerKey{}).(domain.Pubkey)
	return pk, ok
}

func WithCaller(ctx context.Context, caller domain.Pubkey) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClientIP is the resolved client address after trusted proxy handling.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// Client is a short description of the calling software, such as "Go-http-client".
func Client(ctx context.Context) string {
	if v, ok := ctx.Value(clientKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata stores the client IP and software description.
func WithClientMetadata(ctx context.Context, ip, client string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, clientKey{}, client)
}
