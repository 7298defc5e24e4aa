// Package tracer is a small tracing seam for ledger instructions. Services
// depend on the Tracer interface; production wires the OpenTelemetry adapter.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span; a non-nil err marks it failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span name prefix; instruction spans are "ledger.<instruction>".
const SpanPrefix = "ledger."

const (
	AttrInstruction = "ledger.instruction"
	AttrCaller      = "ledger.caller"
	AttrAddress     = "ledger.address"
	AttrErrorCode   = "ledger.error_code"
	AttrErrorName   = "ledger.error_name"
	AttrCacheHit    = "cache.hit"
)

const (
	EventVerified  = "zk.verified"
	EventCommitted = "tx.committed"
	EventCachePut  = "cache.put"
	EventRejected  = "instruction.rejected"
)
