package tracer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"credledger/internal/ledger/tracer"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	newCtx, span := tracer.NewNoop().Start(ctx, tracer.SpanPrefix+"issue_credential",
		tracer.String(tracer.AttrInstruction, "issue_credential"),
	)

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
	span.AddEvent(tracer.EventCommitted)
	span.End(errors.New("boom"))
}

func TestOTelTracerWithProvidedTracer(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))
	_, span := tr.Start(context.Background(), "ledger.revoke_credential",
		tracer.Int64("count", 3),
		tracer.Duration("elapsed", 1500*time.Millisecond),
		tracer.Attribute{Key: "ignored", Value: struct{}{}},
	)
	require.NotNil(t, span)
	span.AddEvent(tracer.EventVerified, tracer.Bool("ok", true))
	span.End(nil)
}

func TestDurationIsMilliseconds(t *testing.T) {
	assert.Equal(t, int64(1500), tracer.Duration("d", 1500*time.Millisecond).Value)
}

type rejection struct{}

func (rejection) Error() string     { return "issuer is inactive" }
func (rejection) ErrorCode() uint32 { return 6003 }
func (rejection) ErrorName() string { return "IssuerInactive" }

func recordSpan(t *testing.T, err error) sdktrace.ReadOnlySpan {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := tracer.NewOTel(tracer.WithOTelTracer(provider.Tracer("test")))

	_, span := tr.Start(context.Background(), tracer.SpanPrefix+"issue_credential",
		tracer.String(tracer.AttrInstruction, "issue_credential"),
	)
	span.End(err)

	ended := rec.Ended()
	require.Len(t, ended, 1)
	return ended[0]
}

func TestOTelSpanOutcome(t *testing.T) {
	t.Run("committed", func(t *testing.T) {
		span := recordSpan(t, nil)
		assert.Equal(t, codes.Ok, span.Status().Code)
	})

	t.Run("program rejection is annotated, not failed", func(t *testing.T) {
		span := recordSpan(t, fmt.Errorf("issue: %w", rejection{}))
		assert.Equal(t, codes.Unset, span.Status().Code)

		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range span.Attributes() {
			attrs[kv.Key] = kv.Value
		}
		assert.Equal(t, int64(6003), attrs[tracer.AttrErrorCode].AsInt64())
		assert.Equal(t, "IssuerInactive", attrs[tracer.AttrErrorName].AsString())
		require.Len(t, span.Events(), 1)
		assert.Equal(t, tracer.EventRejected, span.Events()[0].Name)
	})

	t.Run("infrastructure failure marks the span", func(t *testing.T) {
		span := recordSpan(t, errors.New("connection reset"))
		assert.Equal(t, codes.Error, span.Status().Code)
		assert.Equal(t, "connection reset", span.Status().Description)
	})
}
