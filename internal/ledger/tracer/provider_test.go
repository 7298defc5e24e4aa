package tracer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	t.Run("none keeps the global provider", func(t *testing.T) {
		shutdown, err := setup(ExporterNone, "credledger", "test", io.Discard, log)
		require.NoError(t, err)
		assert.Same(t, original, otel.GetTracerProvider())
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("unknown exporter", func(t *testing.T) {
		_, err := setup("zipkin", "credledger", "test", io.Discard, log)
		assert.ErrorContains(t, err, "zipkin")
	})

	t.Run("stdout exports instruction spans on shutdown", func(t *testing.T) {
		var buf bytes.Buffer
		shutdown, err := setup(ExporterStdout, "credledger", "test", &buf, log)
		require.NoError(t, err)

		_, span := NewOTel().Start(context.Background(), SpanPrefix+"revoke_credential")
		span.End(nil)
		require.NoError(t, shutdown(context.Background()))

		assert.Contains(t, buf.String(), "ledger.revoke_credential")
		assert.Contains(t, buf.String(), "credledger")
	})
}
