package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthChecker(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") })

	t.Run("no clients is unhealthy", func(t *testing.T) {
		assert.Error(t, NewHealthChecker().Check(context.Background()))
	})

	t.Run("all clients up", func(t *testing.T) {
		h := NewHealthChecker().Add("producer", up).Add("projector", up)
		assert.NoError(t, h.Check(context.Background()))
	})

	t.Run("names the failing client", func(t *testing.T) {
		h := NewHealthChecker().Add("producer", up).Add("projector", down)
		err := h.Check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "projector: dial tcp")
		assert.NotContains(t, err.Error(), "producer")
	})

	t.Run("nil clients are skipped", func(t *testing.T) {
		h := NewHealthChecker().Add("producer", up).Add("projector", nil)
		assert.NoError(t, h.Check(context.Background()))
	})
}
