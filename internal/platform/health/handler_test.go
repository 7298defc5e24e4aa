package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLiveness(t *testing.T) {
	rec, body := serve(t, New("test"), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", body["status"])
}

func TestReadiness(t *testing.T) {
	up := func(context.Context) error { return nil }
	refused := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all checks up", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("postgres", up)
		h.RegisterOptional("kafka", up)
		rec, body := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, StateReady, body["status"])
	})

	t.Run("critical failure reports not ready", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", refused)
		h.RegisterCheck("postgres", up)
		rec, body := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, StateNotReady, body["status"])

		checks := body["checks"].([]any)
		require.Len(t, checks, 2)
		first := checks[0].(map[string]any)
		assert.Equal(t, "postgres", first["name"])
		second := checks[1].(map[string]any)
		assert.Equal(t, "redis", second["name"])
		assert.Equal(t, StateDown, second["state"])
		assert.Equal(t, "connection refused", second["error"])
	})

	t.Run("optional failure only degrades", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("postgres", up)
		h.RegisterOptional("kafka", refused)
		rec, body := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, StateDegraded, body["status"])
	})

	t.Run("critical failure outranks optional", func(t *testing.T) {
		h := New("test")
		h.RegisterOptional("kafka", refused)
		h.RegisterCheck("redis", refused)
		rec, body := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, StateNotReady, body["status"])
	})

	t.Run("re-registering replaces the check", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("postgres", refused)
		h.RegisterCheck("postgres", up)
		_, body := serve(t, h, "/health/ready")
		assert.Equal(t, StateReady, body["status"])
		assert.Len(t, body["checks"], 1)
	})

	t.Run("checks share the probe deadline", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("slow", func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			if !ok {
				return errors.New("no deadline")
			}
			return nil
		})
		rec, _ := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestStatus(t *testing.T) {
	rec, body := serve(t, New("staging"), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "staging", body["environment"])
	assert.Equal(t, Version, body["version"])
}

func TestStatusUptime(t *testing.T) {
	h := New("test")
	h.startTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return h.startTime.Add(90 * time.Second) }

	_, body := serve(t, h, "/health")
	assert.Equal(t, float64(90), body["uptime_seconds"])
	assert.Equal(t, "2026-01-01T00:01:30Z", body["timestamp"])
}
