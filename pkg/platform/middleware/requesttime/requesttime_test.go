package requesttime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware_SetsTimeInContext(t *testing.T) {
	var captured time.Time
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = Now(r.Context())
	}))

	before := time.Now()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	after := time.Now()

	assert.False(t, captured.Before(before.Truncate(time.Nanosecond)))
	assert.False(t, captured.After(after))
}

func TestWithClock_TimeIsConsistentWithinRequest(t *testing.T) {
	calls := 0
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		calls++
		return fixed.Add(time.Duration(calls) * time.Hour)
	}

	var first, second int64
	handler := WithClock(clock)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = Unix(r.Context())
		second = Unix(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, fixed.Add(time.Hour).Unix(), first)
}

func TestNow_FallsBackWithoutMiddleware(t *testing.T) {
	assert.WithinDuration(t, time.Now(), Now(context.Background()), time.Second)
}

func TestWithTime(t *testing.T) {
	fixed := time.Unix(1_700_000_000, 0)
	assert.Equal(t, int64(1_700_000_000), Unix(WithTime(context.Background(), fixed)))
}
