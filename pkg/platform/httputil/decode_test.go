package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/validation"
)

type revokeBody struct {
	Holder string `json:"holder"`
	Reason string `json:"reason"`
}

func (r *revokeBody) Normalize() {
	r.Holder = strings.TrimSpace(r.Holder)
}

func (r *revokeBody) Validate() error {
	if r.Holder == "" {
		return errors.New("holder is required")
	}
	return nil
}

type conflictingBody struct{}

func (conflictingBody) Validate() error {
	return dErrors.New(dErrors.CodeConflict, "already revoked")
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/credentials/revoke", strings.NewReader(body))
}

func TestDecode(t *testing.T) {
	t.Run("single object decodes", func(t *testing.T) {
		got, err := Decode[revokeBody](post(`{"holder":"abc","reason":"lost"}`))
		require.NoError(t, err)
		assert.Equal(t, "abc", got.Holder)
		assert.Equal(t, "lost", got.Reason)
	})

	cases := []struct {
		name string
		body string
		code dErrors.Code
	}{
		{"empty body", ``, dErrors.CodeBadRequest},
		{"malformed json", `{"holder":`, dErrors.CodeBadRequest},
		{"unknown field", `{"holder":"abc","dob":"1990-01-01"}`, dErrors.CodeBadRequest},
		{"trailing object", `{"holder":"abc"}{"holder":"def"}`, dErrors.CodeBadRequest},
		{"oversize body", `{"holder":"` + strings.Repeat("a", validation.MaxBodySize) + `"}`, dErrors.CodePayloadTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode[revokeBody](post(tc.body))
			require.Error(t, err)
			assert.Equal(t, tc.code, dErrors.CodeOf(err))
		})
	}
}

func TestPrepare(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		req := &revokeBody{Holder: "  abc  "}
		require.NoError(t, Prepare(req))
		assert.Equal(t, "abc", req.Holder)
	})

	t.Run("plain validation errors become validation_failed", func(t *testing.T) {
		err := Prepare(&revokeBody{Holder: "   "})
		assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
	})

	t.Run("domain errors keep their code", func(t *testing.T) {
		err := Prepare(&conflictingBody{})
		assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
	})

	t.Run("types without hooks pass", func(t *testing.T) {
		assert.NoError(t, Prepare(&struct{ Name string }{}))
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("returns the prepared request", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeAndPrepare[revokeBody](w, post(`{"holder":" abc "}`), logger)
		require.True(t, ok)
		assert.Equal(t, "abc", got.Holder)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("writes the error response on failure", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeAndPrepare[revokeBody](w, post(`{"holder":""}`), logger)
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "validation_failed", resp.Error)
		assert.Equal(t, "holder is required", resp.ErrorDescription)
	})
}
