package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/requestcontext"
	"credledger/pkg/validation"
)

type Validatable interface {
	Validate() error
}

type Normalizable interface {
	Normalize()
}

// Decode reads exactly one JSON object from the body into T. Unknown fields
// and trailing data are rejected so a signed body has one interpretation.
func Decode[T any](r *http.Request) (*T, error) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, validation.MaxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, dErrors.New(dErrors.CodePayloadTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			return nil, dErrors.New(dErrors.CodeBadRequest, "request body is required")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
		}
	}
	if dec.More() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body must hold a single JSON object")
	}
	return &req, nil
}

// Prepare normalizes then validates req. Plain errors become validation errors.
func Prepare(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	v, ok := req.(Validatable)
	if !ok {
		return nil
	}
	err := v.Validate()
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.New(dErrors.CodeValidation, err.Error())
}

// DecodeAndPrepare decodes and prepares the body, writing the error response
// itself on failure.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()
	req, err := Decode[T](r)
	if err == nil {
		err = Prepare(req)
	}
	if err != nil {
		logger.WarnContext(ctx, "rejected request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
