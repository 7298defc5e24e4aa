package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "credledger/pkg/domain-errors"
)

// ProgramError is implemented by errors that carry a stable numeric code and name.
type ProgramError interface {
	error
	ErrorCode() uint32
	ErrorName() string
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string             `json:"error"`
	ErrorDescription string             `json:"error_description,omitempty"`
	ProgramError     *ProgramErrorField `json:"program_error,omitempty"`
}

type ProgramErrorField struct {
	Code uint32 `json:"code"`
	Name string `json:"name"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: DomainCodeToHTTPCode(dErrors.CodeInternal),
		})
		return
	}

	resp := ErrorResponse{
		Error:            DomainCodeToHTTPCode(domainErr.Code),
		ErrorDescription: domainErr.Message,
	}
	var pe ProgramError
	if errors.As(err, &pe) {
		resp.ProgramError = &ProgramErrorField{Code: pe.ErrorCode(), Name: pe.ErrorName()}
	}
	WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), resp)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the JSON error string.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeUnavailable:
		return "unavailable"
	case dErrors.CodePayloadTooLarge:
		return "payload_too_large"
	default:
		return "internal_error"
	}
}
