package models

import (
	"errors"
	"fmt"

	dErrors "credledger/pkg/domain-errors"
)

// Error is a program error: a stable numeric code and name plus the domain
// category transports map to a status. errors.Is matches on Code, so callers
// can assert on the exact cause.
type Error struct {
	Code    uint32
	Name    string
	Kind    dErrors.Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Unwrap exposes the category so dErrors.HasCode and httputil work unchanged.
func (e *Error) Unwrap() error {
	return &dErrors.Error{Code: e.Kind, Message: e.Message}
}

// With returns a copy carrying a more specific message.
func (e *Error) With(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// AsProgramError extracts the program error from a chain.
func AsProgramError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func programError(code uint32, name string, kind dErrors.Code, msg string) *Error {
	return &Error{Code: code, Name: name, Kind: kind, Message: msg}
}

// Authorization: the caller lacks the capability or trust status.
var (
	ErrUnauthorizedAdmin   = programError(6000, "UnauthorizedAdmin", dErrors.CodeForbidden, "caller is not the program admin")
	ErrUnauthorizedIssuer  = programError(6001, "UnauthorizedIssuer", dErrors.CodeForbidden, "caller is not the issuer authority")
	ErrInvalidIssuer       = programError(6002, "InvalidIssuer", dErrors.CodeForbidden, "credential was not issued by this issuer")
	ErrIssuerInactive      = programError(6003, "IssuerInactive", dErrors.CodeForbidden, "issuer is inactive")
	ErrIssuerNotRegistered = programError(6011, "IssuerNotRegistered", dErrors.CodeForbidden, "issuer is not in the trusted registry")
)

// State conflicts: the operation would produce a forbidden state.
var (
	ErrIssuerAlreadyInactive    = programError(6004, "IssuerAlreadyInactive", dErrors.CodeConflict, "issuer is already inactive")
	ErrIssuerAlreadyActive      = programError(6005, "IssuerAlreadyActive", dErrors.CodeConflict, "issuer is already active")
	ErrCredentialAlreadyRevoked = programError(6006, "CredentialAlreadyRevoked", dErrors.CodeConflict, "credential is already revoked")
	ErrAlreadyInitialized       = programError(6010, "AlreadyInitialized", dErrors.CodeConflict, "record already initialized")
	ErrDuplicateCredential      = programError(6012, "DuplicateCredential", dErrors.CodeConflict, "credential already exists for this issuer and holder")
	ErrIssuerAlreadyRegistered  = programError(6018, "IssuerAlreadyRegistered", dErrors.CodeConflict, "issuer is already registered")
)

// Validation: caller-supplied data violates a structural or temporal constraint.
var (
	ErrInvalidCredentialHash      = programError(6007, "InvalidCredentialHash", dErrors.CodeValidation, "credential hash must not be empty")
	ErrCredentialExpired          = programError(6008, "CredentialExpired", dErrors.CodeValidation, "credential has expired")
	ErrInvalidZkProof             = programError(6009, "InvalidZkProof", dErrors.CodeValidation, "signature does not verify against the issuer key")
	ErrInvalidIssuedTimestamp     = programError(6013, "InvalidIssuedTimestamp", dErrors.CodeValidation, "issued_at is in the future")
	ErrInvalidExpiryTimestamp     = programError(6014, "InvalidExpiryTimestamp", dErrors.CodeValidation, "expires_at is not in the future")
	ErrExpiryBeforeIssuance       = programError(6015, "ExpiryBeforeIssuance", dErrors.CodeValidation, "expires_at must be after issued_at")
	ErrNameTooLong                = programError(6016, "NameTooLong", dErrors.CodeValidation, "issuer name exceeds 50 bytes")
	ErrRegistryFull               = programError(6017, "RegistryFull", dErrors.CodeValidation, "issuer registry is full")
	ErrInvalidRecordAddress       = programError(6019, "InvalidRecordAddress", dErrors.CodeValidation, "record address does not match its seeds")
	ErrInvalidIssuerName          = programError(6023, "InvalidIssuerName", dErrors.CodeValidation, "issuer name must not be empty")
	ErrPlaintextAttributeRejected = programError(6024, "PlaintextAttributeRejected", dErrors.CodeValidation, "plaintext attributes are not stored; submit only the credential hash")
)

// Missing records.
var (
	ErrNotInitialized     = programError(6020, "NotInitialized", dErrors.CodeNotFound, "record has not been initialized")
	ErrIssuerNotFound     = programError(6021, "IssuerNotFound", dErrors.CodeNotFound, "issuer record not found")
	ErrCredentialNotFound = programError(6022, "CredentialNotFound", dErrors.CodeNotFound, "credential record not found")
)

// ErrorCode and ErrorName let transports render program errors without importing this package.
func (e *Error) ErrorCode() uint32 { return e.Code }
func (e *Error) ErrorName() string { return e.Name }
