package sentinel

import "errors"

// Sentinel dependency errors. Stores return these (optionally wrapped)
// so services can translate them into ledger errors exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	// ErrUnavailable marks failures to reach the backing store at all.
	ErrUnavailable = errors.New("unavailable")
)
