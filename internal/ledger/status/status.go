// Package status caches credential trust status for verifiers that poll.
// Entries are written after the ledger commits; the ledger stays the source of truth.
// Every Cache keeps a revoked entry once written: a Put of any other status
// for that address is dropped, so a late active write cannot undo a revocation.
package status

import (
	"fmt"
	"strconv"
	"strings"

	"credledger/internal/ledger/models"
)

// KeyPrefix namespaces cache keys: credstatus:<credential address>.
const KeyPrefix = "credstatus:"

// revokedPrefix is the encoded form every revoked entry starts with.
const revokedPrefix = string(models.CredentialStatusRevoked) + ":"

// Entry is one cached answer.
type Entry struct {
	Status    models.CredentialStatus
	ExpiresAt int64
}

// At re-evaluates a cached active entry against now; expiry is never trusted from the cache.
func (e Entry) At(now int64) models.CredentialStatus {
	if e.Status == models.CredentialStatusActive && now >= e.ExpiresAt {
		return models.CredentialStatusExpired
	}
	return e.Status
}

func (e Entry) encode() string {
	return string(e.Status) + ":" + strconv.FormatInt(e.ExpiresAt, 10)
}

func decode(raw string) (Entry, error) {
	st, exp, ok := strings.Cut(raw, ":")
	if !ok {
		return Entry{}, fmt.Errorf("malformed status entry %q", raw)
	}
	expiresAt, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed status expiry %q: %w", raw, err)
	}
	switch s := models.CredentialStatus(st); s {
	case models.CredentialStatusActive, models.CredentialStatusExpired, models.CredentialStatusRevoked:
		return Entry{Status: s, ExpiresAt: expiresAt}, nil
	default:
		return Entry{}, fmt.Errorf("unknown status %q", st)
	}
}
