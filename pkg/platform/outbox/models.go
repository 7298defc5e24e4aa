package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a pending event in the outbox. It is written in the same
// transaction as the state change it describes and relayed later.
type Entry struct {
	ID            uuid.UUID
	AggregateType string // record type, e.g. "UserCredential"
	AggregateID   string // record address
	EventType     string // e.g. "credential_revoked"
	Payload       []byte // JSON
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil = pending
}

func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry creates an entry with a fresh id.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte, now time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}
