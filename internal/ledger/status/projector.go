package status

import (
	"context"
	"encoding/json"
	"log/slog"

	"credledger/internal/ledger/models"
	"credledger/internal/platform/kafka/consumer"
	"credledger/pkg/platform/outbox/worker"
)

// Projector applies credential events from the ledger event stream to a
// cache, so instances that did not commit a change still learn about it.
// Revocation is terminal; the cache drops an issued event that arrives after it.
type Projector struct {
	cache  Cache
	logger *slog.Logger
}

func NewProjector(cache Cache, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Projector{cache: cache, logger: logger}
}

func (p *Projector) Handle(ctx context.Context, msg *consumer.Message) error {
	switch msg.Headers[worker.HeaderEventType] {
	case models.CredentialIssued{}.EventType():
		var ev models.CredentialIssued
		if !p.decode(ctx, msg, &ev) {
			return nil
		}
		return p.cache.Put(ctx, ev.Credential, Entry{Status: models.CredentialStatusActive, ExpiresAt: ev.ExpiresAt})

	case models.CredentialRevoked{}.EventType():
		var ev models.CredentialRevoked
		if !p.decode(ctx, msg, &ev) {
			return nil
		}
		return p.cache.Put(ctx, ev.Credential, Entry{Status: models.CredentialStatusRevoked, ExpiresAt: ev.ExpiresAt})
	}
	return nil
}

// decode logs and skips payloads that can never be applied.
func (p *Projector) decode(ctx context.Context, msg *consumer.Message, v any) bool {
	if err := json.Unmarshal(msg.Value, v); err != nil {
		p.logger.WarnContext(ctx, "skipping undecodable ledger event",
			"event_type", msg.Headers[worker.HeaderEventType],
			"offset", msg.Offset,
			"error", err,
		)
		return false
	}
	return true
}
