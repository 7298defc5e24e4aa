package redis

import (
	"context"
	"fmt"
	"time"
)

const replayKeyPrefix = "calljti:"

// ReplayGuard remembers caller token IDs until they expire so a signed
// request is accepted once across every server instance.
type ReplayGuard struct {
	client *Client
	now    func() time.Time
}

func NewReplayGuard(client *Client) *ReplayGuard {
	return &ReplayGuard{client: client, now: time.Now}
}

func (g *ReplayGuard) Claim(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := until.Sub(g.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	fresh, err := g.client.SetNX(ctx, replayKeyPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim token id: %w", err)
	}
	return fresh, nil
}
