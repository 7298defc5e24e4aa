package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"credledger/internal/ledger/metrics"
	"credledger/internal/ledger/models"
	"credledger/pkg/domain"
)

// Redis shares status entries across server instances. Active entries expire
// with the credential; revoked and expired entries are kept.
type Redis struct {
	client  redis.UniversalClient
	metrics *metrics.Metrics
}

type RedisOption func(*Redis)

func WithMetrics(m *metrics.Metrics) RedisOption {
	return func(r *Redis) {
		r.metrics = m
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Get(ctx context.Context, addr domain.Pubkey) (Entry, bool, error) {
	defer r.observe("get", time.Now())

	raw, err := r.client.Get(ctx, KeyPrefix+addr.String()).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read status: %w", err)
	}
	entry, err := decode(raw)
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

// maxPutAttempts bounds retries when a concurrent write to the same key
// aborts the watched transaction.
const maxPutAttempts = 3

// Put writes entry unless the key holds a revocation and entry is not one.
// The read and the write run under WATCH, so a revocation landing between
// them aborts this write and the retry sees it.
func (r *Redis) Put(ctx context.Context, addr domain.Pubkey, entry Entry) error {
	defer r.observe("put", time.Now())

	key := KeyPrefix + addr.String()
	var err error
	for range maxPutAttempts {
		err = r.client.Watch(ctx, func(tx *redis.Tx) error {
			if entry.Status != models.CredentialStatusRevoked {
				raw, err := tx.Get(ctx, key).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					return err
				}
				if strings.HasPrefix(raw, revokedPrefix) {
					return nil
				}
			}
			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if entry.Status == models.CredentialStatusActive {
					pipe.SetArgs(ctx, key, entry.encode(), redis.SetArgs{
						ExpireAt: time.Unix(entry.ExpiresAt, 0),
					})
				} else {
					pipe.Set(ctx, key, entry.encode(), 0)
				}
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

func (r *Redis) observe(op string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveCacheOperation(op, time.Since(start))
	}
}
