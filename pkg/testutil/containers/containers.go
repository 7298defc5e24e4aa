//go:build integration

// Package containers starts the ledger's backing services in Docker for
// integration suites. Each service starts once per test binary and is shared;
// Ryuk removes the containers when the process exits.
package containers

import (
	"sync"
	"testing"
)

// lazy starts a container on first request. A failed start is remembered so
// later suites fail fast instead of retrying a broken Docker daemon.
type lazy[T any] struct {
	mu    sync.Mutex
	val   *T
	fail  string
	start func(t *testing.T) (*T, error)
}

func (l *lazy[T]) get(t *testing.T) *T {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fail != "" {
		t.Fatalf("container unavailable: %s", l.fail)
	}
	if l.val == nil {
		v, err := l.start(t)
		if err != nil {
			l.fail = err.Error()
			t.Fatalf("start container: %v", err)
		}
		l.val = v
	}
	return l.val
}

type Manager struct {
	postgres lazy[PostgresContainer]
	redis    lazy[RedisContainer]
	kafka    lazy[KafkaContainer]
}

var manager = &Manager{
	postgres: lazy[PostgresContainer]{start: startPostgres},
	redis:    lazy[RedisContainer]{start: startRedis},
	kafka:    lazy[KafkaContainer]{start: startKafka},
}

func GetManager() *Manager { return manager }

// GetPostgres returns a migrated ledger database.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer { return m.postgres.get(t) }

func (m *Manager) GetRedis(t *testing.T) *RedisContainer { return m.redis.get(t) }

// GetKafka returns a Redpanda broker with topic auto-creation enabled.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer { return m.kafka.get(t) }
