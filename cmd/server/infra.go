package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"credledger/internal/ledger/store"
	"credledger/internal/platform/config"
	"credledger/internal/platform/database"
	"credledger/internal/platform/kafka"
	"credledger/internal/platform/kafka/producer"
	"credledger/internal/platform/redis"
	"credledger/migrations"
	"credledger/pkg/platform/outbox"
	outboxstore "credledger/pkg/platform/outbox/store"
	"credledger/pkg/platform/outbox/worker"
)

// infra holds the connections the process owns. Optional pieces are nil when
// their configuration is absent.
type infra struct {
	db       *database.Pool
	redis    *redis.Client
	producer *producer.Producer

	accounts  store.Store
	tx        store.Tx
	outbox    outbox.Store
	publisher worker.Publisher
	kafka     *kafka.HealthChecker
}

func buildInfra(ctx context.Context, cfg config.Server, reg prometheus.Registerer, log *slog.Logger) (*infra, error) {
	in := &infra{}
	ok := false
	defer func() {
		if !ok {
			in.Close()
		}
	}()

	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		in.db = pool
		if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		in.usePostgres(pool.DB(), cfg)
		log.Info("postgres ledger store ready")
	default:
		mem := store.NewInMemory().WithTxTimeout(cfg.TxTimeout)
		in.accounts = mem
		in.tx = mem
		in.outbox = outboxstore.NewInMemory()
		log.Warn("using in-memory ledger store; state is lost on restart")
	}

	if cfg.Redis.URL != "" {
		client, err := redis.New(ctx, cfg.Redis, reg)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		in.redis = client
		log.Info("redis connected")
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.Config{
			Brokers:         cfg.Kafka.Brokers,
			Acks:            cfg.Kafka.Acks,
			Retries:         cfg.Kafka.Retries,
			DeliveryTimeout: cfg.Kafka.DeliveryTimeout,
		}, log)
		if err != nil {
			return nil, err
		}
		in.producer = p
		in.publisher = p
		in.kafka = kafka.NewHealthChecker().Add("producer", p)
		if err := p.EnsureTopic(ctx, cfg.Kafka.EventsTopic, 3, 1); err != nil {
			log.Warn("could not ensure events topic", "topic", cfg.Kafka.EventsTopic, "error", err)
		}
	} else {
		in.publisher = producer.NewLogProducer(log)
		log.Warn("KAFKA_BROKERS not set; ledger events are logged instead of published")
	}

	ok = true
	return in, nil
}

func (in *infra) usePostgres(db *sql.DB, cfg config.Server) {
	in.accounts = store.NewPostgres(db)
	in.tx = store.NewPostgresTx(db, cfg.TxTimeout)
	in.outbox = outboxstore.NewPostgres(db)
}

func (in *infra) Close() {
	if in.producer != nil {
		_ = in.producer.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}
