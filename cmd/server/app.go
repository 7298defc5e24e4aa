package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"credledger/internal/ledger/address"
	ledgerhandler "credledger/internal/ledger/handler"
	ledgermetrics "credledger/internal/ledger/metrics"
	"credledger/internal/ledger/service"
	"credledger/internal/ledger/status"
	"credledger/internal/ledger/tracer"
	"credledger/internal/ledger/zk"
	"credledger/internal/platform/config"
	"credledger/internal/platform/health"
	"credledger/internal/platform/kafka/consumer"
	"credledger/internal/platform/redis"
	"credledger/pkg/domain"
	"credledger/pkg/platform/circuit"
	"credledger/pkg/platform/middleware/auth"
	"credledger/pkg/platform/outbox/cleanup"
	outboxmetrics "credledger/pkg/platform/outbox/metrics"
	"credledger/pkg/platform/outbox/worker"
)

type app struct {
	ledger        *ledgerhandler.Handler
	health        *health.Handler
	requireCaller func(http.Handler) http.Handler
	relay         *worker.Worker
	cleanup       *cleanup.Service
	projector     *consumer.Consumer
}

func buildApp(cfg config.Server, in *infra, reg prometheus.Registerer, log *slog.Logger) (*app, error) {
	programID, err := domain.ParsePubkey(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("PROGRAM_ID: %w", err)
	}
	deriver := address.NewDeriver(programID)
	ledgerMetrics := ledgermetrics.New(reg)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(ledgerMetrics),
		service.WithTracer(tracer.NewOTel()),
		service.WithOutbox(in.outbox),
	}
	if cfg.ZKVerifier == config.VerifierEdDSA {
		opts = append(opts, service.WithVerifier(zk.NewEdDSA()))
	}

	var (
		guard     auth.ReplayGuard
		projector *consumer.Consumer
	)
	if in.redis != nil {
		cache := status.NewGuarded(
			status.NewRedis(in.redis, status.WithMetrics(ledgerMetrics)),
			circuit.New("status_cache"),
			log,
		)
		opts = append(opts, service.WithStatusCache(cache))
		guard = redis.NewReplayGuard(in.redis)

		if group := cfg.Kafka.StatusProjectorGroup; group != "" {
			c, err := consumer.New(consumer.Config{
				Brokers: cfg.Kafka.Brokers,
				GroupID: group,
				Topics:  []string{cfg.Kafka.EventsTopic},
			}, status.NewProjector(cache, log), log)
			if err != nil {
				return nil, err
			}
			projector = c
			in.kafka.Add("status_projector", c)
		}
	} else {
		opts = append(opts, service.WithStatusCache(status.NewInMemory()))
		guard = auth.NewMemoryReplayGuard()
	}

	svc := service.New(in.accounts, in.tx, deriver, opts...)

	healthHandler := health.New(cfg.Environment)
	if in.db != nil {
		healthHandler.RegisterCheck("postgres", in.db.Health)
	}
	if in.redis != nil {
		healthHandler.RegisterCheck("redis", in.redis.Health)
	}
	if in.kafka != nil {
		healthHandler.RegisterOptional(in.kafka.Name(), in.kafka.Check)
	}

	outboxMetrics := outboxmetrics.New(reg)
	relay := worker.New(in.outbox, in.publisher,
		worker.WithTopic(cfg.Kafka.EventsTopic),
		worker.WithBatchSize(cfg.Kafka.OutboxBatchSize),
		worker.WithPollInterval(cfg.Kafka.OutboxPollInterval),
		worker.WithMetrics(outboxMetrics),
		worker.WithLogger(log),
	)
	sweeper := cleanup.New(in.outbox,
		cleanup.WithInterval(cfg.Kafka.OutboxCleanupInterval),
		cleanup.WithRetention(cfg.Kafka.OutboxRetention),
		cleanup.WithMetrics(outboxMetrics),
		cleanup.WithLogger(log),
	)

	return &app{
		ledger:        ledgerhandler.New(svc, deriver, log),
		health:        healthHandler,
		requireCaller: auth.RequireCaller(auth.NewVerifier(cfg.MaxTokenAge), guard, log),
		relay:         relay,
		cleanup:       sweeper,
		projector:     projector,
	}, nil
}
