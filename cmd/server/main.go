package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"credledger/internal/ledger/tracer"
	"credledger/internal/platform/config"
	"credledger/internal/platform/health"
	"credledger/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies and owns the process lifecycle. Ledger
// rules live in internal/ledger.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing credledger",
		"addr", cfg.Addr,
		"store", cfg.StoreBackend,
		"zk_verifier", cfg.ZKVerifier,
		"program_id", cfg.ProgramID,
	)

	shutdownTracing, err := tracer.Setup(cfg.TraceExporter, "credledger", health.Version, log)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	infra, err := buildInfra(ctx, cfg, reg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	app, err := buildApp(cfg, infra, reg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, app, reg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting outbox relay", "topic", cfg.Kafka.EventsTopic)
		return app.relay.Run(gctx)
	})
	g.Go(func() error {
		return app.cleanup.Start(gctx)
	})
	if app.projector != nil {
		defer app.projector.Close()
		g.Go(func() error {
			log.Info("starting status projector", "group", cfg.Kafka.StatusProjectorGroup)
			return app.projector.Run(gctx)
		})
	}
	if infra.redis != nil {
		g.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					infra.redis.RecordPoolStats()
				}
			}
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
