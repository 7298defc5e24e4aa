// Package cleanup removes relayed outbox entries once they are older than
// the retention window. Pending entries are never touched.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"credledger/pkg/platform/outbox"
	"credledger/pkg/platform/outbox/metrics"
)

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithRetention(retention time.Duration) Option {
	return func(s *Service) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

type Service struct {
	store     outbox.Store
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
}

func New(store outbox.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		logger:    slog.Default(),
		interval:  time.Hour,
		retention: 7 * 24 * time.Hour,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start sweeps on every tick until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			deleted, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "outbox_cleanup_failed",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds(),
				)
				continue
			}
			s.logger.InfoContext(ctx, "outbox_cleanup_completed",
				"deleted", deleted,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		case <-ctx.Done():
			s.logger.Info("outbox cleanup worker stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce deletes processed entries older than the retention window.
func (s *Service) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteProcessedBefore(ctx, s.now().Add(-s.retention))
	s.metrics.ObserveCleanup(deleted, err)
	return deleted, err
}
