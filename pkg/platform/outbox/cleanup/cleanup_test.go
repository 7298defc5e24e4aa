package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"credledger/pkg/platform/outbox"
	"credledger/pkg/platform/outbox/metrics"
	outboxstore "credledger/pkg/platform/outbox/store"
)

type CleanupSuite struct {
	suite.Suite
	ctx     context.Context
	store   *outboxstore.InMemory
	metrics *metrics.Metrics
	now     time.Time
}

func TestCleanupSuite(t *testing.T) {
	suite.Run(t, new(CleanupSuite))
}

func (s *CleanupSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = outboxstore.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *CleanupSuite) appendEntry(createdAt time.Time, processedAt *time.Time) *outbox.Entry {
	e := outbox.NewEntry("UserCredential", "addr", "credential_issued", []byte(`{}`), createdAt)
	s.Require().NoError(s.store.Append(s.ctx, e))
	if processedAt != nil {
		s.Require().NoError(s.store.MarkProcessed(s.ctx, e.ID, *processedAt))
	}
	return e
}

func (s *CleanupSuite) TestRunOnce() {
	old := s.now.Add(-48 * time.Hour)
	recent := s.now.Add(-time.Hour)

	s.appendEntry(old, &old)
	s.appendEntry(recent, &recent)
	s.appendEntry(old, nil)

	svc := New(s.store,
		WithRetention(24*time.Hour),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	)

	deleted, err := svc.RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	pending, err := s.store.CountPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), pending, "pending entries survive regardless of age")

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.CleanupDeleted))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.CleanupRuns.WithLabelValues("success")))
}

func (s *CleanupSuite) TestStartStopsOnCancel() {
	svc := New(s.store, WithInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("cleanup worker did not stop")
	}
}
