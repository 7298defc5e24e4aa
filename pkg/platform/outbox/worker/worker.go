// Package worker relays committed outbox entries to the event stream.
package worker

import (
	"context"
	"log/slog"
	"time"

	"credledger/internal/platform/kafka/producer"
	"credledger/pkg/platform/outbox"
	"credledger/pkg/platform/outbox/metrics"
)

// Publisher delivers one message synchronously. *producer.Producer satisfies it.
type Publisher interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Header keys set on every relayed event.
const (
	HeaderEventID       = "event_id"
	HeaderAggregateType = "aggregate_type"
	HeaderAggregateID   = "aggregate_id"
	HeaderEventType     = "event_type"
)

const drainTimeout = 10 * time.Second

// Worker relays entries at least once: an entry published but not marked is
// published again on the next poll. Events for one record are published in
// commit order; after a failure the record's later entries wait for the next
// poll.
type Worker struct {
	store        outbox.Store
	publisher    Publisher
	topic        string
	batchSize    int
	pollInterval time.Duration
	now          func() time.Time
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

type Option func(*Worker)

func WithTopic(topic string) Option {
	return func(w *Worker) { w.topic = topic }
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// WithClock sets the time recorded as processed_at.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

func New(store outbox.Store, publisher Publisher, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		publisher:    publisher,
		topic:        "ledger.events",
		batchSize:    100,
		pollInterval: 250 * time.Millisecond,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled, then drains the backlog for up to
// drainTimeout.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll relays one batch and returns how many entries were published and marked.
func (w *Worker) Poll(ctx context.Context) int {
	entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
	if err != nil {
		w.logger.ErrorContext(ctx, "outbox fetch failed", "error", err)
		w.metrics.IncFailure(metrics.StageFetch)
		return 0
	}
	if len(entries) == 0 {
		return 0
	}
	w.metrics.ObserveBatchSize(len(entries))

	blocked := make(map[string]bool)
	relayed := 0
	for _, entry := range entries {
		if blocked[entry.AggregateID] {
			w.metrics.IncDeferred()
			continue
		}
		if !w.relay(ctx, entry) {
			blocked[entry.AggregateID] = true
			continue
		}
		relayed++
	}

	if n, err := w.store.CountPending(ctx); err == nil {
		w.metrics.SetPendingDepth(n)
	}
	return relayed
}

// relay publishes and marks one entry, reporting whether both succeeded.
func (w *Worker) relay(ctx context.Context, entry *outbox.Entry) bool {
	log := w.logger.With(
		"event_id", entry.ID,
		"event_type", entry.EventType,
		"aggregate_id", entry.AggregateID,
	)

	start := time.Now()
	if err := w.publisher.Produce(ctx, w.message(entry)); err != nil {
		log.ErrorContext(ctx, "ledger event publish failed", "error", err)
		w.metrics.IncFailure(metrics.StagePublish)
		return false
	}
	w.metrics.ObservePublished(time.Since(start).Seconds())

	if err := w.store.MarkProcessed(ctx, entry.ID, w.now()); err != nil {
		// Published but unmarked: it will be published again.
		log.ErrorContext(ctx, "outbox mark failed", "error", err)
		w.metrics.IncFailure(metrics.StageMark)
		return false
	}
	return true
}

// message keys by record address so a record's events share a partition.
func (w *Worker) message(entry *outbox.Entry) *producer.Message {
	return &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.AggregateID),
		Value: entry.Payload,
		Headers: map[string]string{
			HeaderEventID:       entry.ID.String(),
			HeaderAggregateType: entry.AggregateType,
			HeaderAggregateID:   entry.AggregateID,
			HeaderEventType:     entry.EventType,
		},
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	w.logger.InfoContext(ctx, "draining outbox relay")
	for ctx.Err() == nil {
		if w.Poll(ctx) == 0 {
			return
		}
	}
}
