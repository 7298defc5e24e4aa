package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one received record.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes consumed messages. Handlers must be idempotent; delivery
// is at-least-once.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

type Config struct {
	Brokers string
	GroupID string
	Topics  []string
	// AutoOffsetReset is "earliest" (default) or "latest".
	AutoOffsetReset string
	// MaxAttempts bounds handler retries for a single record before it is
	// logged and skipped.
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Consumer reads a consumer group with manual commits. A record is committed
// once its handler succeeds or its attempts are exhausted.
type Consumer struct {
	client      *kgo.Client
	handler     Handler
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
}

func New(cfg Config, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer group ID not configured")
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("kafka consumer topics not configured")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	reset := kgo.NewOffset().AtStart()
	if cfg.AutoOffsetReset == "latest" {
		reset = kgo.NewOffset().AtEnd()
	}

	var brokers []string
	for _, b := range strings.Split(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.ConsumeResetOffset(reset),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	c := &Consumer{
		client:      client,
		handler:     handler,
		logger:      logger,
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
	}
	if cfg.MaxAttempts > 0 {
		c.maxAttempts = cfg.MaxAttempts
	}
	if cfg.RetryBackoff > 0 {
		c.backoff = cfg.RetryBackoff
	}
	return c, nil
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		var done []*kgo.Record
		fetches.EachRecord(func(r *kgo.Record) {
			if ctx.Err() != nil {
				return
			}
			c.handle(ctx, r)
			done = append(done, r)
		})
		if len(done) == 0 {
			continue
		}
		if err := c.client.CommitRecords(ctx, done...); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "failed to commit offsets", "records", len(done), "error", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, r *kgo.Record) {
	msg := toMessage(r)
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = c.handler.Handle(ctx, msg); err == nil {
			return
		}
		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.backoff):
		}
	}
	c.logger.ErrorContext(ctx, "dropping message after failed attempts",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"attempts", c.maxAttempts,
		"error", err,
	)
}

func toMessage(r *kgo.Record) *Message {
	headers := make(map[string]string, len(r.Headers))
	for _, h := range r.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    r.Offset,
		Key:       r.Key,
		Value:     r.Value,
		Headers:   headers,
		Timestamp: r.Timestamp,
	}
}

// Ping checks broker reachability for readiness probes.
func (c *Consumer) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}
