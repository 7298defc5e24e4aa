//go:build integration

package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"credledger/internal/platform/kafka/producer"
	"credledger/pkg/platform/outbox"
	outboxstore "credledger/pkg/platform/outbox/store"
	"credledger/pkg/platform/outbox/worker"
	"credledger/pkg/testutil/containers"
)

type RelaySuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestRelaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())
	p, err := producer.New(producer.Config{
		Brokers:         s.kafka.Brokers,
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}, nil)
	s.Require().NoError(err)
	s.producer = p
}

func (s *RelaySuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

func (s *RelaySuite) TestRelayPublishesKeyedByRecordAddress() {
	ctx := context.Background()
	topic := "ledger.events.relay-test"
	s.Require().NoError(s.producer.EnsureTopic(ctx, topic, 1, 1))

	store := outboxstore.NewInMemory()
	entry := outbox.NewEntry("UserCredential", "CredAddr1111", "credential_revoked",
		[]byte(`{"credential":"CredAddr1111"}`), time.Now())
	s.Require().NoError(store.Append(ctx, entry))

	w := worker.New(store, s.producer, worker.WithTopic(topic))
	s.Equal(1, w.Poll(ctx))

	pending, err := store.CountPending(ctx)
	s.Require().NoError(err)
	s.Zero(pending)

	client, err := s.kafka.NewConsumer("relay-test", topic)
	s.Require().NoError(err)
	defer client.Close()

	rec := s.kafka.WaitForMessage(ctx, client, 15*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "CredAddr1111"
	})
	s.Require().NotNil(rec, "relayed event not observed")
	s.JSONEq(`{"credential":"CredAddr1111"}`, string(rec.Value))

	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	s.Equal("credential_revoked", headers["event_type"])
	s.Equal("UserCredential", headers["aggregate_type"])
	s.Equal(entry.ID.String(), headers["event_id"])
}
