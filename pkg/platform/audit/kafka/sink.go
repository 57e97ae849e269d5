// Package kafka streams audit events to a Kafka topic for downstream
// security and compliance consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	audit "memberd/pkg/platform/audit"

	"github.com/twmb/franz-go/pkg/kgo"
)

const DefaultTopic = "memberd.audit.events"

// Sink produces audit events as JSON records. Records are keyed by member ID
// so events for one account land on one partition in order.
type Sink struct {
	client *kgo.Client
	topic  string
}

func New(brokers []string, topic string) (*Sink, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.MemberID.String()),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
