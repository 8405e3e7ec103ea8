package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"webshop/internal/platform/kafka/producer"
)

// Producer is the slice of the Kafka producer the audit sink uses.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaStore publishes each event as one JSON record keyed by install id,
// so the events of one browser stay ordered within a partition.
type KafkaStore struct {
	producer Producer
	topic    string
}

func NewKafkaStore(p Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: p, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.InstallID),
		Value: payload,
		Headers: map[string]string{
			"event_type": event.Action,
			"event_id":   event.ID,
		},
	})
}
