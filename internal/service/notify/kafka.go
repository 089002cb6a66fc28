package notify

import (
	"context"
	"fmt"

	"SigPulse/internal/domain/models"
	appkafka "SigPulse/pkg/kafka"
)

// Kafka publishes emitted decisions to a topic for downstream
// consumers. Messages are keyed by pair so one pair stays ordered
// within a partition.
type Kafka struct {
	producer *appkafka.Producer
	topic    string
}

// NewKafka creates a Kafka channel.
func NewKafka(producer *appkafka.Producer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Send(ctx context.Context, d *models.Decision, _ string) error {
	if err := k.producer.Publish(ctx, k.topic, []byte(d.Pair), d); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}
