package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	"github.com/fiapx/video-orchestrator/pkg/kafka/producer"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventProducer publishes outbound messages to Kafka topics.
type EventProducer struct {
	*producer.Producer
}

var _ infrastructure.MessagePublisher = (*EventProducer)(nil)

func NewEventProducer(producer *producer.Producer) *EventProducer {
	return &EventProducer{producer}
}

func (ep *EventProducer) Publish(ctx context.Context, topic string, body []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Value: body,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "content_type", Value: []byte("application/json")},
		},
	}

	err := ep.Writer.WriteMessages(ctx, msg)
	if err != nil {
		return fmt.Errorf("EventProducer - Publish - ep.Writer.WriteMessages: %w", err)
	}

	return nil
}

func (ep *EventProducer) Close() error {
	err := ep.Producer.Close()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}
