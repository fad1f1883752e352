package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	amqp "github.com/rabbitmq/amqp091-go"
)

var errDeliveriesClosed = errors.New("delivery channel closed")

// ChannelOpener hands out channels on a connection that survives broker restarts.
type ChannelOpener interface {
	Channel() (*amqp.Channel, error)
}

// Source consumes one durable queue with manual acknowledgements.
type Source struct {
	conn         ChannelOpener
	queue        string
	prefetch     int
	requeueDelay time.Duration

	mu         sync.Mutex
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
}

var (
	_ infrastructure.MessageSource = (*Source)(nil)
	_ infrastructure.DepthReporter = (*Source)(nil)
)

func NewSource(conn ChannelOpener, queue string, prefetch int, requeueDelay time.Duration) (*Source, error) {
	s := &Source{
		conn:         conn,
		queue:        queue,
		prefetch:     prefetch,
		requeueDelay: requeueDelay,
	}

	if _, err := s.consuming(); err != nil {
		return nil, fmt.Errorf("RabbitMQSource - New: %w", err)
	}

	return s, nil
}

// consuming returns the current delivery channel, reopening it (and the
// connection, if needed) after a failure.
func (s *Source) consuming() (<-chan amqp.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deliveries != nil && s.ch != nil && !s.ch.IsClosed() {
		return s.deliveries, nil
	}
	if s.ch != nil {
		_ = s.ch.Close()
		s.ch, s.deliveries = nil, nil
	}

	ch, err := s.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("s.conn.Channel: %w", err)
	}

	if _, err = ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("ch.QueueDeclare %s: %w", s.queue, err)
	}

	if err = ch.Qos(s.prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("ch.Qos: %w", err)
	}

	deliveries, err := ch.Consume(s.queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("ch.Consume: %w", err)
	}

	s.ch = ch
	s.deliveries = deliveries

	return deliveries, nil
}

func (s *Source) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch != nil {
		_ = s.ch.Close()
	}
	s.ch = nil
	s.deliveries = nil
}

func (s *Source) Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]*entity.QueueMessage, error) {
	deliveries, err := s.consuming()
	if err != nil {
		return nil, fmt.Errorf("RabbitMQSource - Receive - s.consuming: %w", err)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	var msgs []*entity.QueueMessage

	select {
	case d, ok := <-deliveries:
		if !ok {
			s.reset()
			return nil, fmt.Errorf("RabbitMQSource - Receive: %w", errDeliveriesClosed)
		}
		msgs = append(msgs, toQueueMessage(d))
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	for len(msgs) < maxMessages {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return msgs, nil
			}
			msgs = append(msgs, toQueueMessage(d))
		default:
			return msgs, nil
		}
	}

	return msgs, nil
}

func (s *Source) Ack(_ context.Context, msg *entity.QueueMessage) error {
	d, ok := msg.Handle.(amqp.Delivery)
	if !ok {
		return fmt.Errorf("RabbitMQSource - Ack: unexpected handle %T", msg.Handle)
	}

	if err := d.Ack(false); err != nil {
		return fmt.Errorf("RabbitMQSource - Ack - d.Ack: %w", err)
	}

	return nil
}

// Release waits requeueDelay before requeueing so a failing message does not
// spin on the broker.
func (s *Source) Release(ctx context.Context, msg *entity.QueueMessage) error {
	d, ok := msg.Handle.(amqp.Delivery)
	if !ok {
		return fmt.Errorf("RabbitMQSource - Release: unexpected handle %T", msg.Handle)
	}

	select {
	case <-time.After(s.requeueDelay):
	case <-ctx.Done():
	}

	if err := d.Nack(false, true); err != nil {
		return fmt.Errorf("RabbitMQSource - Release - d.Nack: %w", err)
	}

	return nil
}

func (s *Source) Depth(_ context.Context) (int64, error) {
	ch, err := s.conn.Channel()
	if err != nil {
		return 0, fmt.Errorf("RabbitMQSource - Depth - s.conn.Channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclarePassive(s.queue, true, false, false, false, nil)
	if err != nil {
		return 0, fmt.Errorf("RabbitMQSource - Depth - ch.QueueDeclarePassive: %w", err)
	}

	return int64(q.Messages), nil
}

func (s *Source) Name() string {
	return s.queue
}

func (s *Source) Close() error {
	s.reset()

	return nil
}

func toQueueMessage(d amqp.Delivery) *entity.QueueMessage {
	count := 1
	if d.Redelivered {
		count = 2
	}
	if n, ok := d.Headers["x-delivery-count"].(int64); ok {
		count = int(n) + 1
	}

	return &entity.QueueMessage{
		ID:            d.MessageId,
		Body:          d.Body,
		ReceiptHandle: fmt.Sprintf("%d", d.DeliveryTag),
		ReceiveCount:  count,
		Handle:        d,
	}
}
