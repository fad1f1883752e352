package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends persistent messages through the default exchange, so the
// queue name is the routing key. A failed declare or publish drops the
// channel; the next call opens a fresh one.
type Publisher struct {
	conn ChannelOpener

	mu       sync.Mutex
	channel  *amqp.Channel
	declared map[string]bool
}

var _ infrastructure.MessagePublisher = (*Publisher)(nil)

func NewPublisher(conn ChannelOpener) (*Publisher, error) {
	p := &Publisher{conn: conn}

	if _, err := p.open(); err != nil {
		return nil, fmt.Errorf("RabbitMQPublisher - New: %w", err)
	}

	return p, nil
}

// open returns the live channel or opens a new one. Caller holds p.mu.
func (p *Publisher) open() (*amqp.Channel, error) {
	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("p.conn.Channel: %w", err)
	}

	// declarations do not outlive a broker restart
	p.channel = ch
	p.declared = make(map[string]bool)

	return ch, nil
}

// drop discards the channel after a failure. Caller holds p.mu.
func (p *Publisher) drop() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	p.channel = nil
}

func (p *Publisher) Publish(ctx context.Context, queue string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("RabbitMQPublisher - Publish - p.open: %w", err)
	}

	if !p.declared[queue] {
		if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.drop()
			return fmt.Errorf("RabbitMQPublisher - Publish - ch.QueueDeclare %s: %w", queue, err)
		}
		p.declared[queue] = true
	}

	err = ch.PublishWithContext(ctx,
		"",
		queue,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
	if err != nil {
		p.drop()
		return fmt.Errorf("RabbitMQPublisher - Publish - ch.PublishWithContext: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel.Close()
	}

	return nil
}
