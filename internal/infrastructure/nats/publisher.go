package nats

import (
	"context"
	"fmt"
	"sync"

	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher publishes to JetStream subjects, creating each subject's
// work-queue stream on first use.
type Publisher struct {
	js jetstream.JetStream

	mu      sync.Mutex
	streams map[string]bool
}

var _ infrastructure.MessagePublisher = (*Publisher)(nil)

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js, streams: make(map[string]bool)}
}

func (p *Publisher) Publish(ctx context.Context, subject string, body []byte) error {
	if err := p.ensure(ctx, subject); err != nil {
		return fmt.Errorf("NATSPublisher - Publish: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, body); err != nil {
		return fmt.Errorf("NATSPublisher - Publish - p.js.Publish: %w", err)
	}

	return nil
}

func (p *Publisher) ensure(ctx context.Context, subject string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streams[subject] {
		return nil
	}

	if _, err := ensureStream(ctx, p.js, subject); err != nil {
		return err
	}
	p.streams[subject] = true

	return nil
}

func (p *Publisher) Close() error {
	return nil
}
