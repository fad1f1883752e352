package infrastructure

import (
	"context"
	"time"

	"github.com/fiapx/video-orchestrator/internal/entity"
)

type (
	// MessageSource is one inbound queue.
	MessageSource interface {
		// Receive waits at most wait for up to maxMessages messages.
		// An empty result with nil error means the wait elapsed.
		Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]*entity.QueueMessage, error)
		// Ack removes the message from the queue.
		Ack(ctx context.Context, msg *entity.QueueMessage) error
		// Release gives the message back to the queue for redelivery. A source
		// that delays the release returns early once ctx is done.
		Release(ctx context.Context, msg *entity.QueueMessage) error
		Name() string
		Close() error
	}

	// DepthReporter is implemented by sources that can report a backlog size.
	DepthReporter interface {
		Depth(ctx context.Context) (int64, error)
	}

	MessagePublisher interface {
		Publish(ctx context.Context, queue string, body []byte) error
		Close() error
	}

	QueueGateway interface {
		SendMessage(ctx context.Context, queue string, payload any) error
	}
)
