package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	"github.com/fiapx/video-orchestrator/internal/infrastructure/metrics"
	"github.com/fiapx/video-orchestrator/pkg/logger"
)

// Gateway serializes payloads to JSON and hands them to a driver publisher.
type Gateway struct {
	publisher infrastructure.MessagePublisher
	logger    logger.Interface
}

var _ infrastructure.QueueGateway = (*Gateway)(nil)

func NewGateway(p infrastructure.MessagePublisher, l logger.Interface) *Gateway {
	return &Gateway{publisher: p, logger: l}
}

func (g *Gateway) SendMessage(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("Gateway - SendMessage - json.Marshal: %w", err)
	}

	err = g.publisher.Publish(ctx, queue, body)
	if err != nil {
		metrics.MessagesPublishedTotal.WithLabelValues(queue, "error").Inc()
		return fmt.Errorf("Gateway - SendMessage - g.publisher.Publish: %w", err)
	}

	metrics.MessagesPublishedTotal.WithLabelValues(queue, "ok").Inc()
	g.logger.Debug("Gateway - SendMessage - sent %d bytes to %s", len(body), queue)

	return nil
}

func (g *Gateway) Close() error {
	err := g.publisher.Close()
	if err != nil {
		return fmt.Errorf("Gateway - Close: %w", err)
	}

	return nil
}
