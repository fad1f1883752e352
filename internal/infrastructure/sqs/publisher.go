package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/fiapx/video-orchestrator/internal/infrastructure"
)

// Publisher sends to SQS queues addressed by URL.
type Publisher struct {
	api API
}

var _ infrastructure.MessagePublisher = (*Publisher)(nil)

func NewPublisher(api API) *Publisher {
	return &Publisher{api: api}
}

func (p *Publisher) Publish(ctx context.Context, queueURL string, body []byte) error {
	_, err := p.api.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("SQSPublisher - Publish - p.api.SendMessage: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return nil
}
