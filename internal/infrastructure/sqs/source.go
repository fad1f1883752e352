package sqs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/internal/infrastructure"
)

// API is the subset of *sqs.Client used by this package.
type API interface {
	ReceiveMessage(ctx context.Context, in *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, in *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
	GetQueueAttributes(ctx context.Context, in *awssqs.GetQueueAttributesInput, optFns ...func(*awssqs.Options)) (*awssqs.GetQueueAttributesOutput, error)
}

// Source long-polls one SQS queue. Releasing a message is a no-op: it
// becomes visible again once its visibility timeout expires.
type Source struct {
	api      API
	queueURL string
}

var (
	_ infrastructure.MessageSource = (*Source)(nil)
	_ infrastructure.DepthReporter = (*Source)(nil)
)

func NewSource(api API, queueURL string) *Source {
	return &Source{api: api, queueURL: queueURL}
}

func (s *Source) Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]*entity.QueueMessage, error) {
	out, err := s.api.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: int32(maxMessages),        //nolint:gosec
		WaitTimeSeconds:     int32(wait / time.Second), //nolint:gosec
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("SQSSource - Receive - s.api.ReceiveMessage: %w", err)
	}

	msgs := make([]*entity.QueueMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		count, _ := strconv.Atoi(m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)])

		msgs = append(msgs, &entity.QueueMessage{
			ID:            aws.ToString(m.MessageId),
			Body:          []byte(aws.ToString(m.Body)),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			ReceiveCount:  count,
		})
	}

	return msgs, nil
}

func (s *Source) Ack(ctx context.Context, msg *entity.QueueMessage) error {
	_, err := s.api.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: aws.String(msg.ReceiptHandle),
	})
	if err != nil {
		return fmt.Errorf("SQSSource - Ack - s.api.DeleteMessage: %w", err)
	}

	return nil
}

func (s *Source) Release(context.Context, *entity.QueueMessage) error {
	return nil
}

func (s *Source) Depth(ctx context.Context) (int64, error) {
	out, err := s.api.GetQueueAttributes(ctx, &awssqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(s.queueURL),
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return 0, fmt.Errorf("SQSSource - Depth - s.api.GetQueueAttributes: %w", err)
	}

	raw := out.Attributes[string(types.QueueAttributeNameApproximateNumberOfMessages)]

	depth, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("SQSSource - Depth - strconv.ParseInt: %w", err)
	}

	return depth, nil
}

func (s *Source) Name() string {
	return s.queueURL
}

func (s *Source) Close() error {
	return nil
}
