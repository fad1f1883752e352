package sqsclient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/fiapx/video-orchestrator/pkg/awsconfig"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

type SQSClient struct {
	connAttempts int
	connTimeout  time.Duration

	params awsconfig.Params

	Client *sqs.Client
}

func New(ctx context.Context, params awsconfig.Params, opts ...Option) (*SQSClient, error) {
	c := &SQSClient{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		params:       params,
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error
	for c.connAttempts > 0 {
		err = c.connect(ctx)
		if err == nil {
			break
		}

		log.Printf("SQS is trying to connect, attempts left: %d", c.connAttempts)

		time.Sleep(c.connTimeout)

		c.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("SQSClient - New - connAttempts == 0: %w", err)
	}

	return c, nil
}

func (c *SQSClient) connect(ctx context.Context) error {
	cfg, err := awsconfig.Load(ctx, c.params)
	if err != nil {
		return fmt.Errorf("SQSClient - awsconfig.Load: %w", err)
	}

	c.Client = sqs.NewFromConfig(cfg)

	// check connection
	_, err = c.Client.ListQueues(ctx, &sqs.ListQueuesInput{MaxResults: aws.Int32(1)})
	if err != nil {
		return fmt.Errorf("SQSClient - c.Client.ListQueues: %w", err)
	}

	return nil
}
