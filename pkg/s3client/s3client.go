package s3client

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fiapx/video-orchestrator/pkg/awsconfig"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

type S3Client struct {
	connAttempts int
	connTimeout  time.Duration

	params       awsconfig.Params
	usePathStyle bool
	pingBucket   string

	Client  *s3.Client
	Presign *s3.PresignClient
}

func New(ctx context.Context, params awsconfig.Params, opts ...Option) (*S3Client, error) {
	s3c := &S3Client{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		params:       params,
		usePathStyle: params.Endpoint != "",
	}

	for _, opt := range opts {
		opt(s3c)
	}

	var err error
	for s3c.connAttempts > 0 {
		err = s3c.connect(ctx)
		if err == nil {
			break
		}

		log.Printf("S3 is trying to connect, attempts left: %d", s3c.connAttempts)

		time.Sleep(s3c.connTimeout)

		s3c.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("S3Client - New - connAttempts == 0: %w", err)
	}

	return s3c, nil
}

func (s *S3Client) connect(ctx context.Context) error {
	cfg, err := awsconfig.Load(ctx, s.params)
	if err != nil {
		return fmt.Errorf("S3Client - awsconfig.Load: %w", err)
	}

	s.Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = s.usePathStyle
	})
	s.Presign = s3.NewPresignClient(s.Client)

	// check connection
	if s.pingBucket != "" {
		_, err = s.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.pingBucket)})
		if err != nil {
			return fmt.Errorf("S3Client - s.Client.HeadBucket: %w", err)
		}
		return nil
	}

	_, err = s.Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return fmt.Errorf("S3Client - s.Client.ListBuckets: %w", err)
	}

	return nil
}
