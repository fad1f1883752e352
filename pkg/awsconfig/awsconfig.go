package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

type Params struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Load builds an aws.Config. Static credentials are used when an access key
// is given, otherwise the default credential chain applies.
func Load(ctx context.Context, p Params) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(p.Region),
	}

	if p.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.AccessKey, p.SecretKey, ""),
		))
	}

	if p.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(p.Endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("awsconfig - Load - config.LoadDefaultConfig: %w", err)
	}

	return cfg, nil
}
