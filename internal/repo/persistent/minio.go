package persistent

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fiapx/video-orchestrator/internal/entity"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOStorage struct {
	client         *miniogo.Client
	rawBucket      string
	outputBucket   string
	uploadURLTTL   time.Duration
	downloadURLTTL time.Duration
}

type MinIOConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	Region         string
	RawBucket      string
	OutputBucket   string
	UploadURLTTL   time.Duration
	DownloadURLTTL time.Duration
}

func NewMinIOStorage(cfg MinIOConfig) (*MinIOStorage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("MinIOStorage - New - miniogo.New: %w", err)
	}

	return &MinIOStorage{
		client:         client,
		rawBucket:      cfg.RawBucket,
		outputBucket:   cfg.OutputBucket,
		uploadURLTTL:   cfg.UploadURLTTL,
		downloadURLTTL: cfg.DownloadURLTTL,
	}, nil
}

// EnsureBuckets creates the raw and output buckets when missing.
func (s *MinIOStorage) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.rawBucket, s.outputBucket} {
		if bucket == "" {
			continue
		}

		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("MinIOStorage - EnsureBuckets - s.client.BucketExists %s: %w", bucket, err)
		}
		if exists {
			continue
		}

		if err = s.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("MinIOStorage - EnsureBuckets - s.client.MakeBucket %s: %w", bucket, err)
		}
	}

	return nil
}

func (s *MinIOStorage) GenerateUploadURL(ctx context.Context, videoID, fileName string) (string, string, error) {
	key := entity.NewRawKey(videoID, fileName)

	u, err := s.client.PresignedPutObject(ctx, s.rawBucket, key, s.uploadURLTTL)
	if err != nil {
		return "", "", fmt.Errorf("MinIOStorage - GenerateUploadURL - s.client.PresignedPutObject: %w", err)
	}

	return u.String(), key, nil
}

func (s *MinIOStorage) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.outputBucket, key, s.downloadURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("MinIOStorage - GenerateDownloadURL - s.client.PresignedGetObject: %w", err)
	}

	return u.String(), nil
}

func (s *MinIOStorage) RawBucket() string {
	return s.rawBucket
}
