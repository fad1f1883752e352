package persistent

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/pkg/s3client"
)

const uploadContentType = "video/mp4"

type S3Storage struct {
	*s3client.S3Client
	rawBucket      string
	outputBucket   string
	uploadURLTTL   time.Duration
	downloadURLTTL time.Duration
}

func NewS3Storage(s3c *s3client.S3Client, rawBucket, outputBucket string, uploadTTL, downloadTTL time.Duration) *S3Storage {
	return &S3Storage{
		S3Client:       s3c,
		rawBucket:      rawBucket,
		outputBucket:   outputBucket,
		uploadURLTTL:   uploadTTL,
		downloadURLTTL: downloadTTL,
	}
}

func (r *S3Storage) GenerateUploadURL(ctx context.Context, videoID, fileName string) (string, string, error) {
	key := entity.NewRawKey(videoID, fileName)

	req, err := r.Presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.rawBucket),
		Key:         aws.String(key),
		ContentType: aws.String(uploadContentType),
	}, s3.WithPresignExpires(r.uploadURLTTL))
	if err != nil {
		return "", "", fmt.Errorf("S3Storage - GenerateUploadURL - r.Presign.PresignPutObject: %w", err)
	}

	return req.URL, key, nil
}

func (r *S3Storage) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	req, err := r.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.outputBucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.downloadURLTTL))
	if err != nil {
		return "", fmt.Errorf("S3Storage - GenerateDownloadURL - r.Presign.PresignGetObject: %w", err)
	}

	return req.URL, nil
}

func (r *S3Storage) RawBucket() string {
	return r.rawBucket
}
