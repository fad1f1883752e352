package persistent

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/pkg/s3client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storageTestVideoID = "0b0c4a52-5a4e-4c7e-9d1e-1f2a3b4c5d6e"

func newTestS3Storage() *S3Storage {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
		BaseEndpoint: aws.String("http://localhost:4566"),
		UsePathStyle: true,
	})

	return NewS3Storage(
		&s3client.S3Client{Client: client, Presign: s3.NewPresignClient(client)},
		"videos-raw", "videos-zip", 15*time.Minute, time.Hour,
	)
}

func TestS3StorageGenerateUploadURL(t *testing.T) {
	storage := newTestS3Storage()

	rawURL, key, err := storage.GenerateUploadURL(context.Background(), storageTestVideoID, "Meu Clipe.mp4")
	require.NoError(t, err)

	assert.Equal(t, "raw/"+storageTestVideoID+"-meu-clipe.mp4", key)

	id, ok := entity.VideoIDFromRawKey(key)
	require.True(t, ok)
	assert.Equal(t, storageTestVideoID, id)

	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	assert.Equal(t, "/videos-raw/"+key, u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "videos-raw", storage.RawBucket())
}

func TestS3StorageGenerateDownloadURL(t *testing.T) {
	storage := newTestS3Storage()

	rawURL, err := storage.GenerateDownloadURL(context.Background(), "zips/v1.zip")
	require.NoError(t, err)

	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	assert.Equal(t, "/videos-zip/zips/v1.zip", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}

func TestMinIOStoragePresign(t *testing.T) {
	storage, err := NewMinIOStorage(MinIOConfig{
		Endpoint:       "localhost:9000",
		AccessKey:      "minio",
		SecretKey:      "minio123",
		Region:         "us-east-1",
		RawBucket:      "uploads",
		OutputBucket:   "zips",
		UploadURLTTL:   15 * time.Minute,
		DownloadURLTTL: time.Hour,
	})
	require.NoError(t, err)

	rawURL, key, err := storage.GenerateUploadURL(context.Background(), storageTestVideoID, "clip.mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "raw/"+storageTestVideoID+"-"))
	assert.Contains(t, rawURL, "/uploads/"+key)

	rawURL, err = storage.GenerateDownloadURL(context.Background(), "zips/v1.zip")
	require.NoError(t, err)
	assert.Contains(t, rawURL, "/zips/zips/v1.zip")
}
