package s3client

import "time"

type Option func(c *S3Client)

func ConnAttempts(attempts int) Option {
	return func(c *S3Client) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *S3Client) {
		c.connTimeout = timeout
	}
}

func UsePathStyle(use bool) Option {
	return func(c *S3Client) {
		c.usePathStyle = use
	}
}

// PingBucket checks the connection with HeadBucket instead of ListBuckets.
func PingBucket(bucket string) Option {
	return func(c *S3Client) {
		c.pingBucket = bucket
	}
}
