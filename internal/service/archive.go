package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aquaflow/backend/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Archive stores lab report documents in the configured bucket
type S3Archive struct {
	s3 *config.S3Config
}

var _ ObjectStore = (*S3Archive)(nil)

func NewS3Archive(cfg *config.S3Config) *S3Archive {
	return &S3Archive{s3: cfg}
}

func (a *S3Archive) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.s3.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := a.s3.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (a *S3Archive) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return a.s3.GeneratePresignedURL(ctx, key, expiry)
}
