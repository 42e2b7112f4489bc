// Package storage provides the object-storage capability consumed by
// the export pipeline.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tsouza/eventdump/pkg/config"
)

// UploadDescriptor carries everything one upload needs. It is built
// fresh per batch and never mutated after being handed to Put.
type UploadDescriptor struct {
	Bucket               string
	Key                  string
	Body                 []byte
	ContentEncoding      string // "gzip", "br" or empty
	ServerSideEncryption string // "AES256", "aws:kms" or empty
	KMSKeyID             string // set only with aws:kms
}

// Putter is the storage capability: exactly one upload attempt per
// call. Redelivery on failure belongs to the caller.
type Putter interface {
	Put(ctx context.Context, up UploadDescriptor) error
}

// S3Client implements Putter against an S3-compatible endpoint.
type S3Client struct {
	uploader *manager.Uploader
	timeout  time.Duration
}

// NewS3Client builds the client from static credentials, with optional
// custom endpoint and path-style addressing for S3-compatible stores.
// SDK-internal retries are disabled so the batcher stays the only owner
// of redelivery.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*S3Client, error) {
	opts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	}
	if cfg.Region != "" {
		opts = append(opts, awsConfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
		o.Retryer = aws.NopRetryer{}
	})

	return &S3Client{
		uploader: manager.NewUploader(client),
		timeout:  cfg.UploadTimeout,
	}, nil
}

// Put performs one upload attempt. Any failure, including context
// cancellation, surfaces to the caller for retry classification.
func (c *S3Client) Put(ctx context.Context, up UploadDescriptor) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(up.Bucket),
		Key:    aws.String(up.Key),
		Body:   bytes.NewReader(up.Body),
	}
	if up.ContentEncoding != "" {
		in.ContentEncoding = aws.String(up.ContentEncoding)
	}
	if up.ServerSideEncryption != "" {
		in.ServerSideEncryption = types.ServerSideEncryption(up.ServerSideEncryption)
	}
	if up.KMSKeyID != "" {
		in.SSEKMSKeyId = aws.String(up.KMSKeyID)
	}

	if _, err := c.uploader.Upload(ctx, in); err != nil {
		return fmt.Errorf("storage: put s3://%s/%s: %w", up.Bucket, up.Key, err)
	}
	return nil
}
