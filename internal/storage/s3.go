package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Posters above this size are sent as multipart uploads
const minMultipartSize = 12 << 20

type S3Options struct {
	AccessKey       string
	SecretAccessKey string
	Region          string
	Bucket          string
	// Endpoint points the client at an S3 compatible service such as R2 or
	// MinIO. Empty means AWS.
	Endpoint string
}

type S3Store struct {
	c      *s3.Client
	bucket *string
}

// NewS3 connects to the bucket in o and checks that it exists
func NewS3(ctx context.Context, o S3Options) (*S3Store, error) {
	if o.Bucket == "" {
		return nil, errors.New("no bucket configured")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKey,
			o.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(o.Bucket)

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		so.Region = o.Region
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("bucket '%s' does not exist", o.Bucket)
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	zap.L().Debug("S3 poster store ready", zap.String("bucket", o.Bucket))

	return &S3Store{
		c:      client,
		bucket: bucket,
	}, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError

	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}

	return false
}

func (s *S3Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.c.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(name),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to check poster, %w", err)
	}

	return true, nil
}

func (s *S3Store) Store(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:       s.bucket,
		Key:          aws.String(name),
		Body:         r,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}

	var err error
	if size > minMultipartSize || size <= 0 {
		uploader := manager.NewUploader(s.c, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})
		_, err = uploader.Upload(ctx, in)
	} else {
		in.ContentLength = aws.Int64(size)
		_, err = s.c.PutObject(ctx, in)
	}
	if err != nil {
		return fmt.Errorf("failed to upload poster to s3, %w", err)
	}

	return nil
}

func (s *S3Store) Open(ctx context.Context, name string) (*Object, error) {
	out, err := s.c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(name),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotExist
		}

		return nil, fmt.Errorf("failed to fetch poster, %w", err)
	}

	return &Object{
		Body:        out.Body,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	_, err := s.c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(name),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete poster from s3, %w", err)
	}

	return nil
}
