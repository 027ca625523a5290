package monitor

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tanq16/speedtest/internal/utils"
)

type s3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source measures the download of an existing object.
type S3Source struct {
	Bucket string
	Key    string
	client s3GetObjectAPI
}

func NewS3Source(ctx context.Context, path, profile string) (*S3Source, error) {
	bucket, key, err := utils.ParseS3Path(path)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRetryMode("adaptive"),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return &S3Source{
		Bucket: bucket,
		Key:    key,
		client: s3.NewFromConfig(cfg),
	}, nil
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("error getting s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	total := int64(-1)
	if out.ContentLength != nil {
		total = *out.ContentLength
	}
	return out.Body, total, nil
}

func (s *S3Source) String() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key)
}
