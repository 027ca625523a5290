package monitor

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input  *s3.GetObjectInput
	body   string
	length *int64
	err    error
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(f.body)),
		ContentLength: f.length,
	}, nil
}

func TestS3SourceOpen(t *testing.T) {
	api := &fakeS3{body: "payload", length: aws.Int64(7)}
	src := &S3Source{Bucket: "bench", Key: "blobs/1g.bin", client: api}

	body, total, err := src.Open(context.Background())
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, int64(7), total)
	assert.Equal(t, "bench", aws.ToString(api.input.Bucket))
	assert.Equal(t, "blobs/1g.bin", aws.ToString(api.input.Key))
	assert.Equal(t, "s3://bench/blobs/1g.bin", src.String())
}

func TestS3SourceUnknownLength(t *testing.T) {
	src := &S3Source{Bucket: "b", Key: "k", client: &fakeS3{body: "x"}}
	body, total, err := src.Open(context.Background())
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, int64(-1), total)
}

func TestS3SourceError(t *testing.T) {
	denied := errors.New("access denied")
	src := &S3Source{Bucket: "b", Key: "k", client: &fakeS3{err: denied}}
	_, _, err := src.Open(context.Background())
	require.ErrorIs(t, err, denied)
}

func TestNewS3SourceRejectsBadPath(t *testing.T) {
	_, err := NewS3Source(context.Background(), "no-key", "default")
	require.Error(t, err)
}
