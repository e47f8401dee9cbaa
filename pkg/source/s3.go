package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Reader reads template files from an S3 bucket, for deployments that
// publish route content to object storage instead of shipping it in the
// binary.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	reader := source.NewS3Reader(s3.NewFromConfig(cfg), "my-site", "routes/")
//	eng, _ := engine.New(engine.Options{Resolver: resolver, Reader: reader})
type S3Reader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Reader creates a reader for bucket, prefixing every key with prefix.
func NewS3Reader(client *s3.Client, bucket, prefix string) *S3Reader {
	return &S3Reader{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// ReadFile implements engine.FileReader.
func (r *S3Reader) ReadFile(ctx context.Context, path string) (string, error) {
	key := r.prefix + strings.TrimPrefix(path, "/")

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", fmt.Errorf("source: s3 object %q not found: %w", key, err)
		}
		return "", fmt.Errorf("source: get s3 object %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("source: read s3 object %q: %w", key, err)
	}
	return string(data), nil
}
