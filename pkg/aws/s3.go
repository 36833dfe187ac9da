package aws

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectDeleter removes objects from a bucket.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, bucket, key string) error
}

type S3Client struct {
	client *s3.Client
}

// NewS3Client creates a new S3 client from AWS config. Path-style addressing
// is forced when a custom endpoint is configured so LocalStack buckets resolve.
func NewS3Client(cfg sdkaws.Config) *S3Client {
	usePathStyle := cfg.EndpointResolverWithOptions != nil
	return &S3Client{client: s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = usePathStyle
	})}
}

// DeleteObject deletes bucket/key. A missing key is not an error.
func (c *S3Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil
		}
		return fmt.Errorf("failed to delete s3 object %s/%s: %w", bucket, key, err)
	}
	return nil
}
