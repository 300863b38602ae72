package s3

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/archivelab/scriptorium/pkg/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var _ storage.Store = (*Client)(nil)

type Client struct {
	bucket string
	client *s3.Client
}

func New(bucket string, client *s3.Client) (*Client, error) {
	if bucket == "" {
		return nil, errors.New("bucket must not be empty")
	}

	if client == nil {
		return nil, errors.New("s3 client must not be nil")
	}

	return &Client{
		bucket: bucket,
		client: client,
	}, nil
}

func (c *Client) Upload(ctx context.Context, key, path string) error {
	file, err := os.Open(path)

	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	defer file.Close()

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),

		Body: file,
	})

	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

// Delete removes the object under key. Deleting an object that no
// longer exists is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		var notFound *types.NoSuchKey

		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}
