package minio

import (
	"context"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ListObjectsOptions represents options for listing objects
type ListObjectsOptions struct {
	Prefix    string
	Recursive bool
}

// ObjectInfo is the subset of listing data the service needs.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ListObjects streams the objects in a bucket. The error channel receives at
// most one error and both channels are closed when listing ends.
func (c *Client) ListObjects(ctx context.Context, bucket string, opts ListObjectsOptions) (<-chan ObjectInfo, <-chan error) {
	objCh := make(chan ObjectInfo)
	errCh := make(chan error, 1)

	go func() {
		defer close(objCh)
		defer close(errCh)

		if err := c.checkClosed(); err != nil {
			errCh <- err
			return
		}
		if bucket == "" {
			errCh <- WrapError("ListObjects", ErrInvalidBucketName, bucket, "")
			return
		}

		listing := c.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
			Prefix:    opts.Prefix,
			Recursive: opts.Recursive,
		})
		for object := range listing {
			if object.Err != nil {
				errCh <- WrapError("ListObjects", object.Err, bucket, "")
				return
			}
			select {
			case objCh <- ObjectInfo{Key: object.Key, Size: object.Size}:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return objCh, errCh
}

// BucketUsage sums the size of every object under prefix.
func (c *Client) BucketUsage(ctx context.Context, bucket, prefix string) (total int64, objects int64, err error) {
	objCh, errCh := c.ListObjects(ctx, bucket, ListObjectsOptions{Prefix: prefix, Recursive: true})
	for obj := range objCh {
		total += obj.Size
		objects++
	}
	if err := <-errCh; err != nil {
		return 0, 0, err
	}

	c.logger.Debug("bucket usage computed",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int64("objects", objects),
		zap.Int64("bytes", total),
	)
	return total, objects, nil
}
