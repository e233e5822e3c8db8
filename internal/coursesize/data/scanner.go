package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/minio"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/workerpool"
	"go.uber.org/zap"
)

// FSScanner sums the sizes of all regular files below root. Each
// top-level directory is walked on its own worker.
type FSScanner struct {
	root   string
	pool   *workerpool.Config
	logger *logger.Logger
}

func NewFSScanner(root string, pool *workerpool.Config, log *logger.Logger) biz.DirectoryScanner {
	return &FSScanner{root: root, pool: pool, logger: log}
}

func (s *FSScanner) Name() string { return "filesystem" }

func (s *FSScanner) TotalSize(ctx context.Context) (int64, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", s.root, err)
	}

	pool, err := workerpool.New(s.pool, s.logger.Logger)
	if err != nil {
		return 0, err
	}
	defer pool.Shutdown()

	var total atomic.Int64
	group := pool.NewGroup()
	for _, entry := range entries {
		path := filepath.Join(s.root, entry.Name())
		if !entry.IsDir() {
			size, err := fileSize(entry)
			if err != nil {
				_ = group.Wait()
				return 0, err
			}
			total.Add(size)
			continue
		}
		group.Go(func() error {
			n, err := walkSize(ctx, path)
			total.Add(n)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}

	stats := pool.Stats()
	s.logger.Debug("filesystem scan finished",
		zap.String("root", s.root),
		zap.Int64("directories", stats.Completed),
		zap.Int64("bytes", total.Load()),
	)
	return total.Load(), nil
}

func walkSize(ctx context.Context, root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// files removed while the walk is running
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return ctx.Err()
		}
		size, err := fileSize(d)
		if err != nil {
			return err
		}
		total += size
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return total, nil
}

// fileSize returns the size of regular files and 0 for anything else.
func fileSize(d fs.DirEntry) (int64, error) {
	if !d.Type().IsRegular() {
		return 0, nil
	}
	info, err := d.Info()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return info.Size(), nil
}

// MinioScanner sums the object sizes of a bucket, optionally under a prefix.
type MinioScanner struct {
	client *minio.Client
	bucket string
	prefix string
	logger *logger.Logger
}

func NewMinioScanner(client *minio.Client, bucket, prefix string, log *logger.Logger) biz.DirectoryScanner {
	return &MinioScanner{client: client, bucket: bucket, prefix: prefix, logger: log}
}

func (s *MinioScanner) Name() string { return "minio" }

func (s *MinioScanner) TotalSize(ctx context.Context) (int64, error) {
	total, objects, err := s.client.BucketUsage(ctx, s.bucket, s.prefix)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("bucket scan finished",
		zap.String("bucket", s.bucket),
		zap.String("prefix", s.prefix),
		zap.Int64("objects", objects),
		zap.Int64("bytes", total),
	)
	return total, nil
}
