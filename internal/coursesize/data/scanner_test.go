package data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/minio"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))
}

func TestFSScanner_TotalSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.bin"), 10)
	writeFile(t, filepath.Join(root, "ab", "cd", "abcd1234"), 20)
	writeFile(t, filepath.Join(root, "ab", "ef", "abef5678"), 30)
	writeFile(t, filepath.Join(root, "12", "34", "12345678"), 40)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "top.bin"), filepath.Join(root, "link")))

	scanner := NewFSScanner(root, &workerpool.Config{Workers: 2}, logger.NewNop())
	assert.Equal(t, "filesystem", scanner.Name())

	total, err := scanner.TotalSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}

func TestFSScanner_Errors(t *testing.T) {
	scanner := NewFSScanner(filepath.Join(t.TempDir(), "missing"), nil, logger.NewNop())
	_, err := scanner.TotalSize(context.Background())
	assert.Error(t, err)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "b"), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFSScanner(root, nil, logger.NewNop()).TotalSize(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMinioScanner_ClosedClient(t *testing.T) {
	cfg := minio.DefaultConfig()
	cfg.AccessKeyID = "key"
	cfg.SecretAccessKey = "secret"
	client, err := minio.NewClient(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	scanner := NewMinioScanner(client, cfg.Bucket, "", logger.NewNop())
	assert.Equal(t, "minio", scanner.Name())

	_, err = scanner.TotalSize(context.Background())
	assert.ErrorIs(t, err, minio.ErrClosed)
}
