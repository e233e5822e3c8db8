//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

func setupTestClient(t *testing.T) *Client {
	cfg := DefaultConfig()
	cfg.Addrs = []string{testRedisAddr}
	cfg.KeyPrefix = "coursesize-test:"

	client, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestHashRoundTrip(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := client.Key("hash")
	t.Cleanup(func() { _, _ = client.Del(ctx, key) })

	_, err := client.HSet(ctx, key, "bytes", "1024", "updated", "1700000000")
	require.NoError(t, err)

	got, err := client.HGetAll(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bytes": "1024", "updated": "1700000000"}, got)

	missing, err := client.HGetAll(ctx, client.Key("missing"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}
