package redis

import (
	"context"

	"go.uber.org/zap"
)

// HSet 设置哈希字段
func (c *Client) HSet(ctx context.Context, key string, values ...interface{}) (int64, error) {
	n, err := c.rdb.HSet(ctx, key, values...).Result()
	if err != nil {
		c.logger.Error("redis hset failed", zap.String("key", key), zap.Error(err))
	}
	return n, err
}

// HGetAll 获取所有哈希字段；键不存在时返回空 map
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil && !IsNil(err) {
		c.logger.Error("redis hgetall failed", zap.String("key", key), zap.Error(err))
	}
	return m, err
}

// Del 删除键
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Error("redis del failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return n, err
}
