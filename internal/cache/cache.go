package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache 以 redis 保存短期结果，同一个 key 同时只会有一次回源
// redis 不可用时直接回源，缓存只是优化，不影响正确性
type Cache struct {
	rdb       *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
	// 单次回源的超时，不跟随调用方取消
	fetchTimeout time.Duration
	group        singleflight.Group
}

func New(rdb *redis.Client, ttl, opTimeout, fetchTimeout time.Duration) *Cache {
	return &Cache{
		rdb:          rdb,
		ttl:          ttl,
		opTimeout:    opTimeout,
		fetchTimeout: fetchTimeout,
	}
}

func (c *Cache) get(ctx context.Context, key string, dst any) bool {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("failed to read cache", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("failed to decode cached value", "key", key, "error", err)
		return false
	}

	return true
}

func (c *Cache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("failed to encode value for cache", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("failed to write cache", "key", key, "error", err)
	}
}

// Remember 先查缓存，未命中时通过 singleflight 回源并写回缓存
// 没有 redis 时也经过 singleflight，同一个 key 同时只有一次回源
func Remember[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	enabled := c.rdb != nil && c.ttl > 0

	if enabled {
		var cached T
		if c.get(ctx, key, &cached) {
			return cached, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// 回源与第一个调用方的 ctx 脱钩，它断开不会连累其他等待者
		fetchCtx, cancel := c.fetchContext(ctx)
		defer cancel()

		fresh, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if enabled {
			c.set(fetchCtx, key, fresh)
		}
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *Cache) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if c.fetchTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, c.fetchTimeout)
}
