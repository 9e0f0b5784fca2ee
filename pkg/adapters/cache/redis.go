package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

const keyPrefix = "ctrltab:favicon:"

// RedisFaviconCache stores favicon resolutions. An empty value is a cached
// miss and is still reported as found.
type RedisFaviconCache struct {
	client *redis.Client
}

func NewRedisFaviconCache(ctx context.Context, redisURL string) (*RedisFaviconCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisFaviconCache{client: client}, nil
}

func NewRedisFaviconCacheWithClient(client *redis.Client) *RedisFaviconCache {
	return &RedisFaviconCache{client: client}
}

func (c *RedisFaviconCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisFaviconCache) Set(ctx context.Context, key, ref string, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+key, ref, ttl).Err()
}

func (c *RedisFaviconCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisFaviconCache) Close() error {
	return c.client.Close()
}

var _ ports.FaviconCache = (*RedisFaviconCache)(nil)
