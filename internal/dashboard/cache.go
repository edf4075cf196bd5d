package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ukydev/fleet-maintenance/internal/metrics"
)

// Cache stores computed dashboard stats per day.
type Cache interface {
	Get(ctx context.Context, day string) (*Stats, bool, error)
	Set(ctx context.Context, day string, stats Stats) error
	Invalidate(ctx context.Context) error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(ctx context.Context, day string) (*Stats, bool, error) { return nil, false, nil }

func (NopCache) Set(ctx context.Context, day string, stats Stats) error { return nil }

func (NopCache) Invalidate(ctx context.Context) error { return nil }

// RedisCache keeps stats in Redis under "<prefix>stats:<day>".
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to the Redis server at url.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisCacheFromClient(redis.NewClient(opt), ttl), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "fleet:dashboard:"}
}

func (c *RedisCache) key(day string) string {
	return c.prefix + "stats:" + day
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisCache) Get(ctx context.Context, day string) (*Stats, bool, error) {
	b, err := c.rdb.Get(ctx, c.key(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false, err
	}
	var stats Stats
	if err := json.Unmarshal(b, &stats); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("decode cached stats: %w", err)
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &stats, true, nil
}

func (c *RedisCache) Set(ctx context.Context, day string, stats Stats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(day), b, c.ttl).Err()
}

// Invalidate drops every cached day.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"stats:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
