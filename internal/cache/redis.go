package cache

import (
	"context"
	"fmt"
	"time"

	"omnichat/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Client wraps the Redis client with the small surface the rest of the
// service needs. Counter operations fail open: when Redis is unreachable the
// first call in a window is always allowed.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and verifies connectivity
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get retrieves a value by key; returns "" on miss or Redis failure
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Set sets a value with optional expiration (0 means no expiry)
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Del deletes one or more keys
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Incr atomically increments a counter, attaching ttl when the increment
// created the key so every window expires. On Redis failure it returns 1 so
// callers treat the operation as the first in a fresh window.
func (c *Client) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	val, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis INCR failed, failing open")
		return 1, nil
	}
	if ttl > 0 && val == 1 {
		if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Redis EXPIRE failed")
		}
	}
	return val, nil
}
