// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"voluntra-backend/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client used for submission idempotency tokens.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// Reserve claims an idempotency token. It returns false when the token was
// already claimed, i.e. the submission is a replay.
func (c *RedisClient) Reserve(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	ok, err := c.Client.SetNX(ctx, "intake:submission:"+token, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

// Release frees a reserved token so a failed submission can be retried with
// the same session token.
func (c *RedisClient) Release(ctx context.Context, token string) error {
	return c.Client.Del(ctx, "intake:submission:"+token).Err()
}
