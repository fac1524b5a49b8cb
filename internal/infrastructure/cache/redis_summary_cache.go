package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/redis/go-redis/v9"
)

// RedisSummaryCache shares summaries across service instances.
type RedisSummaryCache struct {
	client *redis.Client
}

// RedisOptions holds Redis connection settings.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisSummaryCache connects to Redis and verifies the connection with PING.
func NewRedisSummaryCache(ctx context.Context, opts RedisOptions) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSummaryCache{client: client}, nil
}

// NewRedisSummaryCacheWithClient wraps an existing client.
func NewRedisSummaryCacheWithClient(client *redis.Client) *RedisSummaryCache {
	return &RedisSummaryCache{client: client}
}

// Get returns the cached summary, if present.
func (c *RedisSummaryCache) Get(ctx context.Context, key string) (*ledger.Summary, bool, error) {
	data, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get summary: %w", err)
	}

	s, err := decodeSummary(data)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Set stores the summary with a TTL.
func (c *RedisSummaryCache) Set(ctx context.Context, key string, summary *ledger.Summary, ttl time.Duration) error {
	data, err := encodeSummary(summary)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, KeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set summary: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}
