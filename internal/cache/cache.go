package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/prodsight/amazon-review-scraper/internal/models"
)

const keyPrefix = "result:"

// Cache stores recent scrape results under a normalized query key. Repeated
// and near-simultaneous identical queries are served from here instead of
// launching another browser session against the target site.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(ctx context.Context, addr, password string, db int, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "cache"),
	}, nil
}

// Get returns the cached result for a query, or (nil, false) on miss. Cache
// errors degrade to a miss; the pipeline still works without redis.
func (c *Cache) Get(ctx context.Context, query string) (*models.Result, bool) {
	data, err := c.client.Get(ctx, cacheKey(query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", "error", err)
		}
		return nil, false
	}

	var result models.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("cache entry corrupt, ignoring", "error", err)
		return nil, false
	}

	return &result, true
}

func (c *Cache) Set(ctx context.Context, query string, result *models.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("failed to marshal result for cache", "error", err)
		return
	}

	if err := c.client.Set(ctx, cacheKey(query), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func cacheKey(query string) string {
	return keyPrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}
