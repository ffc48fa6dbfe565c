package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/consistency"
)

// ResponseCache stores assembled dashboard response bundles in Redis so
// repeated requests for the same creator and date window skip the partner
// round trips. Cached payloads are re-tagged on read so the consistency
// layer can tell a replay from a live fetch.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewResponseCache creates a response cache with the given entry TTL.
func NewResponseCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ResponseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached bundle for key, or (nil, false) on a miss. Every
// source payload in a hit is marked cached=true.
func (c *ResponseCache) Get(ctx context.Context, key string) (consistency.ResponseBundle, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var bundle consistency.ResponseBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false
	}

	for _, payload := range bundle {
		if payload != nil {
			payload["cached"] = true
		}
	}
	return bundle, true
}

// Set stores the bundle under key for the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, bundle consistency.ResponseBundle) error {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Invalidate removes the cached bundle for key, if any.
func (c *ResponseCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
