package homepage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const renderCacheKey = "homepage:rendered"

// RenderCache stores the fully rendered homepage HTML in Redis with a short
// TTL. Section writes invalidate it.
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRenderCache creates a rendered-homepage cache with the given TTL.
func NewRenderCache(client *redis.Client, ttl time.Duration) *RenderCache {
	return &RenderCache{client: client, ttl: ttl}
}

// Get returns the cached HTML, or ("", false) on a miss.
func (c *RenderCache) Get(ctx context.Context) (string, bool, error) {
	val, err := c.client.Get(ctx, renderCacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get cached homepage: %w", err)
	}
	return val, true, nil
}

// Set stores the rendered HTML.
func (c *RenderCache) Set(ctx context.Context, content string) error {
	if err := c.client.Set(ctx, renderCacheKey, content, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache rendered homepage: %w", err)
	}
	return nil
}

// Invalidate drops the cached render.
func (c *RenderCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, renderCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate homepage cache: %w", err)
	}
	return nil
}
