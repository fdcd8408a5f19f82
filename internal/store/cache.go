// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"event-insights-workers/internal/common/metrics"
)

const cacheKeyPrefix = "analytics"

// Cache kinds, one per cached result type.
const (
	KindAttendance      = "attendance"
	KindSentiment       = "sentiment"
	KindRating          = "rating"
	KindRecommendations = "recommendations"
)

// ResultCache stores computed analytics as JSON. A zero TTL or nil client
// disables it; every call then behaves as a miss.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func CacheKey(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, kind, id)
}

func (c *ResultCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get decodes a cached value into dest and reports whether it was found.
func (c *ResultCache) Get(ctx context.Context, kind, id string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	data, err := c.client.Get(ctx, CacheKey(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.AnalyticsCacheRequests.WithLabelValues(kind, "miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.AnalyticsCacheRequests.WithLabelValues(kind, "error").Inc()
		return false, fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.AnalyticsCacheRequests.WithLabelValues(kind, "error").Inc()
		return false, fmt.Errorf("cache decode: %w", err)
	}
	metrics.AnalyticsCacheRequests.WithLabelValues(kind, "hit").Inc()
	return true, nil
}

func (c *ResultCache) Set(ctx context.Context, kind, id string, value interface{}) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, CacheKey(kind, id), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
