package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
	"github.com/redis/go-redis/v9"
)

const snapshotKey = "catalog:products:v1"

// RedisCache fronts a Source with a JSON snapshot in Redis. Cache errors
// are logged and the underlying source is used directly.
type RedisCache struct {
	redis  *redis.Client
	source Source
	ttl    time.Duration
	logger *logging.Logger
}

var _ Source = (*RedisCache)(nil)

// NewRedisCache wraps source. A non-positive ttl defaults to five minutes.
func NewRedisCache(client *redis.Client, source Source, ttl time.Duration, logger *logging.Logger) *RedisCache {
	if client == nil {
		panic("catalog: redis client cannot be nil")
	}
	if source == nil {
		panic("catalog: source cannot be nil")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisCache{redis: client, source: source, ttl: ttl, logger: logger}
}

// All returns the cached snapshot, loading from the source on a miss.
func (c *RedisCache) All(ctx context.Context) ([]Product, error) {
	data, err := c.redis.Get(ctx, snapshotKey).Bytes()
	switch {
	case err == nil:
		var products []Product
		jsonErr := json.Unmarshal(data, &products)
		if jsonErr == nil {
			return products, nil
		}
		c.logger.Warn("discarding corrupt catalog snapshot", "error", jsonErr)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("catalog cache read failed", "error", err)
	}

	products, err := c.source.All(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, products)
	return products, nil
}

// Invalidate drops the snapshot so the next read reloads from the source.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, snapshotKey).Err()
}

func (c *RedisCache) store(ctx context.Context, products []Product) {
	data, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("failed to encode catalog snapshot", "error", err)
		return
	}
	if err := c.redis.Set(ctx, snapshotKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", "error", err)
	}
}
