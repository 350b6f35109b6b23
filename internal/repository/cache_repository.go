package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

const (
	cacheNamespace = "language-school:"
	purgeBatchSize = 100
)

// CatalogCache keeps JSON snapshots of catalog listings in Redis under a shared namespace.
// With a nil client every lookup misses and every write is dropped.
type CatalogCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCatalogCache wraps client. client may be nil.
func NewCatalogCache(client *redis.Client, logger *zap.Logger) *CatalogCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{client: client, logger: logger}
}

// Load decodes the snapshot stored under key into dest. Missing keys yield ErrCacheMiss.
func (c *CatalogCache) Load(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, cacheNamespace+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return appErrors.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("load snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

// Store saves value under key until ttl elapses.
func (c *CatalogCache) Store(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	return c.client.Set(ctx, cacheNamespace+key, payload, ttl).Err()
}

// Purge unlinks every snapshot whose key matches pattern and reports how many were dropped.
func (c *CatalogCache) Purge(ctx context.Context, pattern string) (int, error) {
	if c.client == nil {
		return 0, nil
	}

	var (
		dropped int
		batch   = make([]string, 0, purgeBatchSize)
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("unlink snapshots: %w", err)
		}
		dropped += int(n)
		batch = batch[:0]
		return nil
	}

	iter := c.client.Scan(ctx, 0, cacheNamespace+pattern, purgeBatchSize).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatchSize {
			if err := flush(); err != nil {
				return dropped, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return dropped, fmt.Errorf("scan snapshots %s: %w", pattern, err)
	}
	if err := flush(); err != nil {
		return dropped, err
	}

	c.logger.Debug("catalog snapshots purged", zap.String("pattern", pattern), zap.Int("keys", dropped))
	return dropped, nil
}

// PingContext reports whether Redis answers. A cache without a client is always reachable.
func (c *CatalogCache) PingContext(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (c *CatalogCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
