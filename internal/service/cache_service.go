package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

const (
	classCachePrefix      = "catalog:classes"
	instructorCachePrefix = "catalog:instructors"
)

// SnapshotStore persists encoded listing snapshots.
type SnapshotStore interface {
	Load(ctx context.Context, key string, dest interface{}) error
	Store(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Purge(ctx context.Context, pattern string) (int, error)
}

// CacheService is the read-through cache in front of the public class and instructor listings.
// Store failures degrade to a database read; they never fail the request.
type CacheService struct {
	store   SnapshotStore
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service. ttl defaults to five minutes.
func NewCacheService(store SnapshotStore, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled reports whether snapshots are read and written.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.store != nil
}

func (s *CacheService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.store.Load(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

func (s *CacheService) save(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.store.Store(ctx, key, value, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every snapshot under the given key prefixes.
func (s *CacheService) Invalidate(ctx context.Context, prefixes ...string) {
	if !s.Enabled() {
		return
	}
	for _, prefix := range prefixes {
		if _, err := s.store.Purge(ctx, prefix+":*"); err != nil {
			s.logger.Warn("catalog cache purge failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}
}

// readThrough serves key from the cache or fills it from load.
func readThrough[T any](ctx context.Context, cache *CacheService, key string, load func(context.Context) (T, error)) (T, error) {
	var snapshot T
	if cache.lookup(ctx, key, &snapshot) {
		return snapshot, nil
	}
	fresh, err := load(ctx)
	if err != nil {
		return fresh, err
	}
	cache.save(ctx, key, fresh)
	return fresh, nil
}

func classListKey(status string, limit int) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("%s:%s:%d", classCachePrefix, status, limit)
}

func instructorListKey(limit int) string {
	return fmt.Sprintf("%s:%d", instructorCachePrefix, limit)
}
