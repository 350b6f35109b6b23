package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-school-api/internal/models"
)

type brokenSnapshotStore struct{ purges int }

func (b *brokenSnapshotStore) Load(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis down")
}

func (b *brokenSnapshotStore) Store(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis down")
}

func (b *brokenSnapshotStore) Purge(ctx context.Context, pattern string) (int, error) {
	b.purges++
	return 0, errors.New("redis down")
}

func TestReadThroughDisabledAlwaysLoads(t *testing.T) {
	store := &memoryCacheRepo{}
	cache := NewCacheService(store, nil, 0, nil, false)

	loads := 0
	load := func(ctx context.Context) ([]models.User, error) {
		loads++
		return []models.User{{Email: "a@x.com"}}, nil
	}
	for i := 0; i < 2; i++ {
		_, err := readThrough(context.Background(), cache, "k", load)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, loads)
	assert.Nil(t, store.store)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	nilCache.Invalidate(context.Background(), classCachePrefix)
}

func TestReadThroughFillsAndServesSnapshot(t *testing.T) {
	metrics := NewMetricsService()
	store := &memoryCacheRepo{}
	cache := NewCacheService(store, metrics, time.Minute, nil, true)

	loads := 0
	load := func(ctx context.Context) ([]models.Class, error) {
		loads++
		return []models.Class{{ID: "c-1"}}, nil
	}
	key := classListKey("", 6)

	first, err := readThrough(context.Background(), cache, key, load)
	require.NoError(t, err)
	second, err := readThrough(context.Background(), cache, key, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))

	cache.Invalidate(context.Background(), classCachePrefix, instructorCachePrefix)
	assert.Equal(t, []string{"catalog:classes:*", "catalog:instructors:*"}, store.deletes)
}

func TestReadThroughSurvivesStoreFailure(t *testing.T) {
	store := &brokenSnapshotStore{}
	cache := NewCacheService(store, nil, 0, nil, true)

	got, err := readThrough(context.Background(), cache, "k", func(ctx context.Context) ([]models.Class, error) {
		return []models.Class{{ID: "c-2"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "c-2", got[0].ID)

	cache.Invalidate(context.Background(), classCachePrefix)
	assert.Equal(t, 1, store.purges)
}

func TestReadThroughPropagatesLoadError(t *testing.T) {
	store := &memoryCacheRepo{}
	cache := NewCacheService(store, nil, 0, nil, true)

	_, err := readThrough(context.Background(), cache, "k", func(ctx context.Context) ([]models.Class, error) {
		return nil, errors.New("db down")
	})
	assert.Error(t, err)
	assert.Empty(t, store.store)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "catalog:classes:all:0", classListKey("", 0))
	assert.Equal(t, "catalog:classes:approved:6", classListKey("approved", 6))
	assert.Equal(t, "catalog:instructors:6", instructorListKey(6))
}
