package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-school-api/internal/models"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

func TestCatalogCacheWithoutClient(t *testing.T) {
	cache := NewCatalogCache(nil, nil)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "catalog:classes:all:0", []models.Class{{ID: "c-1"}}, time.Minute))

	var out []models.Class
	err := cache.Load(ctx, "catalog:classes:all:0", &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Empty(t, out)

	n, err := cache.Purge(ctx, "catalog:classes:*")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, cache.PingContext(ctx))
	assert.NoError(t, cache.Close())
}
