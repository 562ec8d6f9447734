package cache

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
)

func TestNoopLabelCache(t *testing.T) {
	var c NoopLabelCache
	ctx := context.Background()

	require.NoError(t, c.SetLabels(ctx, domain.CatalogUnit, map[string]string{"u-1": "Gram"}))
	labels, err := c.GetLabels(ctx, domain.CatalogUnit, []string{"u-1"})
	require.NoError(t, err)
	assert.Empty(t, labels)
	assert.NoError(t, c.Invalidate(ctx, domain.CatalogUnit, "u-1"))
}

func unreachableCache() *RedisLabelCache {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewRedisLabelCacheWithClient(client, "test:", 0)
}

func TestRedisLabelCache_Defaults(t *testing.T) {
	c := unreachableCache()
	defer c.Close()

	assert.Equal(t, DefaultTTL, c.ttl)
	assert.Equal(t, "test:labels:stone_purity", c.key(domain.CatalogStonePurity))
}

func TestRedisLabelCache_EmptyInputsSkipRedis(t *testing.T) {
	c := unreachableCache()
	defer c.Close()
	ctx := context.Background()

	labels, err := c.GetLabels(ctx, domain.CatalogUnit, nil)
	require.NoError(t, err)
	assert.Empty(t, labels)
	assert.NoError(t, c.SetLabels(ctx, domain.CatalogUnit, nil))
	assert.NoError(t, c.Invalidate(ctx, domain.CatalogUnit))
}

func TestRedisLabelCache_ConnectionErrors(t *testing.T) {
	c := unreachableCache()
	defer c.Close()
	ctx := context.Background()

	_, err := c.GetLabels(ctx, domain.CatalogSupplier, []string{"s-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read supplier labels")

	err = c.SetLabels(ctx, domain.CatalogSupplier, map[string]string{"s-1": "Shree Gems"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write supplier labels")

	err = c.Invalidate(ctx, domain.CatalogSupplier, "s-1")
	require.Error(t, err)

	assert.Error(t, c.Ping(ctx))
}
