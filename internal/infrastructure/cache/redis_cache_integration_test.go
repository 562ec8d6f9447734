//go:build integration

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	pkgtesting "github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/testing"
)

func TestRedisLabelCache_Integration(t *testing.T) {
	ctx := pkgtesting.Context(t, 2 * time.Minute)

	container, err := pkgtesting.NewRedisContainer(ctx)
	require.NoError(t, err)
	pkgtesting.Cleanup(t, "container", container.Close)

	config := DefaultConfig()
	config.Addr = container.Addr
	c := NewRedisLabelCache(config)
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.SetLabels(ctx, domain.CatalogUnit, map[string]string{"u-1": "Gram", "u-2": "Carat"}))

	labels, err := c.GetLabels(ctx, domain.CatalogUnit, []string{"u-1", "u-2", "u-3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u-1": "Gram", "u-2": "Carat"}, labels)

	other, err := c.GetLabels(ctx, domain.CatalogBranch, []string{"u-1"})
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, c.Invalidate(ctx, domain.CatalogUnit, "u-1"))
	labels, err = c.GetLabels(ctx, domain.CatalogUnit, []string{"u-1", "u-2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u-2": "Carat"}, labels)

	ttl, err := c.client.TTL(ctx, c.key(domain.CatalogUnit)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
