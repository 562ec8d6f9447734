package cache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
)

// DefaultTTL bounds how stale a label can get when an invalidation is lost
const DefaultTTL = 15 * time.Minute

// Config holds Redis connection configuration
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// DefaultConfig returns a Config with sensible defaults. An empty Addr disables the cache.
func DefaultConfig() *Config {
	return &Config{
		KeyPrefix: "jewellery:inventory:",
		TTL:       DefaultTTL,
	}
}

// RedisLabelCache keeps one hash of id -> label per catalog kind
type RedisLabelCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLabelCache creates a cache over a new client for config
func NewRedisLabelCache(config *Config) *RedisLabelCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return NewRedisLabelCacheWithClient(client, config.KeyPrefix, config.TTL)
}

// NewRedisLabelCacheWithClient creates a cache over an existing client
func NewRedisLabelCacheWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisLabelCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLabelCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisLabelCache) key(kind domain.CatalogKind) string {
	return c.prefix + "labels:" + string(kind)
}

// Ping checks the connection
func (c *RedisLabelCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client
func (c *RedisLabelCache) Close() error {
	return c.client.Close()
}

// GetLabels returns the cached labels of the ids it knows
func (c *RedisLabelCache) GetLabels(ctx context.Context, kind domain.CatalogKind, ids []string) (map[string]string, error) {
	labels := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return labels, nil
	}

	values, err := c.client.HMGet(ctx, c.key(kind), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s labels: %w", kind, err)
	}
	for i, value := range values {
		if label, ok := value.(string); ok {
			labels[ids[i]] = label
		}
	}
	return labels, nil
}

// SetLabels stores labels and refreshes the hash TTL
func (c *RedisLabelCache) SetLabels(ctx context.Context, kind domain.CatalogKind, labels map[string]string) error {
	if len(labels) == 0 {
		return nil
	}

	key := c.key(kind)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, labels)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %s labels: %w", kind, err)
	}
	return nil
}

// Invalidate drops cached labels
func (c *RedisLabelCache) Invalidate(ctx context.Context, kind domain.CatalogKind, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.client.HDel(ctx, c.key(kind), ids...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %s labels: %w", kind, err)
	}
	return nil
}
