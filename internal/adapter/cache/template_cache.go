package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "pmblueprints/internal/domain/template"
)

// TemplateCache defines the interface for template caching operations.
type TemplateCache interface {
	// Get retrieves a template from cache by ID.
	// Returns nil if the template is not cached.
	Get(ctx context.Context, id int64) (*domain.Template, error)

	// Set stores a template in cache with the configured TTL.
	Set(ctx context.Context, t *domain.Template) error

	// Delete removes a template from cache by ID.
	Delete(ctx context.Context, id int64) error

	// GetFacet retrieves a cached facet list (industries, categories).
	// Returns nil if the facet is not cached.
	GetFacet(ctx context.Context, name string) ([]string, error)

	// SetFacet stores a facet list in cache with the configured TTL.
	SetFacet(ctx context.Context, name string, values []string) error

	// DeleteFacets removes every cached facet list.
	DeleteFacets(ctx context.Context) error
}

// RedisTemplateCache implements TemplateCache using Redis as the backing store.
type RedisTemplateCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisTemplateCache creates a new Redis-backed template cache.
func NewRedisTemplateCache(client *redis.Client, ttl time.Duration, log *zap.Logger) TemplateCache {
	return &RedisTemplateCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (c *RedisTemplateCache) cacheKey(id int64) string {
	return fmt.Sprintf("template:%d", id)
}

func (c *RedisTemplateCache) facetKey(name string) string {
	return "template:facet:" + name
}

// Get retrieves a template from Redis cache.
func (c *RedisTemplateCache) Get(ctx context.Context, id int64) (*domain.Template, error) {
	key := c.cacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.log.Debug("cache miss", zap.Int64("template_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("template_id", id), zap.Error(err))
		return nil, err
	}

	var t domain.Template
	if err := json.Unmarshal(data, &t); err != nil {
		c.log.Error("failed to unmarshal cached template", zap.Int64("template_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("template_id", id))
	return &t, nil
}

// Set stores a template in Redis cache with TTL.
func (c *RedisTemplateCache) Set(ctx context.Context, t *domain.Template) error {
	if t == nil {
		return fmt.Errorf("cannot cache nil template")
	}

	key := c.cacheKey(t.ID)

	data, err := json.Marshal(t)
	if err != nil {
		c.log.Error("failed to marshal template for cache", zap.Int64("template_id", t.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("template_id", t.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached template", zap.Int64("template_id", t.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a template from Redis cache.
func (c *RedisTemplateCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int64("template_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int64("template_id", id))
	return nil
}

// GetFacet retrieves a cached facet list.
func (c *RedisTemplateCache) GetFacet(ctx context.Context, name string) ([]string, error) {
	data, err := c.client.Get(ctx, c.facetKey(name)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get facet from cache", zap.String("facet", name), zap.Error(err))
		return nil, err
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		c.log.Error("failed to unmarshal cached facet", zap.String("facet", name), zap.Error(err))
		return nil, err
	}

	return values, nil
}

// SetFacet stores a facet list in Redis cache with TTL.
func (c *RedisTemplateCache) SetFacet(ctx context.Context, name string, values []string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, c.facetKey(name), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set facet cache", zap.String("facet", name), zap.Error(err))
		return err
	}

	return nil
}

// DeleteFacets removes every cached facet list.
func (c *RedisTemplateCache) DeleteFacets(ctx context.Context) error {
	keys := []string{c.facetKey("industries"), c.facetKey("categories")}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to delete facet caches", zap.Error(err))
		return err
	}
	return nil
}
