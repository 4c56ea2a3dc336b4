// Package cache holds the Redis read-through cache for product lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"shopcore/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "product:"

// RedisProductCache caches products by ID. Redis failures are logged and
// treated as misses; the database stays the source of truth.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProductCache creates a new RedisProductCache.
func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

func productKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Get returns the cached product, if any.
func (c *RedisProductCache) Get(ctx context.Context, id int64) (*models.Product, bool) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Cache get failed for product %d: %v", id, err)
		}
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		log.Printf("Cache entry for product %d is corrupt: %v", id, err)
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &product, true
}

// Set stores the product for the configured TTL.
func (c *RedisProductCache) Set(ctx context.Context, product *models.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		log.Printf("Cache marshal failed for product %d: %v", product.ID, err)
		return
	}
	if err := c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err(); err != nil {
		log.Printf("Cache set failed for product %d: %v", product.ID, err)
	}
}

// Invalidate drops the cached product.
func (c *RedisProductCache) Invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		log.Printf("Cache invalidate failed for product %d: %v", id, err)
	}
}
