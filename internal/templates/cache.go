package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through Redis cache for template lookups. Templates are
// read on every templated task create/update, so they are the hottest read
// path in the module.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("template:%d", id)
}

// Fetch loads a cached template or populates the cache using the loader.
// Cache errors degrade to a direct load; they never fail the request.
func (c *Cache) Fetch(ctx context.Context, id int64, loader func(context.Context) (TaskTemplate, error)) (TaskTemplate, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err == nil {
		var tpl TaskTemplate
		if err := json.Unmarshal(raw, &tpl); err == nil {
			return tpl, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return loader(ctx)
	}

	tpl, err := loader(ctx)
	if err != nil {
		return TaskTemplate{}, err
	}
	if data, err := json.Marshal(tpl); err == nil {
		_ = c.client.Set(ctx, cacheKey(id), data, c.ttl).Err()
	}
	return tpl, nil
}

// Invalidate drops a template from the cache after update or delete.
func (c *Cache) Invalidate(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, cacheKey(id)).Err()
}
