package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const appNamesKey = "feedr:apps:names"

// AppCatalog caches the names of the template applications. Template apps
// are reference data; nothing else is cached.
type AppCatalog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAppCatalog creates a Redis-backed app name cache.
func NewAppCatalog(client *redis.Client, ttl time.Duration) *AppCatalog {
	return &AppCatalog{
		client: client,
		ttl:    ttl,
	}
}

// Names returns the cached app names. ok is false on a cache miss.
func (c *AppCatalog) Names(ctx context.Context) (names []string, ok bool, err error) {
	data, err := c.client.Get(ctx, appNamesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get app names: %w", err)
	}

	if err := json.Unmarshal(data, &names); err != nil {
		return nil, false, fmt.Errorf("unmarshal app names: %w", err)
	}
	return names, true, nil
}

// SetNames stores names with the configured TTL.
func (c *AppCatalog) SetNames(ctx context.Context, names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshal app names: %w", err)
	}

	if err := c.client.Set(ctx, appNamesKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set app names: %w", err)
	}
	return nil
}

// Invalidate drops the cached names so the next read goes to PostgreSQL.
func (c *AppCatalog) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, appNamesKey).Err(); err != nil {
		return fmt.Errorf("redis del app names: %w", err)
	}
	return nil
}
