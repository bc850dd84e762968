package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/wwtravelclub/internal/travel"
)

const defaultTTL = time.Hour

// Cache wraps a Redis client and stores loaded destination aggregates by name.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with a 1-hour TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// key returns the Redis key for the given destination name. Names are
// matched exactly, the same way the repository looks them up.
func key(name string) string {
	return "destination:name:" + name
}

// Get retrieves a destination aggregate from cache.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) Get(ctx context.Context, name string) (*travel.Destination, error) {
	val, err := c.client.Get(ctx, key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for destination %s: %w", name, err)
	}

	var d travel.Destination
	if err := json.Unmarshal([]byte(val), &d); err != nil {
		return nil, fmt.Errorf("unmarshaling cached destination %s: %w", name, err)
	}

	return &d, nil
}

// Set stores the aggregate under its own name with the configured TTL.
func (c *Cache) Set(ctx context.Context, d *travel.Destination) error {
	if d == nil {
		return nil
	}

	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling destination %s: %w", d.Name, err)
	}

	if err := c.client.Set(ctx, key(d.Name), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set for destination %s: %w", d.Name, err)
	}

	return nil
}

// Delete removes the cached entry for the given destination name.
func (c *Cache) Delete(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, key(name)).Err(); err != nil {
		return fmt.Errorf("cache delete for destination %s: %w", name, err)
	}
	return nil
}

// Connect parses redisURL and returns a client that has answered a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// Ping reports whether the Redis server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
