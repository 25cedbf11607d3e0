package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/platform/obs"
)

// RedisRouteCache is a short-TTL cache of full route responses, keyed by
// rounded waypoints plus travel mode. Entries expire on their own; nothing
// is invalidated explicitly.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) (*RedisRouteCache, error) {
	if client == nil {
		return nil, errors.New("route cache: redis client is nil")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRouteCache{client: client, ttl: ttl}, nil
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ *domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache %q: %w", key, err)
	}

	var route domain.Route
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, false, fmt.Errorf("get route cache %q: decode: %w", key, err)
	}

	return &route, true, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, route *domain.Route) (err error) {
	defer obs.Time(ctx, "route.cache.Put")(&err)

	if route == nil {
		return errors.New("put route cache: route is nil")
	}

	data, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("put route cache %q: encode: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("put route cache %q: %w", key, err)
	}
	return nil
}
