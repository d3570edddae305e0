package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"tour_scraper/internal/adapters/observability"
)

// Cache stores raw source responses so repeated runs during the same window
// don't hammer the operator API.
type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *Cache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	observability.ObserveCache("redis", "hit")
	return v, true, nil
}

func (r *Cache) SetBytes(ctx context.Context, key string, v []byte, ttlSec int) error {
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key, v, time.Duration(ttlSec)*time.Second).Err()
}
