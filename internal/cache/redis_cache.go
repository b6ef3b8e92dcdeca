package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProductCache stores lookups as JSON under Key(id) with a TTL.
// Reads and writes go through a Breaker; invalidations are always attempted
// so a recovering Redis never keeps serving a stale entry past its TTL.
type RedisProductCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *Breaker
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl, breaker: NewBreaker(BreakerConfig{})}
}

// BreakerState reports the state of the breaker guarding Redis.
func (c *RedisProductCache) BreakerState() BreakerState { return c.breaker.State() }

func (c *RedisProductCache) Get(ctx context.Context, productID uint) (*ProductLookup, bool, error) {
	var val []byte
	err := c.breaker.Do(func() error {
		var err error
		val, err = c.client.Get(ctx, Key(productID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if val == nil {
		return nil, false, nil
	}

	var v ProductLookup
	if err := json.Unmarshal(val, &v); err != nil {
		return nil, false, err
	}
	return &v, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, productID uint, value *ProductLookup) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.breaker.Do(func() error {
		return c.client.Set(ctx, Key(productID), payload, c.ttl).Err()
	})
}

func (c *RedisProductCache) Invalidate(ctx context.Context, productIDs ...uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, Key(id))
	}
	err := c.client.Del(ctx, keys...).Err()
	c.breaker.Record(err)
	return err
}
