package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type RedisAdvisoryCache struct {
	client *redis.Client
}

func NewRedisAdvisoryCache(addr string, password string, db int) *RedisAdvisoryCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisAdvisoryCache{client: client}
}

func (c *RedisAdvisoryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisAdvisoryCache) Close() error {
	return c.client.Close()
}

func (c *RedisAdvisoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisAdvisoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) == 0 {
		return nil
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}
