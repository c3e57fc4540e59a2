package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"pos/internal/domain/model"
)

const lowStockKey = "reports:low-stock"

type RedisLowStockCache struct {
	client *redis.Client
}

func NewRedisLowStockCache(addr string, password string, db int) *RedisLowStockCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisLowStockCache{client: client}
}

func (c *RedisLowStockCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisLowStockCache) Close() error {
	return c.client.Close()
}

func (c *RedisLowStockCache) Get(ctx context.Context) ([]model.Product, bool, error) {
	val, err := c.client.Get(ctx, lowStockKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []model.Product
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *RedisLowStockCache) Set(ctx context.Context, items []model.Product, ttl time.Duration) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, lowStockKey, payload, ttl).Err()
}
