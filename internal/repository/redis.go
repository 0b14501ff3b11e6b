package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelier/internal/config"
	"hotelier/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheIndexKey = "availability:keys"

// RedisAvailabilityCache stores availability search results in redis with a
// per-entry TTL. Written keys are tracked in a set so Invalidate can drop
// every live entry without a SCAN.
type RedisAvailabilityCache struct {
	client *redis.Client
}

// NewRedisClient builds a client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisAvailabilityCache(client *redis.Client) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client}
}

func (r *RedisAvailabilityCache) Get(ctx context.Context, key string) ([]models.HotelAvailability, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get availability from redis: %w", err)
	}

	var hotels []models.HotelAvailability
	if err := json.Unmarshal([]byte(val), &hotels); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached availability: %w", err)
	}
	return hotels, true, nil
}

func (r *RedisAvailabilityCache) Set(ctx context.Context, key string, hotels []models.HotelAvailability, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(hotels)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set availability in redis: %w", err)
	}
	if err := r.client.SAdd(ctx, cacheIndexKey, key).Err(); err != nil {
		return fmt.Errorf("failed to index availability key: %w", err)
	}
	return nil
}

// Invalidate drops every tracked availability entry. Called after each
// successful booking.
func (r *RedisAvailabilityCache) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	keys, err := r.client.SMembers(ctx, cacheIndexKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list availability keys: %w", err)
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete availability keys: %w", err)
		}
	}
	if err := r.client.Del(ctx, cacheIndexKey).Err(); err != nil {
		return fmt.Errorf("failed to delete availability index: %w", err)
	}
	return nil
}

// Ping verifies the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
