package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"karabook/internal/config"
	"karabook/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisScheduleCache(client *redis.Client, ttl time.Duration) *RedisScheduleCache {
	return &RedisScheduleCache{
		client: client,
		ttl:    ttl,
	}
}

func scheduleKey(roomID, day string) string {
	return fmt.Sprintf("schedule:%s:%s", roomID, day)
}

// GetDay returns the cached day schedule, or (nil, nil) on a cache miss.
func (r *RedisScheduleCache) GetDay(ctx context.Context, roomID string, day string) ([]*models.Booking, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, scheduleKey(roomID, day)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule from redis: %w", err)
	}

	var bookings []*models.Booking
	if err := json.Unmarshal([]byte(val), &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}

	return bookings, nil
}

func (r *RedisScheduleCache) SetDay(ctx context.Context, roomID string, day string, bookings []*models.Booking) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	if err := r.client.Set(ctx, scheduleKey(roomID, day), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set schedule in redis: %w", err)
	}

	return nil
}

func (r *RedisScheduleCache) InvalidateDay(ctx context.Context, roomID string, day string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, scheduleKey(roomID, day)).Err(); err != nil {
		return fmt.Errorf("failed to delete schedule from redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
