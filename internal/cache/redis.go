package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkravets/flightbook/config"
	"github.com/mkravets/flightbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

// AcquireSeatLock takes a short fencing lock in front of the durable
// conditional update. SetNX guarantees at most one holder per seat id.
func (c *RedisCache) AcquireSeatLock(ctx context.Context, seatID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatLockKey(seatID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSeatLock(ctx context.Context, seatID int64) error {
	return c.client.Del(ctx, seatLockKey(seatID)).Err()
}

func (c *RedisCache) GetLegsByRoute(ctx context.Context, origin, destination string) ([]domain.FlightLeg, error) {
	data, err := c.client.Get(ctx, routeKey(origin, destination)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var legs []domain.FlightLeg
	if err := json.Unmarshal(data, &legs); err != nil {
		return nil, err
	}
	return legs, nil
}

func (c *RedisCache) SetLegsByRoute(ctx context.Context, origin, destination string, legs []domain.FlightLeg) error {
	payload, err := json.Marshal(legs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, routeKey(origin, destination), payload, c.searchTTL).Err()
}

// InvalidateRoute drops the cached search result after a status change so
// readers do not see a stale latest status for the leg.
func (c *RedisCache) InvalidateRoute(ctx context.Context, origin, destination string) error {
	return c.client.Del(ctx, routeKey(origin, destination)).Err()
}

func seatLockKey(seatID int64) string {
	return fmt.Sprintf("lock:seat:%d", seatID)
}

func routeKey(origin, destination string) string {
	return fmt.Sprintf("cache:legs:%s:%s", origin, destination)
}
