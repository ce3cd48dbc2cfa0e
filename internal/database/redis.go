package database

import (
	"context"
	"fmt"
	"log"

	"waitlist-referral/internal/config"

	"github.com/redis/go-redis/v9"
)

const addressKeyPrefix = "waitlist:ip:"

func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	_, err := rdb.Ping(context.Background()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("Connected to Redis")
	return rdb, nil
}

// RedisCounter keeps per-address attempt counts in Redis. INCR creates the key
// at zero when missing, so the upsert and increment happen in one command.
type RedisCounter struct {
	Redis *redis.Client
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{Redis: rdb}
}

func (c *RedisCounter) IncrementAddress(ctx context.Context, address string) (int64, error) {
	count, err := c.Redis.Incr(ctx, addressKeyPrefix+address).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", address, err)
	}
	return count, nil
}

// AddressCount reads the current count without changing it.
func (c *RedisCounter) AddressCount(ctx context.Context, address string) (int64, error) {
	count, err := c.Redis.Get(ctx, addressKeyPrefix+address).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", address, err)
	}
	return count, nil
}
