package config

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens the Redis connection used for caching. Returns nil
// when addr is empty or the server is unreachable; callers treat a nil
// client as "caching disabled".
func ConnectRedis(addr string) *redis.Client {
	if addr == "" {
		slog.Warn("REDIS_ADDR is not set, caching disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		slog.Error("could not connect to Redis, caching disabled", "error", err)
		return nil
	}

	slog.Info("connected to Redis")
	return rdb
}
