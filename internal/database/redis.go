package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/adamanr/ems_service/internal/config"
	"github.com/redis/go-redis/v9"
)

func NewRedisConn(cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr,
		Password: cfg.Redis.RedisPassword,
		DB:       cfg.Redis.RedisDB,
	})

	_, err := rdb.Ping(context.Background()).Result()
	if err != nil {
		logger.Error("Failed to connect to Redis", slog.Any("error", err))
		return nil, err
	}

	logger.Info("Successfully connected to Redis")

	return rdb, nil
}

// Counter is the part of the redis client used for fixed window counting.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// noExpiry is what TTL reports for a key that exists without a timeout.
const noExpiry = time.Duration(-1)

// CodeLimiter allows at most limit uses of a key per window.
type CodeLimiter struct {
	rdb    Counter
	limit  int64
	window time.Duration
}

func NewCodeLimiter(rdb Counter, limit int64, window time.Duration) *CodeLimiter {
	return &CodeLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow counts one use of key. The window starts with the first use. A
// denied key without a timeout gets a fresh window so a lost EXPIRE cannot
// block it forever.
func (l *CodeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	if n == 1 {
		if err = l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}

	if n <= l.limit {
		return true, nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if ttl == noExpiry {
		if err = l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}

	return false, nil
}
