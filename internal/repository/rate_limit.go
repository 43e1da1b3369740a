package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"realty_messaging/pkg/logger"
)

const rateLimitKeyPrefix = "ratelimit:%s"

type RateLimitRepository interface {
	// Hit counts one request against key and returns the count inside the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := fmt.Sprintf(rateLimitKeyPrefix, key)

	// Plain EXPIRE keeps this working on Redis versions without EXPIRE NX.
	// A key seen without a TTL gets one, including keys left behind by a
	// crash between INCR and EXPIRE.
	pipe := r.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to increment rate limit", "error", err, "key", key)
		return 0, fmt.Errorf("rate limit hit: %w", err)
	}

	if ttl.Val() < 0 {
		if err := r.redis.Expire(ctx, redisKey, window).Err(); err != nil {
			r.log.Error("Failed to set rate limit window", "error", err, "key", key)
			return 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return incr.Val(), nil
}
