package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
)

// RedisLimiter is a fixed-window limiter shared by every replica that
// points at the same Redis. Redis failures let the request through.
type RedisLimiter struct {
	Client *redis.Client
	Prefix string
}

func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.Client == nil || rule.Limit <= 0 || rule.Window <= 0 {
		return true, 0
	}
	redisKey := l.Prefix + key

	count, err := l.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		telemetry.Error("ratelimit.redis_failed", map[string]any{"error": err, "key": redisKey})
		return true, 0
	}
	if count == 1 {
		if err := l.Client.PExpire(ctx, redisKey, rule.Window).Err(); err != nil {
			telemetry.Error("ratelimit.redis_failed", map[string]any{"error": err, "key": redisKey})
		}
	}
	if count <= int64(rule.Limit) {
		return true, 0
	}

	ttl, err := l.Client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return false, rule.Window
	}
	if ttl < 0 {
		// The window key lost its expiry; start a fresh one.
		_ = l.Client.PExpire(ctx, redisKey, rule.Window).Err()
		ttl = rule.Window
	}
	return false, ttl
}
