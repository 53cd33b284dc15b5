package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter counts hits with INCR and lets the key expire with the window,
// so every instance behind the load balancer sees the same counters.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
}

func NewRedisLimiter(client redis.Cmdable) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "ratelimit:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, period time.Duration) (Result, error) {
	k := l.prefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("incr %s: %w", k, err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, k, period).Err(); err != nil {
			return Result{}, fmt.Errorf("pexpire %s: %w", k, err)
		}
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("pttl %s: %w", k, err)
	}
	if ttl < 0 {
		// key lost its expiry; restore it so the window cannot stick forever
		ttl = period
		if err := l.client.PExpire(ctx, k, period).Err(); err != nil {
			return Result{}, fmt.Errorf("pexpire %s: %w", k, err)
		}
	}

	return newResult(int(count), limit, time.Now().Add(ttl)), nil
}
