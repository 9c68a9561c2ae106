package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is the shared-window variant: one INCR counter per key
// per window, so every replica sees the same budget. Fails open when redis
// is unreachable; auth endpoints should degrade, not go dark.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
	}
}

func (rl *RedisRateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		rkey := rl.prefix + key

		ctx := c.Request.Context()

		count, err := rl.rdb.Incr(ctx, rkey).Result()

		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			// first hit in this window owns the expiry
			_ = rl.rdb.Expire(ctx, rkey, rl.window).Err()
		}

		if count > int64(rl.limit) {
			retryAfter := int(rl.window.Seconds())

			ttl, err := rl.rdb.TTL(ctx, rkey).Result()
			if err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds())
			}

			abortRateLimited(c, retryAfter)
			return
		}

		c.Next()
	}
}
