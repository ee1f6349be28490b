package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimiter answers whether a caller may proceed in the current
// window.
type rateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type memoryRateLimiter struct {
	limit  int
	window time.Duration
	mu     sync.Mutex
	items  map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func newMemoryRateLimiter(limit int, window time.Duration) *memoryRateLimiter {
	return &memoryRateLimiter{
		limit:  limit,
		window: window,
		items:  make(map[string]*rateLimitEntry),
	}
}

func (r *memoryRateLimiter) Allow(_ context.Context, key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.items[key]
	if entry == nil || now.Sub(entry.windowStart) > r.window {
		entry = &rateLimitEntry{windowStart: now}
		r.items[key] = entry
	}

	if entry.count >= r.limit {
		return false
	}

	entry.count++
	return true
}

// redisRateLimiter shares one fixed window across replicas. Redis
// being down fails open; throttling is not worth an outage.
type redisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func newRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *redisRateLimiter {
	return &redisRateLimiter{client: client, limit: limit, window: window}
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}

	redisKey := "ratelimit:" + key
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.client.Expire(ctx, redisKey, r.window)
	}
	return count <= int64(r.limit)
}

func rateLimitMiddleware(limiter rateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			AbortWithError(c, newAPIError(http.StatusTooManyRequests, "rate limit exceeded"))
			return
		}
		c.Next()
	}
}
