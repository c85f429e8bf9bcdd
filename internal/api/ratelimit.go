package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per key in fixed one-minute windows kept
// in Redis.
type RateLimiter struct {
	client    *redis.Client
	prefix    string
	window    time.Duration
	userLimit int
	anonLimit int
	now       func() time.Time
}

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

func NewRateLimiter(client *redis.Client, userLimit, anonLimit int) *RateLimiter {
	return &RateLimiter{
		client:    client,
		prefix:    "ratelimit:",
		window:    time.Minute,
		userLimit: userLimit,
		anonLimit: anonLimit,
		now:       time.Now,
	}
}

// Allow records one request for key and reports whether it fits limit.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int) (*RateLimitResult, error) {
	windowStart := l.now().Truncate(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, windowStart.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   count <= limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(l.window),
		Limit:     limit,
	}, nil
}

// key picks the bucket: the authenticated user, or the client address.
func (l *RateLimiter) key(c *gin.Context) (string, int) {
	if userID := currentUserID(c); userID != 0 {
		return "user-" + strconv.FormatUint(uint64(userID), 10), l.userLimit
	}
	return "ip-" + c.ClientIP(), l.anonLimit
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		key, limit := s.limiter.key(c)
		result, err := s.limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			// Redis trouble must not take the API down.
			s.logger.Warn("rate limit check failed", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(math.Ceil(result.ResetAt.Sub(s.limiter.now()).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			rateLimitedTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
