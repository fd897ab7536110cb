package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/logger"
)

// SubmissionRateLimiter limits public testimonial submissions per
// (client IP, scope) pair, where scope is the space id or link slug route
// parameter named by scopeParam. It uses Redis INCR and EXPIRE in a
// pipeline. Redis failures never block the request: the API stays available
// when Redis is down.
func SubmissionRateLimiter(redisClient *redis.Client, scopeParam string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		scope := c.Param(scopeParam)
		key := fmt.Sprintf("ratelimit:submit:%s:%s", ip, scope)

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(c.Request.Context(), key)
		pipe.Expire(c.Request.Context(), key, window)

		if _, err := pipe.Exec(c.Request.Context()); err != nil {
			logger.GetLogger().Warnw("Rate limit check skipped, redis unavailable", "error", err)
			c.Next()
			return
		}

		count := incr.Val()
		if count > int64(limit) {
			ttl, err := redisClient.TTL(c.Request.Context(), key).Result()
			if err != nil || ttl < 0 {
				ttl = window
			}

			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))

			_ = c.Error(apperrors.RateLimitExceeded("Too many submissions. Please try again later.", int(ttl.Seconds())))
			c.Abort()
			return
		}

		remaining := limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		c.Next()
	}
}

// getClientIP extracts the real client IP, preferring proxy headers over
// RemoteAddr.
func getClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}
