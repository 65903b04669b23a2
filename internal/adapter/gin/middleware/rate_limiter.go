package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pmblueprints/internal/config"
)

// Token Bucket algorithm implemented in Lua for atomicity.
// Data structure: {last_refill_time, current_tokens}
const tokenBucketScript = `
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])         -- tokens per second
	local capacity = tonumber(ARGV[2])     -- max tokens in bucket
	local now = tonumber(ARGV[3])          -- current timestamp
	local requested = tonumber(ARGV[4])    -- tokens requested (always 1)

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	if tokens >= requested then
		tokens = tokens - requested
		redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
		redis.call('EXPIRE', key, 3600)
		return 1
	else
		redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
		redis.call('EXPIRE', key, 3600)
		return 0
	end
`

// RateLimiter limits requests per client IP with a Redis token bucket.
// Redis failures fail open.
func RateLimiter(client *redis.Client, cfg config.RateLimitConfig, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || client == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, c.FullPath(), c.ClientIP())
		if !allow(c, client, key, cfg.RequestsPerSecond, cfg.BurstCapacity, log) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": fmt.Sprintf("rate limit exceeded: %.2f requests/second (burst capacity: %d)", cfg.RequestsPerSecond, cfg.BurstCapacity),
			})
			return
		}
		c.Next()
	}
}

// PaymentRateLimiter applies the tighter per-user hourly budget to
// payment endpoints. It runs after RequireAuth.
func PaymentRateLimiter(client *redis.Client, cfg config.RateLimitConfig, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || client == nil || cfg.PaymentPerHour <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:payment:" + strconv.FormatInt(UserID(c), 10)
		perSecond := float64(cfg.PaymentPerHour) / 3600.0
		if !allow(c, client, key, perSecond, cfg.PaymentPerHour, log) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": fmt.Sprintf("payment rate limit exceeded: %d requests/hour", cfg.PaymentPerHour),
			})
			return
		}
		c.Next()
	}
}

func allow(c *gin.Context, client *redis.Client, key string, rate float64, burst int, log *zap.Logger) bool {
	ctx := c.Request.Context()
	now := float64(client.Time(ctx).Val().Unix())

	allowed, err := client.Eval(ctx, tokenBucketScript, []string{key}, rate, burst, now, 1).Int64()
	if err != nil {
		// Fail open: a broken limiter must not take the API down.
		log.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	return allowed == 1
}
