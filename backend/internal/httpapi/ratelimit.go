package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"instagram-clone/backend/pkg/logger"
)

// tokenBucketScript refills and drains a per-key bucket atomically in
// redis. Returns 1 when the request is allowed.
const tokenBucketScript = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])
if tokens == nil then
  tokens = burst
  ts = now
end

tokens = math.min(burst, tokens + (now - ts) * rate)
local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HMSET', key, 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', key, math.ceil(burst / rate) * 2)
return allowed
`

// RateLimiter applies a redis-backed token bucket per client. It fails
// open: when redis is unreachable the request goes through.
type RateLimiter struct {
	client *redis.Client
	rate   int
	burst  int
	logger *zap.Logger
}

// NewRateLimiter connects to redis and verifies the connection
func NewRateLimiter(addr string, rate, burst int) (*RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RateLimiter{
		client: client,
		rate:   rate,
		burst:  burst,
		logger: logger.Get(),
	}, nil
}

// Allow reports whether the request identified by key may proceed
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	res, err := rl.client.Eval(ctx, tokenBucketScript,
		[]string{"ratelimit:" + key},
		rl.rate, rl.burst, time.Now().Unix(),
	).Result()
	if err != nil {
		// Fail-open: a rate limiter outage must not take the API down
		rl.logger.Warn("Rate limiter check failed", zap.Error(err))
		return true
	}
	allowed, ok := res.(int64)
	return !ok || allowed == 1
}

// Close releases the redis client
func (rl *RateLimiter) Close() error {
	return rl.client.Close()
}

// rateLimitMiddleware keys the bucket by authenticated user when
// available, by client IP otherwise.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id := currentUser(c); !id.IsZero() {
			key = id.Hex()
		}
		if !s.limiter.Allow(c.Request.Context(), key) {
			c.AbortWithStatusJSON(429, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
