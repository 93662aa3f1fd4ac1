package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter decides whether a caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Config() RateLimitConfig
}

// GenerationRateLimitConfig limits generation requests per session per hour
func GenerationRateLimitConfig(perHour int) RateLimitConfig {
	return RateLimitConfig{
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: "rate_limit:generation",
	}
}

// RedisLimiter is a fixed-window limiter shared by every process using the
// same Redis.
type RedisLimiter struct {
	redis  redis.Cmdable
	config RateLimitConfig
	now    func() time.Time
}

// NewRedisLimiter creates a new rate limiter instance
func NewRedisLimiter(redisClient redis.Cmdable, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

// Config returns the limiter configuration
func (rl *RedisLimiter) Config() RateLimitConfig {
	return rl.config
}

// Allow counts a request in the current window
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Pipeline keeps the increment and its expiry together
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("failed to count request: %w", err)
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= rl.config.Limit,
		Remaining: remaining,
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// MemoryLimiter is an in-process token bucket per key. The bucket holds
// Limit tokens and refills at Limit per Window.
type MemoryLimiter struct {
	config RateLimitConfig
	now    func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewMemoryLimiter creates a limiter that keeps its state in memory
func NewMemoryLimiter(config RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{
		config:   config,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Config returns the limiter configuration
func (ml *MemoryLimiter) Config() RateLimitConfig {
	return ml.config
}

// Allow takes a token from key's bucket
func (ml *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	ml.mu.Lock()
	limiter, ok := ml.limiters[key]
	if !ok {
		every := ml.config.Window / time.Duration(ml.config.Limit)
		limiter = rate.NewLimiter(rate.Every(every), ml.config.Limit)
		ml.limiters[key] = limiter
	}
	ml.mu.Unlock()

	now := ml.now()
	allowed := limiter.AllowN(now, 1)
	tokens := limiter.TokensAt(now)

	remaining := int(math.Floor(tokens))
	if remaining < 0 {
		remaining = 0
	}
	// Time until the bucket is full again
	missing := float64(ml.config.Limit) - tokens
	reset := now.Add(time.Duration(missing * float64(ml.config.Window) / float64(ml.config.Limit)))

	return Decision{Allowed: allowed, Remaining: remaining, Reset: reset}, nil
}

// RateLimit returns a Gin middleware that limits requests per session. It
// must run after SessionMiddleware. onLimited may be nil.
func RateLimit(limiter Limiter, log *zap.Logger, onLimited func()) gin.HandlerFunc {
	cfg := limiter.Config()
	return func(c *gin.Context) {
		sessionID, ok := SessionID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session required"})
			return
		}

		decision, err := limiter.Allow(c.Request.Context(), sessionID)
		if err != nil {
			// Fail open: a limiter outage must not block generation
			log.Warn("Rate limit check failed", zap.Error(err), zap.String("session_id", sessionID))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			if onLimited != nil {
				onLimited()
			}
			retryAfter := int(math.Ceil(decision.Reset.Sub(time.Now()).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", cfg.Limit, cfg.Window),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
