package router

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/reseller-hub/internal/http/response"
	"github.com/reseller-hub/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitDecision 一次计数的结果
type RateLimitDecision struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// RateLimiter 固定窗口计数器
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	Message       string
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RedisRateLimiter 基于 Redis 的计数器，多实例共享
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter 创建 Redis 计数器
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

// Allow 计数并判断是否超限
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error) {
	windowSeconds := int(math.Ceil(window.Seconds()))
	if windowSeconds < 1 {
		windowSeconds = 1
	}
	result, err := rateLimitScript.Run(ctx, l.client, []string{key}, windowSeconds).Result()
	if err != nil {
		return RateLimitDecision{}, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return RateLimitDecision{}, fmt.Errorf("unexpected rate limit result %v", result)
	}
	count, ok := toInt64(values[0])
	if !ok {
		return RateLimitDecision{}, fmt.Errorf("unexpected rate limit count %v", values[0])
	}
	ttlSeconds, _ := toInt64(values[1])
	if ttlSeconds < 1 {
		ttlSeconds = int64(windowSeconds)
	}
	return RateLimitDecision{
		Allowed:    count <= int64(limit),
		Count:      count,
		RetryAfter: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

const memorySweepThreshold = 1024

// MemoryRateLimiter 进程内计数器，仅适用于单实例部署
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

// NewMemoryRateLimiter 创建进程内计数器
func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

// Allow 计数并判断是否超限
func (l *MemoryRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error) {
	if window <= 0 {
		window = time.Second
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.windows) >= memorySweepThreshold {
		for k, w := range l.windows {
			if !now.Before(w.resetAt) {
				delete(l.windows, k)
			}
		}
	}
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		l.windows[key] = w
	}
	w.count++
	return RateLimitDecision{
		Allowed:    w.count <= int64(limit),
		Count:      w.count,
		RetryAfter: w.resetAt.Sub(now),
	}, nil
}

// RateLimitMiddleware 频率限制中间件；计数器不可用时放行并记录告警
func RateLimitMiddleware(limiter RateLimiter, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		window := time.Duration(rule.WindowSeconds) * time.Second
		decision, err := limiter.Allow(c.Request.Context(), key, rule.MaxRequests, window)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warnw("rate_limit_counter_unavailable",
				"key", key,
				"error", err,
			)
			c.Next()
			return
		}
		if !decision.Allowed {
			waitSeconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(waitSeconds))
			response.Error(c, response.CodeTooManyRequests, rateLimitMessage(rule.Message, waitSeconds))
			c.Abort()
			return
		}

		c.Next()
	}
}

// rateLimitMessage 自定义文案仅在包含 %d 时填入等待秒数
func rateLimitMessage(custom string, waitSeconds int) string {
	msg := strings.TrimSpace(custom)
	if msg == "" {
		msg = "Too many requests, please try again in %d seconds"
	}
	if strings.Count(msg, "%d") == 1 && strings.Count(msg, "%") == 1 {
		return fmt.Sprintf(msg, waitSeconds)
	}
	return msg
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
