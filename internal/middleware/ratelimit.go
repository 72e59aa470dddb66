package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChakCage/Borlas/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// RateLimiter counts requests per key in fixed Redis windows.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	policy FailPolicy
}

// NewRateLimiter allows limit requests per window. A nil client disables
// limiting under FailOpen.
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window, policy: policy}
}

// Allow reports whether another request for resource/id fits the window.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string) (bool, error) {
	if l.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	// INCR and set EXPIRE if new
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(l.limit), nil
}

// Handler returns a Fiber middleware enforcing the limit. It keys by the
// authenticated user when known, otherwise by remote IP.
func (l *RateLimiter) Handler(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid := c.Locals(LocalUserID); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = fmt.Sprintf("ip:%s", c.IP())
		}

		allowed, err := l.Allow(c.UserContext(), resource, id)
		if err != nil {
			if l.policy == FailClosed {
				observability.Logger.WarnContext(c.UserContext(), "rate limit unavailable, failing closed",
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(l.window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
				"code":  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
