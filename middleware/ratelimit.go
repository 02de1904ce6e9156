package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/utils"
)

// Counter counts hits of key inside a fixed window that starts with the first hit.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows limit requests per client IP per window. A nil counter disables
// it; counter errors let the request through.
func RateLimit(counter Counter, limit int, window time.Duration, prefix string, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if counter == nil || limit <= 0 {
			return c.Next()
		}

		count, err := counter.Incr(c.UserContext(), prefix+":"+c.IP(), window)
		if err != nil {
			log.Warn("rate limiter error", "prefix", prefix, "err", err)
			return c.Next()
		}
		if count > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(utils.ErrorResponse{
				Message: "Too many requests, try again later",
			})
		}
		return c.Next()
	}
}
