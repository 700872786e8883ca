package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// PaymentRateLimit caps payment submissions per user per minute using Redis.
// It is a no-op without Redis or with a non-positive limit, and fails open on
// cache errors.
func PaymentRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil || maxPerMin <= 0 {
			return c.Next()
		}
		subject, _ := c.Locals("user_id").(string)
		if subject == "" {
			subject = c.IP()
		}
		window := time.Now().UTC().Unix() / 60
		key := fmt.Sprintf("rl:payment:%s:%d", subject, window)

		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(60-int(time.Now().UTC().Unix()%60)))
			return fiber.NewError(http.StatusTooManyRequests, "too many payment attempts, try again later")
		}
		return c.Next()
	}
}
