package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit caps how often a single staff member can hit an endpoint.
// Keys are scoped per authenticated user so one busy desk cannot starve
// another; unauthenticated traffic falls back to the client IP.
func RateLimit(name string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			actor := fmt.Sprintf("%v", c.Locals("user_id"))
			if actor == "" || actor == "0" || actor == "<nil>" {
				actor = c.IP()
			}
			return name + ":" + actor
		},
	})
}
