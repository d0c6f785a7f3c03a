// middleware/cron_auth.go
package middleware

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"
)

// CronAuthMiddleware guards the administrative award trigger. The external
// scheduler supplies the shared secret either in the X-Cron-Token header or
// as a token query parameter; anything else is rejected before processing.
func CronAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Cron-Token")
		if token == "" {
			token = c.Query("token")
		}

		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			log.Printf("🚫 [CRON_AUTH] Rejected trigger request for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing cron token",
			})
		}

		return c.Next()
	}
}
