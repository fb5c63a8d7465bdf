// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminTokenMiddleware guards catalog maintenance routes with a static service token,
// sent as X-Service-Token or as a bearer token. An empty expected token disables the routes.
func AdminTokenMiddleware(expectedToken string) fiber.Handler {
	if expectedToken == "" {
		log.Println("[ADMIN_AUTH] ADMIN_TOKEN not set, admin routes are disabled")
	}

	return func(c *fiber.Ctx) error {
		if expectedToken == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "admin routes are disabled",
			})
		}

		token := c.Get("X-Service-Token")
		if token == "" {
			token = bearerToken(c.Get("Authorization"))
		}
		if token == "" {
			log.Printf("[ADMIN_AUTH] missing service token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service token missing",
			})
		}

		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(expectedToken)) != 1 {
			log.Printf("[ADMIN_AUTH] invalid service token for %s", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "invalid service token",
			})
		}
		return c.Next()
	}
}
