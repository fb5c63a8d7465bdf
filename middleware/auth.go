// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenValidator resolves a bearer token to a user ID.
type TokenValidator interface {
	Validate(raw string) (string, error)
}

// UserContextMiddleware requires a valid bearer token and attaches the user ID
// to the request as c.Locals("user_id").
func UserContextMiddleware(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get("Authorization"))
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}

		userID, err := tokens.Validate(raw)
		if err != nil {
			log.Printf("[USER_CTX] rejected token on %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "could not validate credentials",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// bearerToken accepts "Bearer <token>" in any case; anything else yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
