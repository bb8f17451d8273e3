package middlewares

import (
	"os"

	"gundu/helpers"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth guards the operator surface with a shared secret header. The
// operator name travels in X-Admin-User and is recorded on manual results.
func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := os.Getenv("ADMIN_SECRET")
		if secret == "" || c.Get("X-Admin-Secret") != secret {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_ADMIN_CREDENTIALS")
		}

		operator := c.Get("X-Admin-User")
		if operator == "" {
			operator = "admin"
		}
		c.Locals("operator", operator)
		return c.Next()
	}
}
