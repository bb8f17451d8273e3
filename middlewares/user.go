package middlewares

import (
	"gundu/database"
	"gundu/helpers"
	"gundu/models"

	"github.com/gofiber/fiber/v2"
)

// UserAuthMiddleware resolves the caller to a wallet. Identity itself is
// owned by the external auth collaborator; a valid caller always has a
// wallet row provisioned there.
func UserAuthMiddleware(c *fiber.Ctx) error {
	userCode := c.Get("X-User-Code")
	if userCode == "" {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "USER_CODE_REQUIRED")
	}

	var wallet models.Wallet
	if err := database.DB.Where("user_code = ?", userCode).First(&wallet).Error; err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "WALLET_NOT_FOUND")
	}

	c.Locals("wallet", wallet)
	return c.Next()
}
