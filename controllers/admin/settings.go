package admin

import (
	"gundu/helpers"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetSettings(c *fiber.Ctx) error {
	rows, err := h.cfg.Settings()
	if err != nil {
		return helpers.BusinessError(c, err)
	}
	return helpers.JSONSuccess(c, "Game settings", rows)
}

// UpdateSettings validates the merged settings set before anything is
// written; a rejected update leaves the previous configuration active.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var changes map[string]string
	if err := c.BodyParser(&changes); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if len(changes) == 0 {
		return helpers.JSONError(c, "NO_CHANGES")
	}

	if err := h.cfg.Update(changes); err != nil {
		return helpers.BusinessError(c, err)
	}

	rows, err := h.cfg.Settings()
	if err != nil {
		return helpers.BusinessError(c, err)
	}
	return helpers.JSONSuccess(c, "Settings updated", rows)
}
