package admin

import (
	"gundu/helpers"

	"github.com/gofiber/fiber/v2"
)

type SetDiceRequest struct {
	Number int `json:"number"`
}

// SetDice records an operator override for the active round. Only valid in
// the locked window; the value is revealed to players at result time, not
// when it is set.
func (h *Handler) SetDice(c *fiber.Ctx) error {
	var req SetDiceRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	operator := c.Locals("operator").(string)
	result, err := h.resolver.SetManual(c.Context(), req.Number, operator)
	if err != nil {
		return helpers.BusinessError(c, err)
	}

	return helpers.JSONSuccess(c, "Dice result set", fiber.Map{
		"result": result.Result,
		"mode":   result.Mode,
		"set_by": result.SetBy,
		"set_at": result.SetAt,
	})
}

// DiceMode reports whether the active round will resolve from a queued
// manual value or an automatic draw.
func (h *Handler) DiceMode(c *fiber.Ctx) error {
	mode, err := h.resolver.PendingMode(c.Context())
	if err != nil {
		return helpers.BusinessError(c, err)
	}
	return helpers.JSONSuccess(c, "Dice mode", fiber.Map{"mode": mode})
}
