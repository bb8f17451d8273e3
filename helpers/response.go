package helpers

import (
	"errors"

	"gundu/game"

	"github.com/gofiber/fiber/v2"
)

func JSONSuccess(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JSONError(c *fiber.Ctx, message string) error {
	return JSONErrorStatus(c, fiber.StatusBadRequest, message)
}

func JSONErrorStatus(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

// BusinessError maps the game error taxonomy onto the JSON envelope. Unknown
// errors are masked as internal.
func BusinessError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, game.ErrBetNotFound),
		errors.Is(err, game.ErrWalletNotFound),
		errors.Is(err, game.ErrNoActiveRound):
		return JSONErrorStatus(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrDuplicateBet),
		errors.Is(err, game.ErrAlreadySet),
		errors.Is(err, game.ErrSettlementApplied):
		return JSONErrorStatus(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, game.ErrRoundClosed),
		errors.Is(err, game.ErrInvalidNumber),
		errors.Is(err, game.ErrInvalidAmount),
		errors.Is(err, game.ErrInsufficientBalance),
		errors.Is(err, game.ErrConfigInvalid):
		return JSONError(c, err.Error())
	default:
		return JSONErrorStatus(c, fiber.StatusInternalServerError, "internal error")
	}
}
