package play

import (
	"gundu/helpers"
	"gundu/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PlaceBetRequest struct {
	Number     int             `json:"number"`
	ChipAmount decimal.Decimal `json:"chip_amount"`
}

func (h *Handler) PlaceBet(c *fiber.Ctx) error {
	var req PlaceBetRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	wallet := c.Locals("wallet").(models.Wallet)
	bet, err := h.ledger.PlaceBet(c.Context(), wallet.UserCode, req.Number, req.ChipAmount)
	if err != nil {
		return helpers.BusinessError(c, err)
	}

	return helpers.JSONSuccess(c, "Bet placed", bet)
}

func (h *Handler) RemoveBet(c *fiber.Ctx) error {
	number, err := c.ParamsInt("number")
	if err != nil {
		return helpers.JSONError(c, "INVALID_NUMBER")
	}

	wallet := c.Locals("wallet").(models.Wallet)
	bet, err := h.ledger.RemoveBet(c.Context(), wallet.UserCode, number)
	if err != nil {
		return helpers.BusinessError(c, err)
	}

	return helpers.JSONSuccess(c, "Bet removed", fiber.Map{
		"number":   bet.Number,
		"refunded": bet.ChipAmount,
	})
}

func (h *Handler) MyBets(c *fiber.Ctx) error {
	wallet := c.Locals("wallet").(models.Wallet)
	bets, err := h.ledger.UserBets(wallet.UserCode)
	if err != nil {
		return helpers.BusinessError(c, err)
	}
	return helpers.JSONSuccess(c, "Current bets", bets)
}

func (h *Handler) History(c *fiber.Ctx) error {
	wallet := c.Locals("wallet").(models.Wallet)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	bets, total, err := h.ledger.History(wallet.UserCode, page, limit)
	if err != nil {
		return helpers.BusinessError(c, err)
	}
	return helpers.JSONSuccess(c, "Betting history", fiber.Map{
		"bets":  bets,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
