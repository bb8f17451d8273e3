package play

import (
	"gundu/helpers"
	"gundu/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Stats returns lifetime totals across all completed rounds.
func (h *Handler) Stats(c *fiber.Ctx) error {
	var rounds int64
	if err := h.db.Model(&models.GameRound{}).
		Where("phase = ?", models.PhaseCompleted).Count(&rounds).Error; err != nil {
		return helpers.BusinessError(c, err)
	}

	var bets int64
	if err := h.db.Model(&models.Bet{}).Count(&bets).Error; err != nil {
		return helpers.BusinessError(c, err)
	}

	var staked decimal.Decimal
	if err := h.db.Model(&models.Bet{}).
		Select("COALESCE(SUM(chip_amount), 0)").Scan(&staked).Error; err != nil {
		return helpers.BusinessError(c, err)
	}

	var paid decimal.Decimal
	if err := h.db.Model(&models.Bet{}).Where("is_winner = ?", true).
		Select("COALESCE(SUM(payout_amount), 0)").Scan(&paid).Error; err != nil {
		return helpers.BusinessError(c, err)
	}

	return helpers.JSONSuccess(c, "Game stats", fiber.Map{
		"completed_rounds": rounds,
		"total_bets":       bets,
		"total_staked":     staked,
		"total_paid_out":   paid,
	})
}
