package admin

import (
	"errors"

	"gundu/helpers"
	"gundu/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (h *Handler) Rounds(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := h.db.Model(&models.GameRound{}).Count(&total).Error; err != nil {
		return helpers.BusinessError(c, err)
	}

	var rounds []models.GameRound
	err := h.db.Order("round_number DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&rounds).Error
	if err != nil {
		return helpers.BusinessError(c, err)
	}

	return helpers.JSONSuccess(c, "Rounds", fiber.Map{
		"rounds": rounds,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func (h *Handler) RoundBets(c *fiber.Ctx) error {
	roundUID, err := uuid.Parse(c.Params("round_id"))
	if err != nil {
		return helpers.JSONError(c, "INVALID_ROUND_ID")
	}

	var round models.GameRound
	if err := h.db.Where("round_id = ?", roundUID).First(&round).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "ROUND_NOT_FOUND")
		}
		return helpers.BusinessError(c, err)
	}

	bets, err := h.ledger.RoundBets(roundUID)
	if err != nil {
		return helpers.BusinessError(c, err)
	}

	// dice detail carries the mode and operator, which the round row omits
	var dice *models.DiceResult
	var detail models.DiceResult
	if err := h.db.Where("round_id = ?", round.ID).First(&detail).Error; err == nil {
		dice = &detail
	}

	return helpers.JSONSuccess(c, "Round bets", fiber.Map{
		"round": round,
		"dice":  dice,
		"bets":  bets,
	})
}
