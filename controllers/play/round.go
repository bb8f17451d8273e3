package play

import (
	"time"

	"gundu/game"
	"gundu/helpers"
	"gundu/models"

	"github.com/gofiber/fiber/v2"
)

const (
	roundCacheKey = "round:active"
	roundCacheTTL = 500 * time.Millisecond
)

// CurrentRound returns the active round summary plus the caller's own bets.
// The round row is served from the TTL cache so a busy lobby does not hammer
// the database; time_remaining is always computed fresh.
func (h *Handler) CurrentRound(c *fiber.Ctx) error {
	round, err := h.cachedRound()
	if err != nil {
		return helpers.BusinessError(c, err)
	}

	wallet := c.Locals("wallet").(models.Wallet)
	bets, err := h.ledger.UserBets(wallet.UserCode)
	if err != nil {
		return helpers.BusinessError(c, err)
	}

	cfg := h.cfg.Current()
	ratios := make(map[int]string, 6)
	for n := 1; n <= 6; n++ {
		ratios[n] = cfg.Ratio(n).String()
	}

	return helpers.JSONSuccess(c, "Current round", fiber.Map{
		"round_id":       round.RoundID,
		"round_number":   round.RoundNumber,
		"phase":          round.Phase,
		"start_time":     round.StartTime,
		"close_time":     round.CloseTime,
		"result_time":    round.ResultTime,
		"end_time":       round.EndTime,
		"dice_result":    round.DiceResult,
		"total_bets":     round.TotalBets,
		"total_amount":   round.TotalAmount,
		"time_remaining": game.TimeRemaining(round, time.Now()),
		"my_bets":        bets,
		"balance":        wallet.Balance,
		"chip_values":    cfg.ChipValues,
		"payout_ratios":  ratios,
	})
}

func (h *Handler) cachedRound() (*models.GameRound, error) {
	if v, ok := h.cache.Get(roundCacheKey); ok {
		return v.(*models.GameRound), nil
	}
	round, err := game.ActiveRound(h.db)
	if err != nil {
		return nil, err
	}
	h.cache.Set(roundCacheKey, round, roundCacheTTL)
	return round, nil
}
