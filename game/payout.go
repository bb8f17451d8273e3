package game

import (
	"context"
	"fmt"
	"time"

	"gundu/log"
	"gundu/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Payout settles a resolved round: every bet gets its is_winner flag and
// payout amount, winners get credited. Each bet settles in its own
// transaction guarded on `is_winner IS NULL`, so a crash mid-settlement
// resumes on the next call without double-crediting anyone.
type Payout struct {
	db  *gorm.DB
	cfg *ConfigStore
	now func() time.Time
}

func NewPayout(db *gorm.DB, cfg *ConfigStore) *Payout {
	return &Payout{db: db, cfg: cfg, now: time.Now}
}

func (p *Payout) Settle(ctx context.Context, roundID uint) error {
	var round models.GameRound
	if err := p.db.WithContext(ctx).First(&round, roundID).Error; err != nil {
		return err
	}
	if round.SettledAt != nil {
		return ErrSettlementApplied
	}
	if round.DiceResult == nil {
		return fmt.Errorf("round %d has no dice result", round.RoundNumber)
	}
	result := *round.DiceResult
	cfg := p.cfg.Current()

	var bets []models.Bet
	if err := p.db.WithContext(ctx).Where("round_id = ?", roundID).Find(&bets).Error; err != nil {
		return err
	}

	for i := range bets {
		if err := p.settleBet(ctx, &round, &bets[i], result, cfg); err != nil {
			return err
		}
	}

	// Marker write is last: an incomplete settlement stays resumable.
	err := p.db.WithContext(ctx).Model(&models.GameRound{}).
		Where("id = ? AND settled_at IS NULL", roundID).
		Update("settled_at", p.now()).Error
	if err != nil {
		return err
	}

	log.L.Info("round settled",
		log.Round(round.RoundNumber),
		zap.Int("dice_result", result),
		zap.Int("bets", len(bets)))
	return nil
}

func (p *Payout) settleBet(ctx context.Context, round *models.GameRound, bet *models.Bet, result int, cfg *Config) error {
	won := bet.Number == result
	payout := decimal.Zero
	if won {
		payout = bet.ChipAmount.Mul(cfg.Ratio(bet.Number))
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Bet{}).
			Where("id = ? AND is_winner IS NULL", bet.ID).
			Updates(map[string]any{
				"is_winner":     won,
				"payout_amount": payout,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already settled by an earlier, interrupted run.
			return nil
		}

		if !won {
			return nil
		}
		_, err := creditWallet(tx, bet.UserCode, payout, models.TrxPayout, map[string]any{
			"round_id": round.RoundID,
			"bet_id":   bet.ID,
			"number":   bet.Number,
		})
		return err
	})
}
