package game

import (
	"errors"
	"time"

	"gundu/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ActiveRound loads the newest round, which is the only one the engine still
// drives. Older rounds are all completed.
func ActiveRound(db *gorm.DB) (*models.GameRound, error) {
	return activeRound(db)
}

func activeRound(tx *gorm.DB) (*models.GameRound, error) {
	var round models.GameRound
	err := tx.Order("round_number DESC").First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveRound
		}
		return nil, err
	}
	return &round, nil
}

func newRound(number uint64, start time.Time, cfg *Config) *models.GameRound {
	return &models.GameRound{
		RoundID:     uuid.New(),
		RoundNumber: number,
		Phase:       models.PhaseOpen,
		StartTime:   start,
		CloseTime:   start.Add(cfg.CloseAfter),
		ResultTime:  start.Add(cfg.ResultAfter),
		EndTime:     start.Add(cfg.EndAfter),
		TotalAmount: decimal.Zero,
	}
}

// TimeRemaining is the number of seconds until the round's next phase
// boundary, clamped at zero.
func TimeRemaining(round *models.GameRound, now time.Time) float64 {
	var boundary time.Time
	switch round.Phase {
	case models.PhaseOpen:
		boundary = round.CloseTime
	case models.PhaseLocked:
		boundary = round.ResultTime
	default:
		boundary = round.EndTime
	}
	remaining := boundary.Sub(now).Seconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}
