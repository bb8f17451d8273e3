package game

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"gundu/database"
	"gundu/log"
	"gundu/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resolver produces exactly one dice result per round: an operator override
// while the round is locked, or a uniform draw at the result deadline.
type Resolver struct {
	db  *gorm.DB
	now func() time.Time
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db, now: time.Now}
}

// SetManual records an operator override for the active round. Only allowed
// in the locked window, and only once.
func (r *Resolver) SetManual(ctx context.Context, value int, operator string) (*models.DiceResult, error) {
	if value < 1 || value > 6 {
		return nil, ErrInvalidNumber
	}

	var result *models.DiceResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		round, err := activeRound(database.LockForUpdate(tx))
		if err != nil {
			return err
		}
		if round.Phase != models.PhaseLocked {
			return ErrRoundClosed
		}

		var existing models.DiceResult
		err = tx.Where("round_id = ?", round.ID).First(&existing).Error
		if err == nil {
			return ErrAlreadySet
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		result = &models.DiceResult{
			RoundID: round.ID,
			Result:  value,
			Mode:    models.DiceModeManual,
			SetBy:   operator,
			SetAt:   r.now(),
		}
		return tx.Create(result).Error
	})
	if err != nil {
		return nil, err
	}

	log.L.Info("manual dice result set",
		zap.Int("result", value), zap.String("operator", operator))
	return result, nil
}

// Finalize settles on the round's dice result. A manual override wins
// unchanged; otherwise a value is drawn uniformly from 1..6. An existing
// result is never overwritten, so repeated calls return the same value.
func (r *Resolver) Finalize(ctx context.Context, roundID uint) (*models.DiceResult, error) {
	var result models.DiceResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := database.LockForUpdate(tx).Where("round_id = ?", roundID).First(&result).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		result = models.DiceResult{
			RoundID: roundID,
			Result:  rollDie(),
			Mode:    models.DiceModeAuto,
			SetAt:   r.now(),
		}
		if err := tx.Create(&result).Error; err != nil {
			// A concurrent finalize won the unique index; use its result.
			var existing models.DiceResult
			if ferr := tx.Where("round_id = ?", roundID).First(&existing).Error; ferr == nil {
				result = existing
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Write-once copy onto the round row.
	err = r.db.WithContext(ctx).Model(&models.GameRound{}).
		Where("id = ? AND dice_result IS NULL", roundID).
		Update("dice_result", result.Result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PendingMode reports whether the active round already has a manual result
// queued ahead of the draw.
func (r *Resolver) PendingMode(ctx context.Context) (models.DiceMode, error) {
	round, err := activeRound(r.db.WithContext(ctx))
	if err != nil {
		return "", err
	}
	var existing models.DiceResult
	err = r.db.WithContext(ctx).Where("round_id = ?", round.ID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DiceModeAuto, nil
		}
		return "", err
	}
	return existing.Mode, nil
}

// rollDie draws uniformly from 1..6 using crypto/rand.
func rollDie() int {
	n, err := rand.Int(rand.Reader, big.NewInt(6))
	if err != nil {
		// crypto/rand only fails if the platform entropy source is broken.
		panic(err)
	}
	return int(n.Int64()) + 1
}
