package game

import (
	"context"
	"errors"
	"time"

	"gundu/database"
	"gundu/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// opTimeout bounds every ledger transaction, lock waits included. A call that
// cannot finish in time fails and may be retried by the caller.
const opTimeout = 3 * time.Second

// Ledger admits and reverses stakes against the active round. All mutations
// run as single transactions: the wallet debit, the ledger entry, the bet row
// and the round aggregates commit together or not at all.
type Ledger struct {
	db  *gorm.DB
	cfg *ConfigStore
	now func() time.Time
}

func NewLedger(db *gorm.DB, cfg *ConfigStore) *Ledger {
	return &Ledger{db: db, cfg: cfg, now: time.Now}
}

func (l *Ledger) PlaceBet(ctx context.Context, userCode string, number int, amount decimal.Decimal) (*models.Bet, error) {
	if number < 1 || number > 6 {
		return nil, ErrInvalidNumber
	}
	if !l.cfg.Current().IsChip(amount) {
		return nil, ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var bet *models.Bet
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		round, err := activeRound(database.LockForUpdate(tx))
		if err != nil {
			if errors.Is(err, ErrNoActiveRound) {
				return ErrRoundClosed
			}
			return err
		}
		if round.Phase != models.PhaseOpen || !l.now().Before(round.CloseTime) {
			return ErrRoundClosed
		}

		var existing models.Bet
		err = tx.Where("round_id = ? AND user_code = ? AND number = ?", round.ID, userCode, number).
			First(&existing).Error
		if err == nil {
			return ErrDuplicateBet
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if _, err := debitWallet(tx, userCode, amount, models.TrxStake, map[string]any{
			"round_id": round.RoundID,
			"number":   number,
		}); err != nil {
			return err
		}

		bet = &models.Bet{
			RoundUID:     round.RoundID,
			RoundID:      round.ID,
			UserCode:     userCode,
			Number:       number,
			ChipAmount:   amount,
			PayoutAmount: decimal.Zero,
		}
		if err := tx.Create(bet).Error; err != nil {
			return err
		}

		return tx.Model(&models.GameRound{}).Where("id = ?", round.ID).
			Updates(map[string]any{
				"total_bets":   gorm.Expr("total_bets + 1"),
				"total_amount": gorm.Expr("total_amount + ?", amount),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

// RemoveBet reverses a stake while the round is still open: the bet row is
// deleted and the chips flow back as a refund entry.
func (l *Ledger) RemoveBet(ctx context.Context, userCode string, number int) (*models.Bet, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var removed *models.Bet
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		round, err := activeRound(database.LockForUpdate(tx))
		if err != nil {
			if errors.Is(err, ErrNoActiveRound) {
				return ErrRoundClosed
			}
			return err
		}
		if round.Phase != models.PhaseOpen || !l.now().Before(round.CloseTime) {
			return ErrRoundClosed
		}

		var bet models.Bet
		err = tx.Where("round_id = ? AND user_code = ? AND number = ?", round.ID, userCode, number).
			First(&bet).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBetNotFound
			}
			return err
		}

		if _, err := creditWallet(tx, userCode, bet.ChipAmount, models.TrxRefund, map[string]any{
			"round_id": round.RoundID,
			"number":   number,
		}); err != nil {
			return err
		}

		// Hard delete so the same (round, user, number) slot can be re-bet.
		if err := tx.Unscoped().Delete(&bet).Error; err != nil {
			return err
		}

		removed = &bet
		return tx.Model(&models.GameRound{}).Where("id = ?", round.ID).
			Updates(map[string]any{
				"total_bets":   gorm.Expr("total_bets - 1"),
				"total_amount": gorm.Expr("total_amount - ?", bet.ChipAmount),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Freeze moves the round out of the open phase so any bet call racing the
// transition fails with ErrRoundClosed. Idempotent: a round that is already
// past open is left alone.
func (l *Ledger) Freeze(ctx context.Context, roundID uint) (bool, error) {
	res := l.db.WithContext(ctx).Model(&models.GameRound{}).
		Where("id = ? AND phase = ?", roundID, models.PhaseOpen).
		Update("phase", models.PhaseLocked)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RoundBets lists all bets of one round.
func (l *Ledger) RoundBets(roundUID uuid.UUID) ([]models.Bet, error) {
	var bets []models.Bet
	err := l.db.Where("round_uid = ?", roundUID).Order("created_at").Find(&bets).Error
	return bets, err
}

// UserBets lists a user's bets on the active round.
func (l *Ledger) UserBets(userCode string) ([]models.Bet, error) {
	round, err := activeRound(l.db)
	if err != nil {
		if errors.Is(err, ErrNoActiveRound) {
			return nil, nil
		}
		return nil, err
	}
	var bets []models.Bet
	err = l.db.Where("round_id = ? AND user_code = ?", round.ID, userCode).
		Order("number").Find(&bets).Error
	return bets, err
}

// History pages through a user's past bets, newest first.
func (l *Ledger) History(userCode string, page, limit int) ([]models.Bet, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var total int64
	q := l.db.Model(&models.Bet{}).Where("user_code = ?", userCode)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bets []models.Bet
	err := q.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&bets).Error
	return bets, total, err
}
