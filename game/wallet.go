package game

import (
	"encoding/json"
	"errors"

	"gundu/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Wallet primitives composed by the ledger and the payout engine. Both run
// inside the caller's transaction so the balance change and the business
// write commit or roll back together. Every balance change appends an
// append-only WalletTransaction row.

func GetBalance(db *gorm.DB, userCode string) (decimal.Decimal, error) {
	var w models.Wallet
	if err := db.Where("user_code = ?", userCode).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrWalletNotFound
		}
		return decimal.Zero, err
	}
	return w.Balance, nil
}

// debitWallet decrements the balance with a guarded conditional update so two
// concurrent debits can never both spend the same funds: the losing writer
// sees zero rows affected and fails with ErrInsufficientBalance.
func debitWallet(tx *gorm.DB, userCode string, amount decimal.Decimal, kind models.TrxKind, meta map[string]any) (*models.WalletTransaction, error) {
	res := tx.Model(&models.Wallet{}).
		Where("user_code = ? AND balance >= ?", userCode, amount).
		Updates(map[string]any{
			"balance": gorm.Expr("balance - ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var w models.Wallet
		if err := tx.Where("user_code = ?", userCode).First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWalletNotFound
			}
			return nil, err
		}
		return nil, ErrInsufficientBalance
	}
	return appendEntry(tx, userCode, amount, kind, meta)
}

func creditWallet(tx *gorm.DB, userCode string, amount decimal.Decimal, kind models.TrxKind, meta map[string]any) (*models.WalletTransaction, error) {
	res := tx.Model(&models.Wallet{}).
		Where("user_code = ?", userCode).
		Updates(map[string]any{
			"balance": gorm.Expr("balance + ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrWalletNotFound
	}
	return appendEntry(tx, userCode, amount, kind, meta)
}

func appendEntry(tx *gorm.DB, userCode string, amount decimal.Decimal, kind models.TrxKind, meta map[string]any) (*models.WalletTransaction, error) {
	var w models.Wallet
	if err := tx.Where("user_code = ?", userCode).First(&w).Error; err != nil {
		return nil, err
	}

	after := w.Balance
	before := after.Sub(models.WalletTransaction{Kind: kind, Amount: amount}.Delta())

	entry := &models.WalletTransaction{
		WalletID:      w.ID,
		UserCode:      userCode,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
	}
	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		entry.Meta = datatypes.JSON(raw)
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
