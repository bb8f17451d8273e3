package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Wallet balance is mutated only through the guarded updates in the game
// package. Version increments on every balance change and serves as the
// optimistic lock token surfaced to callers.
type Wallet struct {
	gorm.Model

	UserCode string          `gorm:"uniqueIndex;size:32" json:"user_code"`
	Balance  decimal.Decimal `gorm:"type:decimal(20,2)" json:"balance"`
	Version  uint64          `json:"version"`
}

type TrxKind string

const (
	TrxStake  TrxKind = "stake"
	TrxRefund TrxKind = "refund"
	TrxPayout TrxKind = "payout"
)

// WalletTransaction is the append-only ledger. Rows are never updated or
// deleted; the sum of signed deltas for a wallet must always reconcile with
// its balance.
type WalletTransaction struct {
	gorm.Model

	WalletID uint    `gorm:"index" json:"-"`
	UserCode string  `gorm:"size:32;index" json:"user_code"`
	Kind     TrxKind `gorm:"size:16;index" json:"kind"`

	Amount        decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(20,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,2)" json:"balance_after"`

	Meta datatypes.JSON `json:"meta,omitempty"`
}

// Delta is the signed effect of this entry on the wallet balance.
func (t WalletTransaction) Delta() decimal.Decimal {
	if t.Kind == TrxStake {
		return t.Amount.Neg()
	}
	return t.Amount
}
