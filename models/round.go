package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RoundPhase string

const (
	PhaseOpen      RoundPhase = "open"
	PhaseLocked    RoundPhase = "locked"
	PhaseResolved  RoundPhase = "resolved"
	PhaseCompleted RoundPhase = "completed"
)

// GameRound is one betting/resolution cycle. Phase only moves forward:
// open -> locked -> resolved -> completed. The deadline columns are absolute
// timestamps snapshotted from the settings active when the round was created,
// so a settings change never shifts a round already in flight.
type GameRound struct {
	gorm.Model

	RoundID     uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"round_id"`
	RoundNumber uint64     `gorm:"uniqueIndex" json:"round_number"`
	Phase       RoundPhase `gorm:"size:16;index" json:"phase"`

	StartTime  time.Time `json:"start_time"`
	CloseTime  time.Time `json:"close_time"`
	ResultTime time.Time `json:"result_time"`
	EndTime    time.Time `json:"end_time"`

	// DiceResult is write-once, set when the round is resolved.
	DiceResult *int       `json:"dice_result"`
	SettledAt  *time.Time `json:"settled_at,omitempty"`

	TotalBets   int64           `json:"total_bets"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_amount"`
}

type Bet struct {
	gorm.Model

	RoundUID uuid.UUID `gorm:"type:uuid;index" json:"round_id"`
	RoundID  uint      `gorm:"index;uniqueIndex:idx_bet_round_user_number" json:"-"`
	UserCode string    `gorm:"size:32;index;uniqueIndex:idx_bet_round_user_number" json:"user_code"`
	Number   int       `gorm:"uniqueIndex:idx_bet_round_user_number" json:"number"`

	ChipAmount   decimal.Decimal `gorm:"type:decimal(20,2)" json:"chip_amount"`
	PayoutAmount decimal.Decimal `gorm:"type:decimal(20,2)" json:"payout_amount"`

	// IsWinner stays nil until the round is settled.
	IsWinner *bool `json:"is_winner"`
}

type DiceMode string

const (
	DiceModeManual DiceMode = "manual"
	DiceModeAuto   DiceMode = "auto"
)

// DiceResult exists at most once per round and is immutable once created.
type DiceResult struct {
	gorm.Model

	RoundID uint      `gorm:"uniqueIndex" json:"-"`
	Result  int       `json:"result"`
	Mode    DiceMode  `gorm:"size:8" json:"mode"`
	SetBy   string    `gorm:"size:64" json:"set_by"`
	SetAt   time.Time `json:"set_at"`
}
