package game

import "errors"

// Business errors returned synchronously to callers. None of them leaves
// partial state behind: the operation is rejected before any mutation, or
// the surrounding transaction rolls back.
var (
	ErrRoundClosed         = errors.New("betting is closed for this round")
	ErrInvalidNumber       = errors.New("number must be between 1 and 6")
	ErrInvalidAmount       = errors.New("chip amount is not a permitted denomination")
	ErrDuplicateBet        = errors.New("a bet on this number already exists for this round")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrAlreadySet          = errors.New("dice result already set for this round")
	ErrSettlementApplied   = errors.New("settlement already applied to this round")
	ErrConfigInvalid       = errors.New("invalid game settings")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrBetNotFound         = errors.New("bet not found")
	ErrNoActiveRound       = errors.New("no active round")
)
