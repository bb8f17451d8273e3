package game

import (
	"context"
	"testing"
	"time"

	"gundu/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settleReadyRound(t *testing.T, e *testEnv, result int) *models.GameRound {
	t.Helper()
	e.setNow(t0.Add(5 * time.Second))
	round := e.startRound(t, 1, t0)

	ctx := context.Background()
	e.createWallet(t, "winner", 100)
	e.createWallet(t, "loser", 100)

	_, err := e.ledger.PlaceBet(ctx, "winner", result, decimal.NewFromInt(50))
	require.NoError(t, err)
	other := result%6 + 1
	_, err = e.ledger.PlaceBet(ctx, "loser", other, decimal.NewFromInt(20))
	require.NoError(t, err)

	_, err = e.ledger.Freeze(ctx, round.ID)
	require.NoError(t, err)
	_, err = e.resolver.SetManual(ctx, result, "op")
	require.NoError(t, err)
	_, err = e.resolver.Finalize(ctx, round.ID)
	require.NoError(t, err)
	return e.reloadRound(t, round.ID)
}

func TestSettleCreditsWinnersAndMarksAllBets(t *testing.T) {
	e := newTestEnv(t)
	round := settleReadyRound(t, e, 4)

	require.NoError(t, e.payout.Settle(context.Background(), round.ID))

	// 50 staked at ratio 6.0 pays 300; net wallet change +250
	assert.True(t, e.balance(t, "winner").Equal(decimal.NewFromInt(350)))
	assert.True(t, e.balance(t, "loser").Equal(decimal.NewFromInt(80)))

	var bets []models.Bet
	require.NoError(t, e.db.Order("user_code").Find(&bets).Error)
	require.Len(t, bets, 2)
	for _, b := range bets {
		require.NotNil(t, b.IsWinner, "every bet must carry a settlement verdict")
		if b.UserCode == "winner" {
			assert.True(t, *b.IsWinner)
			assert.True(t, b.PayoutAmount.Equal(decimal.NewFromInt(300)))
		} else {
			assert.False(t, *b.IsWinner)
			assert.True(t, b.PayoutAmount.IsZero())
		}
	}

	assert.NotNil(t, e.reloadRound(t, round.ID).SettledAt)

	var payouts int64
	require.NoError(t, e.db.Model(&models.WalletTransaction{}).
		Where("kind = ?", models.TrxPayout).Count(&payouts).Error)
	assert.Equal(t, int64(1), payouts)
}

func TestSettleIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	round := settleReadyRound(t, e, 2)

	ctx := context.Background()
	require.NoError(t, e.payout.Settle(ctx, round.ID))
	winnerBalance := e.balance(t, "winner")

	err := e.payout.Settle(ctx, round.ID)
	assert.ErrorIs(t, err, ErrSettlementApplied)
	assert.True(t, e.balance(t, "winner").Equal(winnerBalance))

	var payouts int64
	require.NoError(t, e.db.Model(&models.WalletTransaction{}).
		Where("kind = ?", models.TrxPayout).Count(&payouts).Error)
	assert.Equal(t, int64(1), payouts)
}

func TestSettleResumesAfterPartialRun(t *testing.T) {
	e := newTestEnv(t)
	round := settleReadyRound(t, e, 5)

	ctx := context.Background()

	// simulate a crash that settled the winning bet but never wrote the
	// round marker
	var winning models.Bet
	require.NoError(t, e.db.Where("user_code = ?", "winner").First(&winning).Error)
	require.NoError(t, e.payout.settleBet(ctx, round, &winning, 5, e.cfg.Current()))
	assert.True(t, e.balance(t, "winner").Equal(decimal.NewFromInt(350)))

	// the full run completes the remaining bets without re-crediting
	require.NoError(t, e.payout.Settle(ctx, round.ID))
	assert.True(t, e.balance(t, "winner").Equal(decimal.NewFromInt(350)))
	assert.NotNil(t, e.reloadRound(t, round.ID).SettledAt)

	var loser models.Bet
	require.NoError(t, e.db.Where("user_code = ?", "loser").First(&loser).Error)
	require.NotNil(t, loser.IsWinner)
	assert.False(t, *loser.IsWinner)
}

func TestSettleRequiresDiceResult(t *testing.T) {
	e := newTestEnv(t)
	e.setNow(t0.Add(5 * time.Second))
	round := e.startRound(t, 1, t0)

	err := e.payout.Settle(context.Background(), round.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSettlementApplied)
}
