package game

import (
	"testing"
	"time"

	"gundu/database"
	"gundu/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	cfg      *ConfigStore
	hub      *Hub
	ledger   *Ledger
	resolver *Resolver
	payout   *Payout
	sched    *Scheduler

	now func() time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	e := &testEnv{now: time.Now}

	// NowFunc routes through the settable clock so row timestamps follow the
	// pinned timeline, same as the components.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return e.now() },
	})
	require.NoError(t, err)

	// a single connection keeps every session on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := NewConfigStore(db)
	require.NoError(t, cfg.Seed())

	e.db = db
	e.cfg = cfg
	e.hub = NewHub()
	e.ledger = NewLedger(db, cfg)
	e.resolver = NewResolver(db)
	e.payout = NewPayout(db, cfg)
	e.sched = NewScheduler(db, cfg, e.ledger, e.resolver, e.payout, e.hub, 100*time.Millisecond)

	return e
}

// setNow pins the wall clock for every component and for row timestamps.
func (e *testEnv) setNow(tm time.Time) {
	now := func() time.Time { return tm }
	e.now = now
	e.ledger.now = now
	e.resolver.now = now
	e.payout.now = now
	e.sched.now = now
}

func (e *testEnv) startRound(t *testing.T, number uint64, start time.Time) *models.GameRound {
	t.Helper()
	round := newRound(number, start, e.cfg.Current())
	require.NoError(t, e.db.Create(round).Error)
	return round
}

func (e *testEnv) createWallet(t *testing.T, code string, balance int64) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.Wallet{
		UserCode: code,
		Balance:  decimal.NewFromInt(balance),
	}).Error)
}

func (e *testEnv) balance(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	b, err := GetBalance(e.db, code)
	require.NoError(t, err)
	return b
}

func (e *testEnv) reloadRound(t *testing.T, id uint) *models.GameRound {
	t.Helper()
	var round models.GameRound
	require.NoError(t, e.db.First(&round, id).Error)
	return &round
}
