package game

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gundu/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaults(t *testing.T) {
	e := newTestEnv(t)

	cfg := e.cfg.Current()
	assert.Equal(t, 30*time.Second, cfg.CloseAfter)
	assert.Equal(t, 51*time.Second, cfg.ResultAfter)
	assert.Equal(t, 80*time.Second, cfg.EndAfter)
	assert.Len(t, cfg.ChipValues, 4)
	for n := 1; n <= 6; n++ {
		assert.True(t, cfg.Ratio(n).Equal(decimal.NewFromInt(6)))
	}

	assert.True(t, cfg.IsChip(decimal.NewFromInt(50)))
	assert.False(t, cfg.IsChip(decimal.NewFromInt(55)))

	// seeding again must not clobber admin edits
	require.NoError(t, e.db.Model(&models.GameSetting{}).
		Where("key = ?", KeyBettingCloseTime).Update("value", "25").Error)
	require.NoError(t, e.cfg.Seed())
	assert.Equal(t, 25*time.Second, e.cfg.Current().CloseAfter)
}

func TestUpdateEnforcesTimingOrder(t *testing.T) {
	e := newTestEnv(t)
	before := e.cfg.Current()

	cases := []map[string]string{
		{KeyBettingCloseTime: "51"},                          // close == result
		{KeyBettingCloseTime: "60"},                          // close > result
		{KeyDiceResultTime: "80"},                            // result == end
		{KeyRoundEndTime: "40"},                              // end < result
		{KeyBettingCloseTime: "0"},                           // not positive
		{KeyBettingCloseTime: "abc"},                         // not a number
		{KeyChipValues: ""},                                  // empty chip set
		{KeyChipValues: "10,-5"},                             // negative chip
		{"PAYOUT_RATIO_3": "0"},                              // ratio not positive
		{"SOME_UNKNOWN_KEY": "1"},                            // unknown key
		{KeyBettingCloseTime: "60", KeyDiceResultTime: "55"}, // merged set still invalid
	}
	for _, changes := range cases {
		err := e.cfg.Update(changes)
		assert.ErrorIs(t, err, ErrConfigInvalid, "changes %v", changes)
		// the previously validated configuration stays active
		assert.Same(t, before, e.cfg.Current())
	}
}

func TestUpdateSwapsSnapshotAtomically(t *testing.T) {
	e := newTestEnv(t)
	before := e.cfg.Current()

	require.NoError(t, e.cfg.Update(map[string]string{
		KeyBettingCloseTime: "20",
		KeyDiceResultTime:   "35",
		KeyRoundEndTime:     "50",
		KeyChipValues:       "5,25",
	}))

	after := e.cfg.Current()
	assert.NotSame(t, before, after)
	assert.Equal(t, 20*time.Second, after.CloseAfter)
	assert.Equal(t, 35*time.Second, after.ResultAfter)
	assert.Equal(t, 50*time.Second, after.EndAfter)
	assert.True(t, after.IsChip(decimal.NewFromInt(25)))
	assert.False(t, after.IsChip(decimal.NewFromInt(10)))

	// the earlier snapshot is untouched for anyone still holding it
	assert.Equal(t, 30*time.Second, before.CloseAfter)

	// changes were persisted
	rows, err := e.cfg.Settings()
	require.NoError(t, err)
	values := map[string]string{}
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	assert.Equal(t, "20", values[KeyBettingCloseTime])
	assert.Equal(t, "5,25", values[KeyChipValues])
}

// Racing admin updates must leave the snapshot and the persisted rows in
// agreement, whichever update lands last.
func TestConcurrentUpdatesKeepSnapshotAndRowsInStep(t *testing.T) {
	e := newTestEnv(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			chips := fmt.Sprintf("10,%d", 100+n)
			assert.NoError(t, e.cfg.Update(map[string]string{KeyChipValues: chips}))
		}(i)
	}
	wg.Wait()

	rows, err := e.cfg.Settings()
	require.NoError(t, err)
	var persisted string
	for _, r := range rows {
		if r.Key == KeyChipValues {
			persisted = r.Value
		}
	}

	cur := e.cfg.Current()
	parts := strings.Split(persisted, ",")
	require.Len(t, cur.ChipValues, len(parts))
	for i, part := range parts {
		want, err := decimal.NewFromString(part)
		require.NoError(t, err)
		assert.True(t, cur.ChipValues[i].Equal(want),
			"snapshot chip %s does not match persisted %s", cur.ChipValues[i], want)
	}
}
