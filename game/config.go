package game

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gundu/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Setting keys stored in the game_settings table.
const (
	KeyBettingCloseTime = "BETTING_CLOSE_TIME"
	KeyDiceResultTime   = "DICE_RESULT_TIME"
	KeyRoundEndTime     = "ROUND_END_TIME"
	KeyChipValues       = "CHIP_VALUES"
	keyPayoutRatio      = "PAYOUT_RATIO_" // + face number
)

// Config is an immutable snapshot of the game settings. Components hold the
// snapshot they started with; a settings update swaps in a new one and never
// mutates an existing snapshot.
type Config struct {
	CloseAfter  time.Duration
	ResultAfter time.Duration
	EndAfter    time.Duration

	ChipValues   []decimal.Decimal
	PayoutRatios [7]decimal.Decimal // indexed by face 1..6
}

func (c *Config) IsChip(amount decimal.Decimal) bool {
	for _, v := range c.ChipValues {
		if v.Equal(amount) {
			return true
		}
	}
	return false
}

func (c *Config) Ratio(number int) decimal.Decimal {
	return c.PayoutRatios[number]
}

type ConfigStore struct {
	db *gorm.DB

	// mu serializes writers so the snapshot stored last always matches the
	// rows committed last. Readers go through cur without locking.
	mu  sync.Mutex
	cur atomic.Pointer[Config]
}

func NewConfigStore(db *gorm.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// Current returns the active snapshot. Load or Seed must have succeeded first.
func (s *ConfigStore) Current() *Config {
	return s.cur.Load()
}

// Seed creates any missing settings rows with their defaults, then loads the
// snapshot. Existing rows are left untouched so admin edits survive restarts.
func (s *ConfigStore) Seed() error {
	defaults := []models.GameSetting{
		{Key: KeyBettingCloseTime, Value: "30", Description: "Time in seconds when betting closes (default: 30)"},
		{Key: KeyDiceResultTime, Value: "51", Description: "Time in seconds when dice result is announced (default: 51)"},
		{Key: KeyRoundEndTime, Value: "80", Description: "Total round duration in seconds (default: 80)"},
		{Key: KeyChipValues, Value: "10,20,50,100", Description: "Comma separated chip denominations"},
	}
	for n := 1; n <= 6; n++ {
		defaults = append(defaults, models.GameSetting{
			Key:         fmt.Sprintf("%s%d", keyPayoutRatio, n),
			Value:       "6.0",
			Description: fmt.Sprintf("Payout multiplier for face %d", n),
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, d := range defaults {
			if err := tx.Where(models.GameSetting{Key: d.Key}).FirstOrCreate(&d).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.Load()
}

// Load reads all settings rows, validates them as a whole and swaps the
// snapshot. An invalid set leaves the previous snapshot active.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.settingsMap()
	if err != nil {
		return err
	}
	cfg, err := parseSettings(values)
	if err != nil {
		return err
	}
	s.cur.Store(cfg)
	return nil
}

// Settings returns the raw rows for the admin surface.
func (s *ConfigStore) Settings() ([]models.GameSetting, error) {
	var rows []models.GameSetting
	if err := s.db.Order("key").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update validates the merged settings before anything is written. On any
// validation failure nothing is persisted and the active snapshot stays as
// it was. Updates are serialized: the snapshot swapped in is always the one
// whose rows were committed last.
func (s *ConfigStore) Update(changes map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.settingsMap()
	if err != nil {
		return err
	}
	for k, v := range changes {
		if _, ok := values[k]; !ok {
			return fmt.Errorf("%w: unknown setting %q", ErrConfigInvalid, k)
		}
		values[k] = v
	}
	cfg, err := parseSettings(values)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for k, v := range changes {
			res := tx.Model(&models.GameSetting{}).Where("key = ?", k).Update("value", v)
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cur.Store(cfg)
	return nil
}

func (s *ConfigStore) settingsMap() (map[string]string, error) {
	var rows []models.GameSetting
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	return values, nil
}

func parseSettings(values map[string]string) (*Config, error) {
	cfg := &Config{}

	closeSec, err := parsePositiveInt(values, KeyBettingCloseTime)
	if err != nil {
		return nil, err
	}
	resultSec, err := parsePositiveInt(values, KeyDiceResultTime)
	if err != nil {
		return nil, err
	}
	endSec, err := parsePositiveInt(values, KeyRoundEndTime)
	if err != nil {
		return nil, err
	}
	if closeSec >= resultSec {
		return nil, fmt.Errorf("%w: %s must be less than %s", ErrConfigInvalid, KeyBettingCloseTime, KeyDiceResultTime)
	}
	if resultSec >= endSec {
		return nil, fmt.Errorf("%w: %s must be less than %s", ErrConfigInvalid, KeyDiceResultTime, KeyRoundEndTime)
	}
	cfg.CloseAfter = time.Duration(closeSec) * time.Second
	cfg.ResultAfter = time.Duration(resultSec) * time.Second
	cfg.EndAfter = time.Duration(endSec) * time.Second

	raw, ok := values[KeyChipValues]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: %s is required", ErrConfigInvalid, KeyChipValues)
	}
	for _, part := range strings.Split(raw, ",") {
		chip, err := decimal.NewFromString(strings.TrimSpace(part))
		if err != nil || !chip.IsPositive() {
			return nil, fmt.Errorf("%w: bad chip value %q", ErrConfigInvalid, part)
		}
		cfg.ChipValues = append(cfg.ChipValues, chip)
	}

	for n := 1; n <= 6; n++ {
		key := fmt.Sprintf("%s%d", keyPayoutRatio, n)
		raw, ok := values[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s is required", ErrConfigInvalid, key)
		}
		ratio, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || !ratio.IsPositive() {
			return nil, fmt.Errorf("%w: bad payout ratio %q for face %d", ErrConfigInvalid, raw, n)
		}
		cfg.PayoutRatios[n] = ratio
	}

	return cfg, nil
}

func parsePositiveInt(values map[string]string, key string) (int, error) {
	raw, ok := values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", ErrConfigInvalid, key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number", ErrConfigInvalid, key)
	}
	return n, nil
}
