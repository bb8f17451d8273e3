package game

import (
	"context"
	"errors"
	"time"

	"gundu/log"
	"gundu/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// tickTimeout bounds the downstream work of a single tick; anything that
	// does not finish is retried on a later tick.
	tickTimeout = 5 * time.Second

	// rolloverAlertThreshold is the number of consecutive failed next-round
	// creations before the stall is escalated. A stalled rollover halts all
	// play and must not fail silently.
	rolloverAlertThreshold = 10

	maxRolloverBackoff = 10 * time.Second
)

// Scheduler drives round phase transitions against wall-clock time. Every
// transition is a compare-and-set on (round id, expected phase), so any
// number of scheduler instances can tick against the same database and only
// the CAS winner performs the side effects.
type Scheduler struct {
	db       *gorm.DB
	cfg      *ConfigStore
	ledger   *Ledger
	resolver *Resolver
	payout   *Payout
	hub      *Hub

	interval time.Duration
	now      func() time.Time

	rolloverFails int
	retryAt       time.Time

	stop chan struct{}
	done chan struct{}
}

func NewScheduler(db *gorm.DB, cfg *ConfigStore, ledger *Ledger, resolver *Resolver, payout *Payout, hub *Hub, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Scheduler{
		db:       db,
		cfg:      cfg,
		ledger:   ledger,
		resolver: resolver,
		payout:   payout,
		hub:      hub,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
				if err := s.Tick(ctx); err != nil {
					log.L.Error("scheduler tick failed", zap.Error(err))
				}
				cancel()
			}
		}
	}()
	log.L.Info("round scheduler started", zap.Duration("interval", s.interval))
}

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// EnsureRound bootstraps round #1 when the table is empty.
func (s *Scheduler) EnsureRound(ctx context.Context) error {
	_, err := activeRound(s.db.WithContext(ctx))
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNoActiveRound) {
		return err
	}
	return s.createRound(ctx, 1, s.now())
}

// Tick inspects the active round once and performs at most the transitions
// whose deadlines have been crossed. Safe to call concurrently from multiple
// instances.
func (s *Scheduler) Tick(ctx context.Context) error {
	round, err := activeRound(s.db.WithContext(ctx))
	if err != nil {
		if errors.Is(err, ErrNoActiveRound) {
			return s.createRound(ctx, 1, s.now())
		}
		return err
	}

	now := s.now()
	switch round.Phase {
	case models.PhaseOpen:
		if now.Before(round.CloseTime) {
			return nil
		}
		won, err := s.ledger.Freeze(ctx, round.ID)
		if err != nil {
			return err
		}
		if won {
			round.Phase = models.PhaseLocked
			s.publish(EventPhaseChanged, round, now)
			log.L.Info("round locked", log.Round(round.RoundNumber))
		}

	case models.PhaseLocked:
		if now.Before(round.ResultTime) {
			return nil
		}
		won, err := s.casPhase(ctx, round.ID, models.PhaseLocked, models.PhaseResolved)
		if err != nil {
			return err
		}
		if won {
			round.Phase = models.PhaseResolved
			s.resolveAndSettle(ctx, round, now)
		}

	case models.PhaseResolved:
		// Repair path: the CAS winner may have crashed between the phase
		// write and the downstream work. Both calls are idempotent.
		if round.DiceResult == nil || round.SettledAt == nil {
			s.resolveAndSettle(ctx, round, now)
			return nil
		}
		if now.Before(round.EndTime) {
			return nil
		}
		won, err := s.casPhase(ctx, round.ID, models.PhaseResolved, models.PhaseCompleted)
		if err != nil {
			return err
		}
		if won {
			round.Phase = models.PhaseCompleted
			s.publish(EventPhaseChanged, round, now)
			return s.rollover(ctx, round)
		}

	case models.PhaseCompleted:
		// Next-round creation failed earlier; retry with backoff.
		return s.rollover(ctx, round)
	}
	return nil
}

func (s *Scheduler) casPhase(ctx context.Context, roundID uint, from, to models.RoundPhase) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.GameRound{}).
		Where("id = ? AND phase = ?", roundID, from).
		Update("phase", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Scheduler) resolveAndSettle(ctx context.Context, round *models.GameRound, now time.Time) {
	result, err := s.resolver.Finalize(ctx, round.ID)
	if err != nil {
		log.L.Error("dice finalize failed, will retry",
			log.Round(round.RoundNumber), zap.Error(err))
		return
	}
	if round.DiceResult == nil {
		round.DiceResult = &result.Result
		s.publish(EventResultSet, round, now)
		s.publish(EventPhaseChanged, round, now)
		log.L.Info("round resolved",
			log.Round(round.RoundNumber),
			zap.Int("result", result.Result),
			zap.String("mode", string(result.Mode)))
	}

	if err := s.payout.Settle(ctx, round.ID); err != nil && !errors.Is(err, ErrSettlementApplied) {
		log.L.Error("settlement failed, will retry",
			log.Round(round.RoundNumber), zap.Error(err))
	}
}

func (s *Scheduler) rollover(ctx context.Context, prev *models.GameRound) error {
	now := s.now()
	if now.Before(s.retryAt) {
		return nil
	}

	// The next round starts exactly where this one ended, no gap.
	if err := s.createRound(ctx, prev.RoundNumber+1, prev.EndTime); err != nil {
		s.rolloverFails++
		backoff := time.Duration(s.rolloverFails) * s.interval * 2
		if backoff > maxRolloverBackoff {
			backoff = maxRolloverBackoff
		}
		s.retryAt = now.Add(backoff)
		if s.rolloverFails >= rolloverAlertThreshold {
			log.L.Error("ALERT: round rollover stalled, play is halted",
				zap.Int("consecutive_failures", s.rolloverFails),
				zap.Uint64("last_round", prev.RoundNumber),
				zap.Error(err))
		} else {
			log.L.Warn("next round creation failed, backing off",
				zap.Int("consecutive_failures", s.rolloverFails),
				zap.Error(err))
		}
		return err
	}

	s.rolloverFails = 0
	s.retryAt = time.Time{}
	return nil
}

func (s *Scheduler) createRound(ctx context.Context, number uint64, start time.Time) error {
	round := newRound(number, start, s.cfg.Current())
	if err := s.db.WithContext(ctx).Create(round).Error; err != nil {
		// Another instance may have created it first; the unique index on
		// round_number decides. Treat a visible successor as done.
		var existing models.GameRound
		if ferr := s.db.WithContext(ctx).Where("round_number = ?", number).First(&existing).Error; ferr == nil {
			return nil
		}
		return err
	}
	s.publish(EventRoundCreated, round, s.now())
	log.L.Info("round created",
		log.Round(round.RoundNumber),
		zap.Time("start", round.StartTime))
	return nil
}

func (s *Scheduler) publish(typ EventType, round *models.GameRound, now time.Time) {
	s.hub.Publish(Event{
		Type:          typ,
		RoundID:       round.RoundID,
		RoundNumber:   round.RoundNumber,
		Phase:         round.Phase,
		DiceResult:    round.DiceResult,
		TimeRemaining: TimeRemaining(round, now),
	})
}
