package game

import (
	"sync"

	"gundu/log"
	"gundu/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventType string

const (
	EventPhaseChanged EventType = "phase_changed"
	EventResultSet    EventType = "result_set"
	EventRoundCreated EventType = "round_created"
)

type Event struct {
	Type          EventType         `json:"type"`
	RoundID       uuid.UUID         `json:"round_id"`
	RoundNumber   uint64            `json:"round_number"`
	Phase         models.RoundPhase `json:"phase"`
	DiceResult    *int              `json:"dice_result,omitempty"`
	TimeRemaining float64           `json:"time_remaining"`
}

const subscriberBuffer = 32

// Hub fans events out to all current subscribers. Delivery preserves the
// publisher's emission order per subscriber; a subscriber that stops draining
// loses events rather than blocking the scheduler.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			log.L.Warn("dropping event for slow subscriber",
				zap.String("type", string(ev.Type)),
				zap.String("round_id", ev.RoundID.String()))
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
