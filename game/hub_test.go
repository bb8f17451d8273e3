package game

import (
	"testing"

	"gundu/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	b := hub.Subscribe()
	assert.Equal(t, 2, hub.SubscriberCount())

	roundID := uuid.New()
	hub.Publish(Event{Type: EventRoundCreated, RoundID: roundID, Phase: models.PhaseOpen})
	hub.Publish(Event{Type: EventPhaseChanged, RoundID: roundID, Phase: models.PhaseLocked})
	hub.Publish(Event{Type: EventResultSet, RoundID: roundID, Phase: models.PhaseResolved})

	for _, ch := range []chan Event{a, b} {
		got := drainEvents(ch)
		require.Len(t, got, 3)
		assert.Equal(t, EventRoundCreated, got[0].Type)
		assert.Equal(t, EventPhaseChanged, got[1].Type)
		assert.Equal(t, EventResultSet, got[2].Type)
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	hub.Unsubscribe(ch)
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-ch
	assert.False(t, open)

	// double unsubscribe is harmless
	hub.Unsubscribe(ch)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe()
	other := hub.Subscribe()

	// overflow the buffers; Publish must never block
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(Event{Type: EventPhaseChanged, RoundID: uuid.New()})
	}
	assert.Len(t, drainEvents(slow), subscriberBuffer)
	assert.Len(t, drainEvents(other), subscriberBuffer)
}
