package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusPublishOrder(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	a := &recorder{}
	b := &recorder{}
	bus.Subscribe(a)
	bus.Subscribe(b)

	bus.Publish(NewRoundStartedEvent{RoundNumber: 2})
	bus.Publish(PlayerRegisteredEvent{Identity: "alice"})

	for _, rec := range []*recorder{a, b} {
		assert.Len(t, rec.events, 2)
		assert.Equal(t, EventTypeNewRoundStarted, rec.events[0].EventType())
		assert.Equal(t, EventTypePlayerRegistered, rec.events[1].EventType())
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	a := &recorder{}
	b := &recorder{}
	bus.Subscribe(a)
	bus.Subscribe(b)

	bus.Unsubscribe(a)
	bus.Publish(GuessMadeEvent{Identity: "bob", Value: 3})

	assert.Empty(t, a.events)
	assert.Len(t, b.events, 1)
}

func TestEventTypeStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "player_registered", EventTypePlayerRegistered.String())
	assert.Equal(t, "guess_made", GuessMadeEvent{}.EventType().String())
	assert.Equal(t, "prizes_distributed", PrizesDistributedEvent{}.EventType().String())
	assert.Equal(t, "new_round_started", NewRoundStartedEvent{}.EventType().String())
	assert.Equal(t, "emergency_withdrawal", EmergencyWithdrawalEvent{}.EventType().String())
}
