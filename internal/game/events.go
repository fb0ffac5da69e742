package game

import "time"

// EventType represents a game event type with type safety
type EventType string

// EventType constants for round lifecycle events
const (
	EventTypePlayerRegistered    EventType = "player_registered"
	EventTypeGuessMade           EventType = "guess_made"
	EventTypePrizesDistributed   EventType = "prizes_distributed"
	EventTypeNewRoundStarted     EventType = "new_round_started"
	EventTypeEmergencyWithdrawal EventType = "emergency_withdrawal"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event represents any event emitted by the round state machine
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// PlayerRegisteredEvent is published when a player joins the current round
type PlayerRegisteredEvent struct {
	Identity    string
	Stake       int64
	Pool        int64 // pool after the stake was added
	RoundNumber uint64
	timestamp   time.Time
}

func (e PlayerRegisteredEvent) EventType() EventType { return EventTypePlayerRegistered }
func (e PlayerRegisteredEvent) Timestamp() time.Time { return e.timestamp }

// GuessMadeEvent is published after every accepted guess
type GuessMadeEvent struct {
	Identity     string
	Value        int
	Drawn        int
	Winner       bool
	AttemptsUsed int
	RoundNumber  uint64
	timestamp    time.Time
}

func (e GuessMadeEvent) EventType() EventType { return EventTypeGuessMade }
func (e GuessMadeEvent) Timestamp() time.Time { return e.timestamp }

// PrizesDistributedEvent is published when a round pays out. Winners may
// contain duplicates; Share is the per-entry payout and Remainder the
// undistributed floor-division leftover stranded in the treasury.
type PrizesDistributedEvent struct {
	RoundNumber uint64
	Winners     []string
	Share       int64
	Remainder   int64
	timestamp   time.Time
}

func (e PrizesDistributedEvent) EventType() EventType { return EventTypePrizesDistributed }
func (e PrizesDistributedEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundStartedEvent is published when the next round opens
type NewRoundStartedEvent struct {
	RoundNumber uint64
	CarriedPool int64 // funds rolled forward from the previous round
	timestamp   time.Time
}

func (e NewRoundStartedEvent) EventType() EventType { return EventTypeNewRoundStarted }
func (e NewRoundStartedEvent) Timestamp() time.Time { return e.timestamp }

// EmergencyWithdrawalEvent is published when the administrator drains the
// treasury outside of normal round flow
type EmergencyWithdrawalEvent struct {
	Admin     string
	Amount    int64
	timestamp time.Time
}

func (e EmergencyWithdrawalEvent) EventType() EventType { return EventTypeEmergencyWithdrawal }
func (e EmergencyWithdrawalEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to round events
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a basic in-memory event bus implementation. Publish
// fans out synchronously in subscription order; subscribers must not block.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
