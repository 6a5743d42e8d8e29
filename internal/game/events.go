package game

import (
	"time"

	"github.com/lox/rockpaperscissors/rps"
)

// GameEvent represents anything that changed a session. Every event carries
// the snapshot taken right after the change so subscribers never need to
// call back into the session.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
	Snapshot() Snapshot
}

type eventBase struct {
	snapshot  Snapshot
	timestamp time.Time
}

func (e eventBase) Timestamp() time.Time { return e.timestamp }
func (e eventBase) Snapshot() Snapshot   { return e.snapshot }

// RoundStartedEvent is published when a shuffle round enters Revealing
type RoundStartedEvent struct {
	eventBase
	User rps.Choice
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }

// ShuffleTickEvent is published on every cosmetic tick while revealing
type ShuffleTickEvent struct {
	eventBase
	Tick        int
	Placeholder rps.Choice
}

func (e ShuffleTickEvent) EventType() EventType { return EventTypeShuffleTick }

// RoundRevealedEvent is published once per round, when the computer's sign
// is drawn and the score has been updated.
type RoundRevealedEvent struct {
	eventBase
	User     rps.Choice
	Computer rps.Choice
	Result   rps.Result
}

func (e RoundRevealedEvent) EventType() EventType { return EventTypeRoundRevealed }

// RoundClearedEvent is published when a shuffle round returns to Picking
type RoundClearedEvent struct {
	eventBase
}

func (e RoundClearedEvent) EventType() EventType { return EventTypeRoundCleared }

// ScoreResetEvent is published after an explicit reset
type ScoreResetEvent struct {
	eventBase
	Previous rps.Score
}

func (e ScoreResetEvent) EventType() EventType { return EventTypeScoreReset }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a function to EventSubscriber
type SubscriberFunc func(event GameEvent)

func (f SubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	// Subscribe registers subscriber and returns a function that removes it.
	Subscribe(subscriber EventSubscriber) (unsubscribe func())
	Publish(event GameEvent)
}

type subscription struct {
	id         int
	subscriber EventSubscriber
}

// SimpleEventBus is a basic in-memory event bus implementation. It is not
// safe for concurrent use on its own; Session guards it with its mutex.
type SimpleEventBus struct {
	nextID        int
	subscriptions []subscription
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{
		subscriptions: make([]subscription, 0),
	}
}

// Subscribe adds a subscriber to receive events. Subscribers are keyed by
// registration, so func-backed subscribers can be removed too.
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) func() {
	bus.nextID++
	id := bus.nextID
	bus.subscriptions = append(bus.subscriptions, subscription{id: id, subscriber: subscriber})
	return func() { bus.remove(id) }
}

func (bus *SimpleEventBus) remove(id int) {
	for i, sub := range bus.subscriptions {
		if sub.id == id {
			bus.subscriptions = append(bus.subscriptions[:i], bus.subscriptions[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, sub := range bus.subscriptions {
		sub.subscriber.OnEvent(event)
	}
}

// Len returns the number of subscribers
func (bus *SimpleEventBus) Len() int {
	return len(bus.subscriptions)
}
