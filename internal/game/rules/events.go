package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Game/Turn events
	EventGameStarted EventType = "GAME_STARTED"
	EventBeginTurn   EventType = "BEGIN_TURN"
	EventEndTurn     EventType = "END_TURN"
	EventGameOver    EventType = "GAME_OVER"
	EventConceded    EventType = "CONCEDED"

	// Card events
	EventDrewCard    EventType = "DREW_CARD"
	EventBurnedCard  EventType = "BURNED_CARD"
	EventFatigue     EventType = "FATIGUE"
	EventCardPlayed  EventType = "CARD_PLAYED"
	EventSpellCast   EventType = "SPELL_CAST"
	EventHeroPower   EventType = "HERO_POWER"
	EventActionError EventType = "ACTION_REJECTED"

	// Board events
	EventMinionSummoned  EventType = "MINION_SUMMONED"
	EventMinionDied      EventType = "MINION_DIED"
	EventGainedControl   EventType = "GAINED_CONTROL"
	EventWeaponEquipped  EventType = "WEAPON_EQUIPPED"
	EventWeaponDestroyed EventType = "WEAPON_DESTROYED"

	// Combat events
	EventAttack       EventType = "ATTACK"
	EventDamaged      EventType = "DAMAGED"
	EventShieldPopped EventType = "SHIELD_POPPED"
	EventHealed       EventType = "HEALED"
	EventDeathrattle  EventType = "DEATHRATTLE"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type      EventType
	TargetID  string    // ID of the target (minion, player, etc.)
	SourceID  string    // ID of the source card or minion
	PlayerID  string    // Player the event belongs to
	Amount    int       // Numeric value (damage, healing, cards)
	Data      string    // Additional string data, usually a card name
	Timestamp time.Time // When the event occurred
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle   int
	listener Listener
	types    map[EventType]bool
}

func (s subscription) wants(t EventType) bool {
	return len(s.types) == 0 || s.types[t]
}

// EventBus delivers events synchronously, in subscription order. Listeners
// must not subscribe or unsubscribe from inside a callback.
type EventBus struct {
	mu   sync.RWMutex
	subs []subscription
	next int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers listener for the given event types, or for every event
// when none are given, and returns a handle for Unsubscribe. A nil listener is
// ignored and yields -1.
func (bus *EventBus) Subscribe(listener Listener, types ...EventType) int {
	if listener == nil {
		return -1
	}
	sub := subscription{listener: listener}
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	sub.handle = bus.next
	bus.next++
	bus.subs = append(bus.subs, sub)
	return sub.handle
}

// Unsubscribe removes the listener registered under handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subs {
		if sub.handle == handle {
			bus.subs = append(bus.subs[:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers event to every interested listener. Publishing on a nil
// bus is a no-op.
func (bus *EventBus) Publish(event Event) {
	if bus == nil {
		return
	}
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, sub := range bus.subs {
		if sub.wants(event.Type) {
			sub.listener(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, targetID, sourceID, playerID string) Event {
	return Event{
		Type:      eventType,
		TargetID:  targetID,
		SourceID:  sourceID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, targetID, sourceID, playerID string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID, playerID)
	evt.Amount = amount
	return evt
}
