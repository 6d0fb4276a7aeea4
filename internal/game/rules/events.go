package rules

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType indicates the category of a combat event.
type EventType string

const (
	// Combat lifecycle
	EventCombatStarted   EventType = "COMBAT_STARTED"
	EventTurnStarted     EventType = "TURN_STARTED"
	EventTurnEnded       EventType = "TURN_ENDED"
	EventEnemyDefeated   EventType = "ENEMY_DEFEATED"
	EventPlayerDefeated  EventType = "PLAYER_DEFEATED"
	EventConfirmRequired EventType = "CONFIRM_REQUIRED"

	// Card movement
	EventCardsDrawn    EventType = "CARDS_DRAWN"
	EventHandDiscarded EventType = "HAND_DISCARDED"
	EventCardMoved     EventType = "CARD_MOVED"
	EventCardBurned    EventType = "CARD_BURNED"
	EventSpellCast     EventType = "SPELL_CAST"
	EventCardTrashed   EventType = "CARD_TRASHED"
	EventChargeSpent   EventType = "CHARGE_SPENT"
	EventReshuffled    EventType = "RESHUFFLED"
	EventRedealt       EventType = "REDEALT"

	// Combatants
	EventDamageDealt  EventType = "DAMAGE_DEALT"
	EventBlockGained  EventType = "BLOCK_GAINED"
	EventHealed       EventType = "HEALED"
	EventSummonJoined EventType = "SUMMON_JOINED"
	EventSummonDied   EventType = "SUMMON_DIED"
	EventEnemyActed   EventType = "ENEMY_ACTED"
	EventSummonActed  EventType = "SUMMON_ACTED"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type      EventType
	ID        string            // Unique, time-ordered event ID
	TargetID  string            // ID of the target (card, combatant, etc.)
	SourceID  string            // ID of the source card or combatant
	Amount    int               // Numeric value (damage, cards drawn, etc.)
	Data      string            // Additional string data
	Timestamp time.Time         // When the event occurred
	Metadata  map[string]string // Additional metadata
}

// Listener reacts to a published event.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty matches every type
	fn        Listener
}

// EventBus is a synchronous publish/subscribe bus. Listeners run in
// subscription order on the publishing goroutine.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for every event and returns its handle, or
// -1 for a nil listener.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add("", listener)
}

// SubscribeTyped registers a listener for one event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	if eventType == "" {
		return -1
	}
	return bus.add(eventType, listener)
}

func (bus *EventBus) add(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, fn: listener})
	return handle
}

func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subs {
		if sub.handle == handle {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to matching listeners. Listeners must not
// subscribe or unsubscribe from inside the callback.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, sub := range bus.subs {
		if sub.eventType == "" || sub.eventType == event.Type {
			sub.fn(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, targetID, sourceID string) Event {
	return Event{
		Type:      eventType,
		ID:        ulid.Make().String(),
		TargetID:  targetID,
		SourceID:  sourceID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, targetID, sourceID string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID)
	evt.Amount = amount
	return evt
}
