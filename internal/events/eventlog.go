// Package events provides the append-only ledger of everything that happened
// to the drill: accepted commands and notable simulation transitions.
// It backs the "while you were away" recap and the live WebSocket feed.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeDrillStarted        EventType = "DRILL_STARTED"
	EventTypeDrillStopped        EventType = "DRILL_STOPPED"
	EventTypeReturnedToCity      EventType = "RETURNED_TO_CITY"
	EventTypeBiomeEntered        EventType = "BIOME_ENTERED"
	EventTypeStrike              EventType = "STRIKE"
	EventTypeOverheated          EventType = "OVERHEATED"
	EventTypeCooled              EventType = "COOLED"
	EventTypeVentAttempt         EventType = "VENT_ATTEMPT"
	EventTypeHullBreached        EventType = "HULL_BREACHED"
	EventTypeCraftStarted        EventType = "CRAFT_STARTED"
	EventTypeCraftReady          EventType = "CRAFT_READY"
	EventTypeCraftCollected      EventType = "CRAFT_COLLECTED"
	EventTypeCraftCancelled      EventType = "CRAFT_CANCELLED"
	EventTypeExpeditionLaunched  EventType = "EXPEDITION_LAUNCHED"
	EventTypeExpeditionReturned  EventType = "EXPEDITION_RETURNED"
	EventTypeExpeditionCollected EventType = "EXPEDITION_COLLECTED"
	EventTypePartEquipped        EventType = "PART_EQUIPPED"
	EventTypeItemScrapped        EventType = "ITEM_SCRAPPED"
	EventTypeArtifactFound       EventType = "ARTIFACT_FOUND"
	EventTypeArtifactAnalyzed    EventType = "ARTIFACT_ANALYZED"
	EventTypeArtifactEquipped    EventType = "ARTIFACT_EQUIPPED"
	EventTypeArtifactUnequipped  EventType = "ARTIFACT_UNEQUIPPED"
	EventTypeArtifactTransmuted  EventType = "ARTIFACT_TRANSMUTED"
	EventTypeTrade               EventType = "TRADE"
	EventTypeRepair              EventType = "REPAIR"
	EventTypeHeal                EventType = "HEAL"
	EventTypeGamble              EventType = "GAMBLE"
	EventTypeFusion              EventType = "FUSION"
	EventTypeBuffBought          EventType = "BUFF_BOUGHT"
	EventTypeSkillUpgraded       EventType = "SKILL_UPGRADED"
	EventTypeBlueprintBought     EventType = "BLUEPRINT_BOUGHT"
	EventTypeLicenseBought       EventType = "LICENSE_BOUGHT"
	EventTypeDroneBought         EventType = "DRONE_BOUGHT"
)

// GameEvent represents an immutable record of an action in the game.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`  // player the event belongs to
	TargetID  string      `json:"target_id"` // job, expedition, item or recipe (optional)
	Payload   interface{} `json:"payload"`   // Event-specific data
	Depth     float64     `json:"depth"`     // drill depth when it happened
}

// New builds an event with a fresh id.
func New(typ EventType, actorID, targetID string, at time.Time, depth float64, payload interface{}) GameEvent {
	return GameEvent{
		ID:        GenerateEventID(),
		Timestamp: at,
		Type:      typ,
		ActorID:   actorID,
		TargetID:  targetID,
		Payload:   payload,
		Depth:     depth,
	}
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of game events.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
	onError   func(GameEvent, error)
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// OnPersistError registers a callback for failed write-throughs.
func (el *EventLog) OnPersistError(fn func(GameEvent, error)) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.onError = fn
}

// Append adds a new event to the log. Events are immutable once appended.
// The write-through to the persister happens synchronously so the stored
// ledger keeps append order.
func (el *EventLog) Append(event GameEvent) {
	el.mu.Lock()
	el.events = append(el.events, event)
	persister, onError := el.persister, el.onError
	el.mu.Unlock()

	if persister == nil {
		return
	}
	if err := persister.Append(event); err != nil && onError != nil {
		onError(event, err)
	}
}

// GetByActor returns all events belonging to a specific player.
func (el *EventLog) GetByActor(actorID string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// Since returns events at or after t, in append order.
func (el *EventLog) Since(t time.Time) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if !e.Timestamp.Before(t) {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return append([]GameEvent(nil), el.events...)
}

// From returns the events appended after the first offset entries.
func (el *EventLog) From(offset int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if offset >= len(el.events) {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	return append([]GameEvent(nil), el.events[offset:]...)
}

// Len returns the number of events in the log.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
