// Package storage provides the persistence layer for the drill server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
)

// StoredEvent is one ledger row. Payload comes back as decoded JSON.
type StoredEvent struct {
	Seq       int64                  `json:"seq" db:"seq"`
	ID        string                 `json:"id" db:"id"`
	PlayerID  string                 `json:"player_id" db:"player_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	TargetID  string                 `json:"target_id" db:"target_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
	Depth     float64                `json:"depth" db:"depth"`
}

// EventRepository defines the interface for event persistence.
// The engine only sees events.EventPersister; the implementation is in infra.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event StoredEvent) error

	// GetByPlayer retrieves every event of a player in append order.
	GetByPlayer(ctx context.Context, playerID string) ([]StoredEvent, error)

	// Since retrieves a player's events at or after t.
	Since(ctx context.Context, playerID string, t time.Time) ([]StoredEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, playerID, eventType string) ([]StoredEvent, error)

	// Page retrieves up to limit events with seq greater than afterSeq.
	Page(ctx context.Context, playerID string, afterSeq int64, limit int) ([]StoredEvent, error)
}

// SaveRepository stores whole-state snapshots. The newest save wins.
type SaveRepository interface {
	// Save updates or inserts the snapshot of s.PlayerID.
	Save(ctx context.Context, s player.State) error

	// Load returns the snapshot of a player; ok is false when none exists.
	Load(ctx context.Context, playerID string) (s player.State, ok bool, err error)

	// List returns every saved player id with its save time.
	List(ctx context.Context) ([]SaveInfo, error)
}

// SaveInfo describes one stored snapshot.
type SaveInfo struct {
	PlayerID string    `json:"player_id"`
	SavedAt  time.Time `json:"saved_at"`
	Revision int64     `json:"revision"`
}
