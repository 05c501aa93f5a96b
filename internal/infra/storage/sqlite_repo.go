package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
)

const eventColumns = `seq, id, player_id, timestamp, event_type, target_id, payload, depth`

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return r.appendRaw(ctx, event, payloadBytes)
}

func (r *SQLiteEventRepository) appendRaw(ctx context.Context, event StoredEvent, payload []byte) error {
	query := `
		INSERT INTO events (id, player_id, timestamp, event_type, target_id, payload, depth)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.PlayerID, event.Timestamp.UnixNano(), event.EventType,
		event.TargetID, string(payload), event.Depth,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var payloadStr string
		var ts int64
		err := rows.Scan(
			&e.Seq, &e.ID, &e.PlayerID, &ts, &e.EventType,
			&e.TargetID, &payloadStr, &e.Depth,
		)
		if err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(0, ts).UTC()
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, fmt.Errorf("event %s: bad payload: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetByPlayer(ctx context.Context, playerID string) ([]StoredEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE player_id = ? ORDER BY seq ASC`
	return r.getMany(ctx, query, playerID)
}

func (r *SQLiteEventRepository) Since(ctx context.Context, playerID string, t time.Time) ([]StoredEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE player_id = ? AND timestamp >= ? ORDER BY seq ASC`
	return r.getMany(ctx, query, playerID, t.UnixNano())
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, playerID, eventType string) ([]StoredEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE player_id = ? AND event_type = ? ORDER BY seq ASC`
	return r.getMany(ctx, query, playerID, eventType)
}

func (r *SQLiteEventRepository) Page(ctx context.Context, playerID string, afterSeq int64, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE player_id = ? AND seq > ? ORDER BY seq ASC LIMIT ?`
	return r.getMany(ctx, query, playerID, afterSeq, limit)
}

// ---------------------------------------------------------
// SQLiteSaveRepository
// ---------------------------------------------------------

type SQLiteSaveRepository struct {
	db *sql.DB
}

func NewSQLiteSaveRepository(db *sql.DB) *SQLiteSaveRepository {
	return &SQLiteSaveRepository{db: db}
}

func (r *SQLiteSaveRepository) Save(ctx context.Context, s player.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	query := `
		INSERT INTO saves (player_id, state_json, saved_at, revision)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(player_id) DO UPDATE SET
			state_json=excluded.state_json,
			saved_at=excluded.saved_at,
			revision=saves.revision + 1
	`
	if _, err := r.db.ExecContext(ctx, query, s.PlayerID, string(data), s.SavedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (r *SQLiteSaveRepository) Load(ctx context.Context, playerID string) (player.State, bool, error) {
	query := `SELECT state_json FROM saves WHERE player_id = ?`
	var data string
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return player.State{}, false, nil
		}
		return player.State{}, false, err
	}
	var s player.State
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return player.State{}, false, fmt.Errorf("save of %s is unreadable: %w", playerID, err)
	}
	return s, true, nil
}

func (r *SQLiteSaveRepository) List(ctx context.Context) ([]SaveInfo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT player_id, saved_at, revision FROM saves ORDER BY player_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saves []SaveInfo
	for rows.Next() {
		var info SaveInfo
		var ts int64
		if err := rows.Scan(&info.PlayerID, &ts, &info.Revision); err != nil {
			return nil, err
		}
		info.SavedAt = time.Unix(0, ts).UTC()
		saves = append(saves, info)
	}
	return saves, rows.Err()
}
