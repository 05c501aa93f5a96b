package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/metrics"
)

// LedgerPersister adapts the SQLite event repository to events.EventPersister
// so the in-memory ledger writes through to disk.
type LedgerPersister struct {
	repo    *SQLiteEventRepository
	metrics *metrics.Collector
	timeout time.Duration
}

func NewLedgerPersister(repo *SQLiteEventRepository, m *metrics.Collector) *LedgerPersister {
	return &LedgerPersister{repo: repo, metrics: m, timeout: 2 * time.Second}
}

// Append implements events.EventPersister.
func (p *LedgerPersister) Append(event events.GameEvent) error {
	start := time.Now()
	err := p.append(event)
	if p.metrics != nil {
		p.metrics.RecordEventWrite(time.Since(start), err)
	}
	return err
}

func (p *LedgerPersister) append(event events.GameEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event.Type, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.repo.appendRaw(ctx, StoredEvent{
		ID:        event.ID,
		PlayerID:  event.ActorID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		TargetID:  event.TargetID,
		Depth:     event.Depth,
	}, payload)
}
