package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/crafting"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/metrics"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "nested", "drill.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveRoundTripKeepsTimestamps(t *testing.T) {
	// Setup
	repo := NewSQLiteSaveRepository(openTestDB(t))
	ctx := context.Background()
	s := player.State{
		PlayerID:  "pilot",
		Resources: resource.Bundle{resource.Clay: 12, resource.Ice: 3},
		Equipped: map[part.Slot]part.Item{
			part.SlotBit: {ID: "i1", PartID: "bit_1", Slot: part.SlotBit, AcquiredAt: t0},
		},
		Jobs: []crafting.Job{{
			ID: "job-1", Slot: part.SlotBit, PartID: "bit_2",
			StartTime: t0, CompletionTime: t0.Add(time.Minute),
			Cost: resource.Bundle{resource.Clay: 75},
		}},
		Expeditions: []expedition.Expedition{{
			ID: "exp-1", Difficulty: expedition.Easy, DroneCount: 2, Target: resource.Clay,
			StartTime: t0, Duration: 10 * time.Minute, Seed: 42,
		}},
		Integrity: 77,
		Location:  player.LocationMine,
		SavedAt:   t0,
	}

	// Act
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Integrity = 50
	s.SavedAt = t0.Add(time.Minute)
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, ok, err := repo.Load(ctx, "pilot")

	// Assert
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Integrity != 50 || got.Resources[resource.Clay] != 12 {
		t.Errorf("unexpected state %+v", got)
	}
	if len(got.Jobs) != 1 || !got.Jobs[0].CompletionTime.Equal(t0.Add(time.Minute)) {
		t.Fatalf("job timestamps lost: %+v", got.Jobs)
	}
	if got.Jobs[0].Status(t0.Add(1000*time.Second)) != crafting.StatusReadyToCollect {
		t.Errorf("restored job should resolve from its timestamp")
	}
	if got.Expeditions[0].Seed != 42 || got.Expeditions[0].Duration != 10*time.Minute {
		t.Errorf("expedition launch parameters lost: %+v", got.Expeditions[0])
	}

	saves, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(saves) != 1 || saves[0].Revision != 2 {
		t.Errorf("expected one save at revision 2, got %+v", saves)
	}
	if _, ok, _ := repo.Load(ctx, "nobody"); ok {
		t.Errorf("expected no save for unknown player")
	}
}

func TestLedgerPersisterWritesThrough(t *testing.T) {
	// Setup
	repo := NewSQLiteEventRepository(openTestDB(t))
	m := metrics.New()
	el := events.NewEventLog(NewLedgerPersister(repo, m))

	// Act
	el.Append(events.New(events.EventTypeDrillStarted, "pilot", "", t0, 0, map[string]interface{}{"location": "mine"}))
	el.Append(events.New(events.EventTypeBiomeEntered, "pilot", "bedrock", t0.Add(time.Minute), 200, map[string]interface{}{"name": "Bedrock"}))
	el.Append(events.New(events.EventTypeDrillStarted, "rival", "", t0, 0, nil))

	// Assert
	all, err := repo.GetByPlayer(context.Background(), "pilot")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	if all[1].EventType != string(events.EventTypeBiomeEntered) || all[1].Payload["name"] != "Bedrock" {
		t.Errorf("unexpected second event %+v", all[1])
	}
	if !all[1].Timestamp.Equal(t0.Add(time.Minute)) {
		t.Errorf("timestamp mangled: %v", all[1].Timestamp)
	}
	if m.EventsWritten != 3 {
		t.Errorf("expected 3 writes recorded, got %d", m.EventsWritten)
	}

	page, err := repo.Page(context.Background(), "pilot", all[0].Seq, 10)
	if err != nil || len(page) != 1 || page[0].ID != all[1].ID {
		t.Errorf("expected page after first seq to hold the second event, got %+v (%v)", page, err)
	}
	since, _ := repo.Since(context.Background(), "pilot", t0.Add(time.Second))
	if len(since) != 1 {
		t.Errorf("expected 1 event since t0+1s, got %d", len(since))
	}
}

func TestRecapSummarisesLedger(t *testing.T) {
	// Setup
	repo := NewSQLiteEventRepository(openTestDB(t))
	ctx := context.Background()
	add := func(typ events.EventType, at time.Duration, depth float64, payload map[string]interface{}) {
		t.Helper()
		err := repo.Append(ctx, StoredEvent{
			ID: events.GenerateEventID(), PlayerID: "pilot", Timestamp: t0.Add(at),
			EventType: string(typ), Payload: payload, Depth: depth,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	add(events.EventTypeStrike, 0, 10, map[string]interface{}{"amount": 1.0})
	add(events.EventTypeStrike, time.Second, 10, map[string]interface{}{"amount": 1.0})
	add(events.EventTypeOverheated, 2*time.Second, 12, map[string]interface{}{"heat": 100.0})
	add(events.EventTypeBiomeEntered, time.Minute, 200, map[string]interface{}{"name": "Bedrock"})
	add(events.EventTypeExpeditionCollected, time.Hour, 210, map[string]interface{}{
		"outcome": map[string]interface{}{"result": "partial", "drones_lost": 1.0, "reward": map[string]interface{}{"clay": 40.0}},
	})

	// Act
	recap, err := NewReconstructor(repo).GenerateRecap(ctx, "pilot", t0)

	// Assert
	if err != nil {
		t.Fatalf("recap: %v", err)
	}
	tot := recap.Totals
	if tot.Strikes != 2 || tot.Overheats != 1 || tot.Expeditions != 1 || tot.DronesLost != 1 {
		t.Errorf("unexpected totals %+v", tot)
	}
	if tot.Gained["clay"] != 40 || tot.Deepest != 210 {
		t.Errorf("unexpected gains %+v deepest %v", tot.Gained, tot.Deepest)
	}
	if len(recap.Events) != 3 {
		t.Fatalf("expected strikes folded out of the event list, got %d lines", len(recap.Events))
	}
	if recap.Events[0].Impact != "NEGATIVE" || recap.Events[1].Summary != "Broke through into Bedrock at 200m." {
		t.Errorf("unexpected lines %+v", recap.Events)
	}
}
