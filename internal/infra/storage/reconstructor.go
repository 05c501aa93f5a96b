// Package storage - reconstructor.go
// "While you were away": rebuilds a summary of the drill's history from the
// persisted ledger.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
)

// Reconstructor reads the ledger back into human-facing summaries.
// This is used for:
// 1. The "while you were away" recap after a restart
// 2. drillctl recap and the ledger API
// 3. Auditing and debugging
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new ledger reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// RecapEvent is a simplified event for the recap screen.
type RecapEvent struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Summary   string    `json:"summary"` // Human-readable description
	Impact    string    `json:"impact"`  // "POSITIVE", "NEGATIVE", "NEUTRAL"
}

// RecapTotals aggregates the events of a recap window.
type RecapTotals struct {
	Strikes        int                `json:"strikes"`
	Overheats      int                `json:"overheats"`
	Vents          int                `json:"vents"`
	PerfectVents   int                `json:"perfect_vents"`
	CraftsReady    int                `json:"crafts_ready"`
	CraftsTaken    int                `json:"crafts_collected"`
	Expeditions    int                `json:"expeditions_collected"`
	DronesLost     int                `json:"drones_lost"`
	BiomesEntered  []string           `json:"biomes_entered"`
	Gained         map[string]float64 `json:"gained"` // expedition rewards and trades
	Deepest        float64            `json:"deepest"`
}

// Recap is the "while you were away" report.
type Recap struct {
	PlayerID string       `json:"player_id"`
	Since    time.Time    `json:"since"`
	Events   []RecapEvent `json:"events"`
	Totals   RecapTotals  `json:"totals"`
}

// GenerateRecap builds the recap of a player's ledger since a given time.
func (r *Reconstructor) GenerateRecap(ctx context.Context, playerID string, since time.Time) (*Recap, error) {
	stored, err := r.eventRepo.Since(ctx, playerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	recap := &Recap{
		PlayerID: playerID,
		Since:    since,
		Totals:   RecapTotals{Gained: map[string]float64{}},
	}
	for _, e := range stored {
		r.applyEventToTotals(&recap.Totals, e)
		// Per-strike and per-vent lines would drown the report.
		if e.EventType == string(events.EventTypeStrike) || e.EventType == string(events.EventTypeVentAttempt) {
			continue
		}
		recap.Events = append(recap.Events, RecapEvent{
			Timestamp: e.Timestamp,
			EventType: e.EventType,
			Summary:   r.summarizeEvent(e),
			Impact:    r.determineImpact(e),
		})
	}
	return recap, nil
}

// applyEventToTotals folds one event into the running totals.
func (r *Reconstructor) applyEventToTotals(t *RecapTotals, e StoredEvent) {
	if e.Depth > t.Deepest {
		t.Deepest = e.Depth
	}
	switch events.EventType(e.EventType) {
	case events.EventTypeStrike:
		t.Strikes++
	case events.EventTypeOverheated:
		t.Overheats++
	case events.EventTypeVentAttempt:
		t.Vents++
		if str(e.Payload, "grade") == "PERFECT" {
			t.PerfectVents++
		}
	case events.EventTypeCraftReady:
		t.CraftsReady++
	case events.EventTypeCraftCollected:
		t.CraftsTaken++
	case events.EventTypeBiomeEntered:
		t.BiomesEntered = append(t.BiomesEntered, str(e.Payload, "name"))
	case events.EventTypeExpeditionCollected:
		t.Expeditions++
		outcome := obj(e.Payload, "outcome")
		t.DronesLost += int(num(outcome, "drones_lost"))
		for k, v := range obj(outcome, "reward") {
			if f, ok := v.(float64); ok {
				t.Gained[k] += f
			}
		}
	case events.EventTypeTrade:
		t.Gained[str(e.Payload, "to")] += num(e.Payload, "received")
	}
}

// summarizeEvent creates a human-readable summary.
func (r *Reconstructor) summarizeEvent(e StoredEvent) string {
	p := e.Payload
	switch events.EventType(e.EventType) {
	case events.EventTypeDrillStarted:
		return fmt.Sprintf("Drill started at %.0fm.", e.Depth)
	case events.EventTypeDrillStopped:
		return fmt.Sprintf("Drill stopped at %.0fm.", e.Depth)
	case events.EventTypeReturnedToCity:
		return "Drill returned to the city."
	case events.EventTypeBiomeEntered:
		return fmt.Sprintf("Broke through into %s at %.0fm.", str(p, "name"), e.Depth)
	case events.EventTypeOverheated:
		return "The drill overheated. Mining stopped until it was vented."
	case events.EventTypeCooled:
		return "The drill cooled down."
	case events.EventTypeHullBreached:
		return fmt.Sprintf("Hull breached at %.0fm. The drill was hauled back to the city.", e.Depth)
	case events.EventTypeCraftStarted:
		return fmt.Sprintf("Started crafting %s.", str(p, "part_id"))
	case events.EventTypeCraftReady:
		return fmt.Sprintf("%s finished crafting and is waiting to be collected.", str(p, "part_id"))
	case events.EventTypeCraftCollected:
		return fmt.Sprintf("Collected %s.", str(obj(p, "item"), "part_id"))
	case events.EventTypeCraftCancelled:
		return fmt.Sprintf("Cancelled a craft, refunded %s.", bundle(obj(p, "refund")))
	case events.EventTypeExpeditionLaunched:
		return fmt.Sprintf("Launched a %s expedition with %.0f drones.", str(p, "difficulty"), num(p, "drone_count"))
	case events.EventTypeExpeditionReturned:
		return "An expedition swarm is back and waiting to be collected."
	case events.EventTypeExpeditionCollected:
		outcome := obj(p, "outcome")
		return fmt.Sprintf("Expedition %s: %s, %.0f drones lost.", str(outcome, "result"), bundle(obj(outcome, "reward")), num(outcome, "drones_lost"))
	case events.EventTypeArtifactFound:
		return "An unidentified artifact was recovered."
	case events.EventTypeFusion:
		return fmt.Sprintf("Fused the %s up to tier %.0f.", str(p, "slot"), num(p, "tier"))
	case events.EventTypeTrade:
		return fmt.Sprintf("Traded %.0f %s for %.0f %s.", num(p, "paid"), str(p, "from"), num(p, "received"), str(p, "to"))
	case events.EventTypeGamble:
		if b, _ := p["won"].(bool); b {
			return fmt.Sprintf("Won %.0f %s at the tables.", num(p, "payout"), str(p, "kind"))
		}
		return fmt.Sprintf("Lost %.0f %s at the tables.", num(p, "stake"), str(p, "kind"))
	case events.EventTypeRepair:
		return "Hull repaired."
	case events.EventTypeSkillUpgraded:
		return fmt.Sprintf("%s raised to level %.0f.", str(p, "skill_id"), num(p, "level"))
	default:
		return strings.ToLower(strings.ReplaceAll(e.EventType, "_", " ")) + "."
	}
}

// determineImpact classifies the event impact.
func (r *Reconstructor) determineImpact(e StoredEvent) string {
	switch events.EventType(e.EventType) {
	case events.EventTypeOverheated, events.EventTypeHullBreached:
		return "NEGATIVE"
	case events.EventTypeCraftReady, events.EventTypeExpeditionReturned, events.EventTypeArtifactFound,
		events.EventTypeBiomeEntered, events.EventTypeFusion, events.EventTypeCooled:
		return "POSITIVE"
	case events.EventTypeExpeditionCollected:
		if str(obj(e.Payload, "outcome"), "result") == "lost" {
			return "NEGATIVE"
		}
		return "POSITIVE"
	case events.EventTypeGamble:
		if b, _ := e.Payload["won"].(bool); b {
			return "POSITIVE"
		}
		return "NEGATIVE"
	default:
		return "NEUTRAL"
	}
}

func obj(m map[string]interface{}, key string) map[string]interface{} {
	v, _ := m[key].(map[string]interface{})
	return v
}

func str(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func num(m map[string]interface{}, key string) float64 {
	v, _ := m[key].(float64)
	return v
}

func bundle(m map[string]interface{}) string {
	if len(m) == 0 {
		return "nothing"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%.0f %s", num(m, k), k))
	}
	return strings.Join(parts, ", ")
}
