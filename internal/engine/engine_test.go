package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/config"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/crafting"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/thermal"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/gamedata"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/clock"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/logger"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/metrics"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	eng *Engine
	clk *clock.Fake
	log *events.EventLog
}

func newFixture(t *testing.T, mutate func(s *player.State)) fixture {
	t.Helper()
	data, err := gamedata.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
	s, err := player.New("pilot", data.Parts, t0, newID)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if mutate != nil {
		mutate(&s)
	}
	clk := clock.NewFake(t0)
	el := events.NewEventLog(nil)
	eng := NewEngine(s, data, &cfg.Tuning, el, logger.Discard(), Options{
		Clock:   clk,
		Rand:    rand.New(rand.NewPCG(1, 2)),
		NewID:   newID,
		Metrics: metrics.New(),
	})
	return fixture{eng: eng, clk: clk, log: el}
}

func countEvents(el *events.EventLog, typ events.EventType) int {
	n := 0
	for _, e := range el.Replay() {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func artifactInstance(id, defID string, identified bool) artifact.Instance {
	return artifact.Instance{ID: id, DefID: defID, Identified: identified, FoundAt: t0}
}

func TestCraftScenarioSpendsExactBalance(t *testing.T) {
	// Setup
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.Clay: 50}
	})

	// Act
	job, err := f.eng.StartCraft("bit_1", part.SlotBit)
	if err != nil {
		t.Fatalf("first craft: %v", err)
	}
	_, err = f.eng.StartCraft("bit_1", part.SlotBit)

	// Assert
	if !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("expected insufficient resources, got %v", err)
	}
	s := f.eng.Snapshot()
	if s.Resources[resource.Clay] != 0 {
		t.Errorf("expected clay 0, got %v", s.Resources[resource.Clay])
	}
	if len(s.Jobs) != 1 || s.Jobs[0].ID != job.ID {
		t.Errorf("expected exactly the first job, got %+v", s.Jobs)
	}
	if !job.CompletionTime.Equal(t0.Add(30 * time.Second)) {
		t.Errorf("expected completion at t0+30s, got %v", job.CompletionTime)
	}
}

func TestCraftRejectsBeforeDeducting(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.AncientTech: 10000, resource.Scrap: 100}
	})

	tests := []struct {
		name   string
		partID string
		slot   part.Slot
		want   error
	}{
		{"unknown part", "bit_99", part.SlotBit, ErrUnknownEntry},
		{"wrong slot", "bit_2", part.SlotEngine, ErrSlotMismatch},
		{"fusion tier", "bit_13", part.SlotBit, ErrFusionOnly},
		{"blueprint", "bit_12", part.SlotBit, ErrBlueprintLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.eng.StartCraft(tt.partID, tt.slot)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !IsRejection(err) {
				t.Errorf("expected a rejection, got %v", err)
			}
		})
	}

	s := f.eng.Snapshot()
	if s.Resources[resource.AncientTech] != 10000 || len(s.Jobs) != 0 {
		t.Errorf("rejected crafts changed state: %v, %d jobs", s.Resources, len(s.Jobs))
	}
}

func TestCraftQueueLimit(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.Clay: 1000}
	})

	for i := 0; i < 5; i++ {
		if _, err := f.eng.StartCraft("bit_1", part.SlotBit); err != nil {
			t.Fatalf("craft %d: %v", i, err)
		}
	}
	if _, err := f.eng.StartCraft("bit_1", part.SlotBit); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}
	if got := f.eng.Snapshot().Resources[resource.Clay]; got != 750 {
		t.Errorf("expected 750 clay left, got %v", got)
	}
}

func TestCraftResumesFromTimestamps(t *testing.T) {
	// Setup: the same job read shortly after and long after completion.
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.Clay: 50}
	})
	job, err := f.eng.StartCraft("bit_1", part.SlotBit)
	if err != nil {
		t.Fatalf("craft: %v", err)
	}

	// Act
	soon := job.Status(t0.Add(31 * time.Second))
	late := job.Status(t0.Add(1000 * time.Second))
	f.clk.Set(t0.Add(1000 * time.Second))
	res, err := f.eng.CollectCraftedItem(job.ID)

	// Assert
	if soon != crafting.StatusReadyToCollect || late != soon {
		t.Fatalf("expected ready at both instants, got %s and %s", soon, late)
	}
	if err != nil {
		t.Fatalf("collect after downtime: %v", err)
	}
	if res.Item.PartID != "bit_1" || res.Item.Slot != part.SlotBit {
		t.Errorf("unexpected item %+v", res.Item)
	}
}

func TestCollectIsIdempotent(t *testing.T) {
	// Setup
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.Clay: 50}
	})
	job, _ := f.eng.StartCraft("bit_1", part.SlotBit)

	// Act
	_, early := f.eng.CollectCraftedItem(job.ID)
	f.clk.Advance(time.Minute)
	_, first := f.eng.CollectCraftedItem(job.ID)
	_, second := f.eng.CollectCraftedItem(job.ID)

	// Assert
	if !errors.Is(early, ErrJobNotReady) {
		t.Errorf("expected not ready, got %v", early)
	}
	if first != nil {
		t.Fatalf("first collect: %v", first)
	}
	if !errors.Is(second, ErrJobNotFound) {
		t.Errorf("expected second collect to find nothing, got %v", second)
	}
	s := f.eng.Snapshot()
	if len(s.Inventory) != 1 || len(s.Jobs) != 0 {
		t.Errorf("expected one item and no jobs, got %d items %d jobs", len(s.Inventory), len(s.Jobs))
	}
	if s.Totals.Crafted != 1 {
		t.Errorf("expected crafted total 1, got %d", s.Totals.Crafted)
	}
}

func TestCancelRefundsHalfAndRejectsReadyJobs(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.Clay: 100}
	})
	a, _ := f.eng.StartCraft("bit_1", part.SlotBit)
	b, _ := f.eng.StartCraft("bit_1", part.SlotBit)

	res, err := f.eng.CancelCraft(a.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.Refund[resource.Clay] != 25 {
		t.Errorf("expected 25 clay refund, got %v", res.Refund)
	}
	if got := f.eng.Snapshot().Resources[resource.Clay]; got != 25 {
		t.Errorf("expected 25 clay after cancel, got %v", got)
	}

	f.clk.Advance(time.Minute)
	if _, err := f.eng.CancelCraft(b.ID); !errors.Is(err, ErrJobAlreadyReady) {
		t.Fatalf("expected ready job to be uncancellable, got %v", err)
	}
	if _, err := f.eng.CancelCraft(a.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected double cancel to find nothing, got %v", err)
	}
	if len(f.eng.Snapshot().Jobs) != 1 {
		t.Errorf("expected the ready job to stay queued")
	}
}

func TestVentDuringCooldownIsNoOp(t *testing.T) {
	// Setup
	f := newFixture(t, func(s *player.State) {
		s.Thermal.Heat = 60
	})
	if _, err := f.eng.AttemptVent(); err != nil {
		t.Fatalf("first vent: %v", err)
	}
	before := f.eng.Snapshot()
	logged := f.log.Len()

	// Act
	f.clk.Advance(500 * time.Millisecond)
	_, err := f.eng.AttemptVent()

	// Assert
	if !errors.Is(err, ErrVentCooldown) {
		t.Fatalf("expected cooldown rejection, got %v", err)
	}
	after := f.eng.Snapshot()
	if after.Thermal != before.Thermal || after.Totals.Vents != 1 {
		t.Errorf("cooldown attempt changed thermal state: %+v -> %+v", before.Thermal, after.Thermal)
	}
	if f.log.Len() != logged {
		t.Errorf("cooldown attempt appended events")
	}

	f.clk.Advance(5 * time.Second)
	if _, err := f.eng.AttemptVent(); err != nil {
		t.Errorf("expected vent after cooldown, got %v", err)
	}
}

func TestOverheatClampsIncomeToZero(t *testing.T) {
	// Setup
	f := newFixture(t, func(s *player.State) {
		s.Location = player.LocationMine
		s.Drilling = true
		s.Thermal.Heat = thermal.MaxHeat
	})
	before := f.eng.Snapshot()

	// Act
	f.clk.Advance(time.Second)
	report, err := f.eng.Tick()

	// Assert
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	after := f.eng.Snapshot()
	if after.Thermal.Heat != thermal.MaxHeat {
		t.Errorf("expected heat exactly %v, got %v", thermal.MaxHeat, after.Thermal.Heat)
	}
	if report.Drill.Income != 0 || after.Resources[resource.Clay] != before.Resources[resource.Clay] {
		t.Errorf("expected zero income while overheated, got %v", report.Drill.Income)
	}
	if after.Depth != before.Depth {
		t.Errorf("expected depth to hold, got %v", after.Depth)
	}
	if _, err := f.eng.Strike(); !errors.Is(err, ErrOverheated) {
		t.Errorf("expected strike to be rejected, got %v", err)
	}
}

func TestTickDrillsAndOverheats(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		s.Location = player.LocationMine
		s.Drilling = true
		s.Thermal.Heat = 99
	})

	f.clk.Advance(time.Second)
	report, err := f.eng.Tick()
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if report.Drill.Income <= 0 || report.Drill.DepthGain <= 0 {
		t.Fatalf("expected income and depth, got %+v", report.Drill)
	}

	f.clk.Advance(5 * time.Second)
	if _, err := f.eng.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	s := f.eng.Snapshot()
	if s.Thermal.Phase() != thermal.PhaseOverheated {
		t.Fatalf("expected overheat, heat %v", s.Thermal.Heat)
	}
	if countEvents(f.log, events.EventTypeOverheated) != 1 {
		t.Errorf("expected one OVERHEATED event")
	}
	if s.Integrity >= player.MaxIntegrity {
		t.Errorf("expected heat damage above the threshold, integrity %v", s.Integrity)
	}
}

func TestTickCapsDowntime(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		s.Location = player.LocationMine
		s.Drilling = true
	})

	f.clk.Advance(time.Hour)
	report, err := f.eng.Tick()
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if report.DT != DefaultMaxTick.Seconds() {
		t.Errorf("expected dt capped at %v, got %v", DefaultMaxTick.Seconds(), report.DT)
	}
}

func TestTickAnnouncesReadyJobOnce(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.Clay: 50}
	})
	if _, err := f.eng.StartCraft("bit_1", part.SlotBit); err != nil {
		t.Fatalf("craft: %v", err)
	}

	for i := 0; i < 3; i++ {
		f.clk.Advance(20 * time.Second)
		if _, err := f.eng.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	if got := countEvents(f.log, events.EventTypeCraftReady); got != 1 {
		t.Errorf("expected one CRAFT_READY, got %d", got)
	}
}

func TestFusionTierGateBeforeCatalyst(t *testing.T) {
	// Setup: catalyst and progress present, but a tier-1 bit installed.
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.Rubies: 10, resource.AncientTech: 5}
		s.Progress.MaxDepth = 10000
	})

	// Act
	_, err := f.eng.FusionUpgrade("fuse_bit_13")

	// Assert
	if !errors.Is(err, ErrTierGate) {
		t.Fatalf("expected tier gate, got %v", err)
	}
	if got := f.eng.Snapshot().Resources[resource.Rubies]; got != 10 {
		t.Errorf("catalyst consumed on rejection: %v rubies left", got)
	}
}

func TestFusionReplacesTierTwelve(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.Rubies: 10, resource.AncientTech: 5}
		s.Equipped[part.SlotBit] = part.Item{ID: "old-bit", PartID: "bit_12", Slot: part.SlotBit}
	})

	if _, err := f.eng.FusionUpgrade("fuse_bit_13"); !errors.Is(err, ErrFusionConditionUnmet) {
		t.Fatalf("expected unmet depth condition, got %v", err)
	}

	f.eng.Restore(func() player.State {
		s := f.eng.Snapshot()
		s.Progress.MaxDepth = 5000
		return s
	}())
	res, err := f.eng.FusionUpgrade("fuse_bit_13")
	if err != nil {
		t.Fatalf("fusion: %v", err)
	}
	s := f.eng.Snapshot()
	if s.Equipped[part.SlotBit].PartID != "bit_13" || res.Tier != 13 {
		t.Errorf("expected bit_13 installed, got %+v", s.Equipped[part.SlotBit])
	}
	if res.Consumed.ID != "old-bit" {
		t.Errorf("expected tier-12 bit consumed, got %+v", res.Consumed)
	}
	if !s.Resources.IsZero() {
		t.Errorf("expected catalyst spent, got %v", s.Resources)
	}
}

func TestExpeditionLifecycle(t *testing.T) {
	// Setup
	f := newFixture(t, func(s *player.State) {
		s.Drones = 4
		s.Resources = resource.Bundle{resource.Clay: 60}
	})

	// Act
	_, licErr := f.eng.LaunchExpedition(expedition.Medium, 1, resource.Copper)
	_, droneErr := f.eng.LaunchExpedition(expedition.Easy, 5, resource.Clay)
	e, err := f.eng.LaunchExpedition(expedition.Easy, 3, resource.Clay)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	_, earlyErr := f.eng.CollectRewards(e.ID)
	f.clk.Advance(10 * time.Minute)
	res, err := f.eng.CollectRewards(e.ID)
	_, againErr := f.eng.CollectRewards(e.ID)

	// Assert
	if !errors.Is(licErr, ErrLicenseRequired) {
		t.Errorf("expected license rejection, got %v", licErr)
	}
	if !errors.Is(droneErr, ErrNotEnoughDrones) {
		t.Errorf("expected drone rejection, got %v", droneErr)
	}
	if !errors.Is(earlyErr, ErrExpeditionNotReturned) {
		t.Errorf("expected early collect rejection, got %v", earlyErr)
	}
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if !errors.Is(againErr, ErrExpeditionNotFound) {
		t.Errorf("expected second collect to find nothing, got %v", againErr)
	}
	s := f.eng.Snapshot()
	if s.Drones != 1+res.Outcome.DronesReturned {
		t.Errorf("expected %d drones, got %d", 1+res.Outcome.DronesReturned, s.Drones)
	}
	if s.Resources[resource.Clay] != res.Outcome.Reward[resource.Clay] {
		t.Errorf("expected clay %v, got %v", res.Outcome.Reward[resource.Clay], s.Resources[resource.Clay])
	}
	if len(s.Expeditions) != 0 {
		t.Errorf("expected expedition removed")
	}
}

func TestStrikeAndLocation(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.eng.Strike(); !errors.Is(err, ErrNotInMine) {
		t.Fatalf("expected strike in city to fail, got %v", err)
	}
	if _, err := f.eng.StartDrilling(); err != nil {
		t.Fatalf("start drilling: %v", err)
	}
	res, err := f.eng.Strike()
	if err != nil {
		t.Fatalf("strike: %v", err)
	}
	s := f.eng.Snapshot()
	if res.Amount <= 0 || s.Resources[resource.Clay] != res.Amount {
		t.Errorf("expected strike income credited, got %+v", res)
	}
	if s.Thermal.Heat != 0.8 {
		t.Errorf("expected click heat 0.8, got %v", s.Thermal.Heat)
	}
	if _, err := f.eng.RepairHull(); !errors.Is(err, ErrNotInCity) {
		t.Errorf("expected repair in mine to fail, got %v", err)
	}
	if _, err := f.eng.ReturnToCity(); err != nil {
		t.Fatalf("return: %v", err)
	}
	if f.eng.Snapshot().Drilling {
		t.Errorf("expected drilling stopped on return")
	}
}

func TestHullBreachSendsDrillHome(t *testing.T) {
	// Setup
	f := newFixture(t, func(s *player.State) {
		s.Location = player.LocationMine
		s.Drilling = true
		s.Thermal.Heat = thermal.MaxHeat
		s.Integrity = 0.1
		s.Resources = resource.Bundle{resource.Copper: 100, resource.Stone: 200}
	})

	// Act
	f.clk.Advance(time.Second)
	if _, err := f.eng.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	breached := f.eng.Snapshot()
	for i := 0; i < 3; i++ {
		f.clk.Advance(time.Second)
		if _, err := f.eng.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	later := f.eng.Snapshot()
	_, blocked := f.eng.StartDrilling()

	// Assert
	if breached.Integrity != 0 || breached.Drilling || !breached.InCity() || !breached.Breached {
		t.Fatalf("expected breached drill in the city, got integrity %v drilling %v at %s", breached.Integrity, breached.Drilling, breached.Location)
	}
	if later.Integrity != 0 {
		t.Errorf("breached hull must not regenerate, got integrity %v", later.Integrity)
	}
	if !errors.Is(blocked, ErrHullBreached) {
		t.Errorf("expected breached hull to block drilling ticks later, got %v", blocked)
	}
	if n := countEvents(f.log, events.EventTypeHullBreached); n != 1 {
		t.Errorf("expected one breach event across ticks, got %d", n)
	}

	if _, err := f.eng.RepairHull(); err != nil {
		t.Fatalf("repair: %v", err)
	}
	if f.eng.Snapshot().Breached {
		t.Errorf("repair should clear the breach")
	}
	if _, err := f.eng.StartDrilling(); err != nil {
		t.Errorf("expected drilling allowed after repair, got %v", err)
	}
}

func TestMissingSlotIsInvariant(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		delete(s.Equipped, part.SlotArmor)
	})

	f.clk.Advance(time.Second)
	_, tickErr := f.eng.Tick()
	_, ventErr := f.eng.AttemptVent()

	if !IsInvariant(tickErr) || !IsInvariant(ventErr) {
		t.Fatalf("expected invariant errors, got %v / %v", tickErr, ventErr)
	}
	if IsRejection(ventErr) {
		t.Errorf("invariant must not be classified as a rejection")
	}
}

func TestEconomyServices(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		s.Resources = resource.Bundle{resource.Copper: 100, resource.Stone: 200, resource.Ice: 50}
		s.Integrity = 90
		s.Thermal.Heat = 40
	})

	trade, err := f.eng.TradeResources(resource.Copper, resource.Clay, 10)
	if err != nil {
		t.Fatalf("trade: %v", err)
	}
	if trade.Received != 45 {
		t.Errorf("expected 45 clay for 10 copper, got %v", trade.Received)
	}
	if _, err := f.eng.RepairHull(); err != nil {
		t.Fatalf("repair: %v", err)
	}
	if _, err := f.eng.HealHeat(); err != nil {
		t.Fatalf("heal: %v", err)
	}
	if _, err := f.eng.TradeResources(resource.Copper, resource.Clay, 1000); !errors.Is(err, ErrInsufficientResources) {
		t.Errorf("expected insufficient resources, got %v", err)
	}

	s := f.eng.Snapshot()
	if s.Integrity != player.MaxIntegrity || s.Thermal.Heat != 0 {
		t.Errorf("expected full hull and zero heat, got %v / %v", s.Integrity, s.Thermal.Heat)
	}
	if s.Resources[resource.Copper] != 80 || s.Resources[resource.Stone] != 180 || s.Resources[resource.Ice] != 10 {
		t.Errorf("unexpected balances %v", s.Resources)
	}
}

func TestEquipAndArtifacts(t *testing.T) {
	f := newFixture(t, func(s *player.State) {
		s.Inventory = append(s.Inventory, part.Item{ID: "spare", PartID: "bit_2", Slot: part.SlotBit})
		s.Resources = resource.Bundle{resource.Silver: 5}
		s.Artifacts = append(s.Artifacts, artifactInstance("relic", "ember_core", false))
	})

	before, _ := f.eng.Stats()
	if _, err := f.eng.EquipArtifact("relic"); !errors.Is(err, ErrArtifactUnidentified) {
		t.Fatalf("expected unidentified rejection, got %v", err)
	}
	if _, err := f.eng.AnalyzeArtifact("relic"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := f.eng.EquipArtifact("relic"); err != nil {
		t.Fatalf("equip artifact: %v", err)
	}
	swap, err := f.eng.EquipPart("spare")
	if err != nil {
		t.Fatalf("equip part: %v", err)
	}
	after, _ := f.eng.Stats()

	if swap.Removed.PartID != "bit_1" {
		t.Errorf("expected bit_1 back in inventory, got %+v", swap.Removed)
	}
	if want := 1.55 * 1.5; after.Damage < want-1e-9 || after.Damage > want+1e-9 {
		t.Errorf("expected damage %v, got %v (was %v)", want, after.Damage, before.Damage)
	}
}

func TestFusedPartStaysInstalled(t *testing.T) {
	// Setup
	f := newFixture(t, func(s *player.State) {
		s.Equipped[part.SlotBit] = part.Item{ID: "fused", PartID: "bit_13", Slot: part.SlotBit}
		s.Inventory = append(s.Inventory, part.Item{ID: "old", PartID: "bit_12", Slot: part.SlotBit})
	})
	written := f.log.Len()

	// Act
	_, err := f.eng.EquipPart("old")

	// Assert
	if !errors.Is(err, ErrFusedInstalled) || !IsRejection(err) {
		t.Fatalf("expected fused part to refuse the swap, got %v", err)
	}
	s := f.eng.Snapshot()
	if s.Equipped[part.SlotBit].ID != "fused" {
		t.Errorf("fused part left the slot: %+v", s.Equipped[part.SlotBit])
	}
	if s.FindItem("old") < 0 || s.FindItem("fused") >= 0 {
		t.Errorf("inventory changed on a rejected swap: %+v", s.Inventory)
	}
	if f.log.Len() != written {
		t.Errorf("rejected swap must not write events")
	}
}

func TestArtifactQuickSlotsCapAtFour(t *testing.T) {
	// Setup
	defs := []string{"cracked_lens", "warm_pebble", "copper_coil", "miners_charm", "frost_shard"}
	f := newFixture(t, func(s *player.State) {
		for i, def := range defs {
			s.Artifacts = append(s.Artifacts, artifactInstance(fmt.Sprintf("a%d", i), def, true))
		}
	})
	for i := 0; i < artifact.MaxEquipped; i++ {
		if _, err := f.eng.EquipArtifact(fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("equip a%d: %v", i, err)
		}
	}
	before := f.eng.Snapshot()
	written := f.log.Len()

	// Act
	_, err := f.eng.EquipArtifact("a4")

	// Assert
	if !errors.Is(err, ErrArtifactSlotsFull) {
		t.Fatalf("expected the fifth artifact rejected, got %v", err)
	}
	after := f.eng.Snapshot()
	if got := len(after.EquippedArtifactIDs()); got != artifact.MaxEquipped {
		t.Errorf("expected %d equipped, got %d", artifact.MaxEquipped, got)
	}
	if idx := after.FindArtifact("a4"); idx < 0 || after.Artifacts[idx].Equipped {
		t.Errorf("fifth artifact should stay unequipped")
	}
	if !reflect.DeepEqual(before.Artifacts, after.Artifacts) {
		t.Errorf("artifacts changed on rejection")
	}
	if f.log.Len() != written {
		t.Errorf("rejection wrote %d events", f.log.Len()-written)
	}
}
