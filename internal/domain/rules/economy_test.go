package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/biome"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

func TestCheckFusionTierGate(t *testing.T) {
	recipe := part.FusionRecipe{
		ID:         "bit_13",
		Slot:       part.SlotBit,
		TargetTier: 13,
		Condition:  part.FusionCondition{Kind: part.ConditionDepth, Threshold: 1000},
	}
	deep := player.Progress{MaxDepth: 5000}

	for _, tier := range []int{1, 11, 13} {
		err := CheckFusion(recipe, part.Part{Slot: part.SlotBit, Tier: tier}, deep)
		if !errors.Is(err, ErrTierGate) {
			t.Errorf("tier %d: expected tier gate, got %v", tier, err)
		}
	}

	if err := CheckFusion(recipe, part.Part{Slot: part.SlotBit, Tier: 12}, player.Progress{MaxDepth: 10}); !errors.Is(err, ErrFusionConditionUnmet) {
		t.Errorf("expected condition unmet, got %v", err)
	}
	if err := CheckFusion(recipe, part.Part{Slot: part.SlotBit, Tier: 12}, deep); err != nil {
		t.Errorf("expected fusion allowed, got %v", err)
	}
}

func TestTradeQuoteAppliesFee(t *testing.T) {
	p := EconomyParams{
		Values:   map[resource.Kind]float64{resource.Clay: 1, resource.Iron: 10},
		TradeFee: 0.1,
	}
	got, err := TradeQuote(p, resource.Clay, resource.Iron, 100)
	if err != nil {
		t.Fatalf("TradeQuote: %v", err)
	}
	if got != 9 {
		t.Fatalf("expected 9 iron, got %v", got)
	}
	if _, err := TradeQuote(p, resource.Clay, resource.Diamonds, 1); !errors.Is(err, ErrUntradeable) {
		t.Fatalf("expected untradeable, got %v", err)
	}
}

func TestGambleResult(t *testing.T) {
	p := EconomyParams{GambleWinPct: 40, GamblePayout: 2}
	if won, pay := GambleResult(p, 50, 39.9); !won || pay != 100 {
		t.Errorf("expected win paying 100, got %v %v", won, pay)
	}
	if won, pay := GambleResult(p, 50, 40); won || pay != 0 {
		t.Errorf("expected loss, got %v %v", won, pay)
	}
}

func TestCheckTransmute(t *testing.T) {
	reg := mustArtifacts(t,
		artifact.Definition{ID: "r1", Rarity: part.Rare},
		artifact.Definition{ID: "r2", Rarity: part.Rare},
		artifact.Definition{ID: "e1", Rarity: part.Epic},
		artifact.Definition{ID: "g1", Rarity: part.Godly},
	)
	ok := []artifact.Instance{
		{ID: "a", DefID: "r1", Identified: true},
		{ID: "b", DefID: "r2", Identified: true},
		{ID: "c", DefID: "r1", Identified: true},
	}
	next, err := CheckTransmute(ok, reg)
	if err != nil || next != part.Epic {
		t.Fatalf("expected epic, got %v %v", next, err)
	}

	mixed := append([]artifact.Instance(nil), ok...)
	mixed[2].DefID = "e1"
	equipped := append([]artifact.Instance(nil), ok...)
	equipped[1].Equipped = true
	unknown := append([]artifact.Instance(nil), ok...)
	unknown[0].Identified = false
	godly := []artifact.Instance{
		{ID: "a", DefID: "g1", Identified: true},
		{ID: "b", DefID: "g1", Identified: true},
		{ID: "c", DefID: "g1", Identified: true},
	}
	for name, picked := range map[string][]artifact.Instance{
		"mixed":    mixed,
		"equipped": equipped,
		"unknown":  unknown,
		"two":      ok[:2],
		"godly":    godly,
	} {
		if _, err := CheckTransmute(picked, reg); !errors.Is(err, ErrTransmuteInvalid) {
			t.Errorf("%s: expected rejection, got %v", name, err)
		}
	}
}

func TestResolveExpeditionIsStable(t *testing.T) {
	d := DifficultyParams{FailurePct: 20, PartialPct: 30, RewardPerDrone: 10, PartialRewardFraction: 0.5, PartialDroneLoss: 0.5}
	e := expedition.Expedition{ID: "x", DroneCount: 4, Target: resource.Gold, Seed: 42, StartTime: time.Unix(0, 0)}

	first := ResolveExpedition(e, d, nil)
	for i := 0; i < 10; i++ {
		again := ResolveExpedition(e, d, nil)
		if again.Result != first.Result || again.Roll != first.Roll || again.Reward[resource.Gold] != first.Reward[resource.Gold] {
			t.Fatalf("roll %d differs: %+v vs %+v", i, again, first)
		}
	}
	if first.DronesLost+first.DronesReturned != 4 {
		t.Fatalf("drone accounting broken: %+v", first)
	}
}

func TestResolveExpeditionBands(t *testing.T) {
	e := expedition.Expedition{ID: "x", DroneCount: 4, Target: resource.Gold, Seed: 7, Luck: 50}

	lost := ResolveExpedition(e, DifficultyParams{FailurePct: 100, RewardPerDrone: 10}, nil)
	if lost.Result != expedition.ResultLost || lost.DronesLost != 4 || !lost.Reward.IsZero() {
		t.Errorf("expected total loss, got %+v", lost)
	}

	partial := ResolveExpedition(e, DifficultyParams{PartialPct: 100, RewardPerDrone: 10, PartialRewardFraction: 0.5, PartialDroneLoss: 0.25}, nil)
	if partial.Result != expedition.ResultPartial || partial.DronesLost != 1 || partial.Reward[resource.Gold] != 30 {
		t.Errorf("expected partial with 1 lost and 30 gold, got %+v", partial)
	}

	success := ResolveExpedition(e, DifficultyParams{RewardPerDrone: 10}, nil)
	if success.Result != expedition.ResultSuccess || success.Reward[resource.Gold] != 60 {
		t.Errorf("expected 4*10*1.5 = 60 gold, got %+v", success)
	}

	loot := []artifact.Definition{{ID: "relic", Rarity: part.Rare}}
	withLoot := ResolveExpedition(e, DifficultyParams{RewardPerDrone: 10, ArtifactPct: 100}, loot)
	if withLoot.ArtifactDefID != "relic" {
		t.Errorf("expected a guaranteed relic, got %+v", withLoot)
	}
	if lost := ResolveExpedition(e, DifficultyParams{FailurePct: 100, ArtifactPct: 100}, loot); lost.ArtifactDefID != "" {
		t.Errorf("a lost swarm brings nothing back")
	}
	if damaged := ResolveExpedition(e, DifficultyParams{PartialPct: 100, ArtifactPct: 100, RewardPerDrone: 10}, loot); damaged.ArtifactDefID != "" {
		t.Errorf("a damaged swarm brings back no relic, got %q", damaged.ArtifactDefID)
	}
}

func TestDrillYieldHardnessAndTorque(t *testing.T) {
	p := DrillParams{YieldPerDamage: 1}
	rock := biome.Biome{Hardness: 0.5}

	soft := DrillYield(p, stats.Stats{Damage: 10}, biome.Biome{}, 1)
	hard := DrillYield(p, stats.Stats{Damage: 10}, rock, 1)
	torqued := DrillYield(p, stats.Stats{Damage: 10, Torque: 100}, rock, 1)

	if soft != 10 || hard != 5 || torqued != 10 {
		t.Fatalf("unexpected yields soft=%v hard=%v torqued=%v", soft, hard, torqued)
	}
}
