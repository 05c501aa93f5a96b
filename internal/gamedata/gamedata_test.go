package gamedata

import (
	"strings"
	"testing"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

func TestDefaultCatalogCoversEverySlotAndTier(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	if d.Parts.Len() != len(part.Slots)*part.MaxTier {
		t.Fatalf("expected %d parts, got %d", len(part.Slots)*part.MaxTier, d.Parts.Len())
	}
	for _, slot := range part.Slots {
		for tier := part.FusionTier; tier <= part.MaxTier; tier++ {
			found := false
			for _, r := range d.Fusion {
				if r.Slot == slot && r.TargetTier == tier {
					found = true
				}
			}
			if !found {
				t.Errorf("no fusion recipe reaches %s tier %d", slot, tier)
			}
		}
	}
}

func TestStarterBitMatchesBaseline(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	bit, ok := d.Parts.Starter(part.SlotBit)
	if !ok {
		t.Fatalf("no starter bit")
	}
	if bit.BaseStats.Damage != 1 {
		t.Errorf("starter bit damage = %v, want 1", bit.BaseStats.Damage)
	}
	if bit.Cost[resource.Clay] != 50 {
		t.Errorf("starter bit cost = %v", bit.Cost)
	}
}

func TestArtifactEffectsParsed(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	ember, ok := d.Artifacts.Get("ember_core")
	if !ok {
		t.Fatalf("ember_core missing")
	}
	if ember.Effects[0] != stats.Mul(stats.Damage, 0.5) {
		t.Errorf("unexpected ember effect %+v", ember.Effects[0])
	}
	if ember.Rarity != part.Rare {
		t.Errorf("unexpected rarity %v", ember.Rarity)
	}
}

func TestParseRejectsUnknownStat(t *testing.T) {
	raw := strings.Replace(string(catalogYAML), "{damage: 1.0}", "{dmg: 1.0}", 1)
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatalf("expected unknown stat name to be rejected")
	}
}

func TestParseRejectsMissingTier(t *testing.T) {
	raw := strings.Replace(string(catalogYAML), "    tier: 7\n", "    tier: 6\n", 1)
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatalf("expected a gap in the tier ladder to be rejected")
	}
}
