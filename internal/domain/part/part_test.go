package part

import "testing"

func TestNewCatalogIndexesBySlotAndTier(t *testing.T) {
	cat, err := NewCatalog(
		Part{ID: "bit_2", Slot: SlotBit, Tier: 2},
		Part{ID: "bit_1", Slot: SlotBit, Tier: 1},
		Part{ID: "engine_1", Slot: SlotEngine, Tier: 1},
	)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	bits := cat.ForSlot(SlotBit)
	if len(bits) != 2 || bits[0].ID != "bit_1" || bits[1].ID != "bit_2" {
		t.Fatalf("expected bits ordered by tier, got %+v", bits)
	}

	starter, ok := cat.Starter(SlotEngine)
	if !ok || starter.ID != "engine_1" {
		t.Fatalf("expected engine_1 as starter, got %+v", starter)
	}

	if _, ok := cat.AtTier(SlotBit, 3); ok {
		t.Fatalf("expected no tier 3 bit")
	}
	if cat.Len() != 3 {
		t.Errorf("expected 3 parts, got %d", cat.Len())
	}
}

func TestNewCatalogRejectsBadEntries(t *testing.T) {
	cases := map[string][]Part{
		"duplicate": {{ID: "a", Slot: SlotBit, Tier: 1}, {ID: "a", Slot: SlotBit, Tier: 2}},
		"bad slot":  {{ID: "a", Slot: "wheel", Tier: 1}},
		"bad tier":  {{ID: "a", Slot: SlotBit, Tier: 16}},
		"empty id":  {{Slot: SlotBit, Tier: 1}},
	}
	for name, parts := range cases {
		if _, err := NewCatalog(parts...); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFusionOnly(t *testing.T) {
	if (Part{Tier: 12}).FusionOnly() {
		t.Errorf("tier 12 must be purchasable")
	}
	if !(Part{Tier: 13}).FusionOnly() {
		t.Errorf("tier 13 must be fusion-only")
	}
}

func TestRarityNext(t *testing.T) {
	if next, ok := Rare.Next(); !ok || next != Epic {
		t.Fatalf("Rare.Next() = %v, %v", next, ok)
	}
	if _, ok := Godly.Next(); ok {
		t.Fatalf("Godly has no next rarity")
	}
}

func TestParseSlotAndRarity(t *testing.T) {
	if s, err := ParseSlot("Cargo_Bay"); err != nil || s != SlotCargoBay {
		t.Fatalf("ParseSlot = %q, %v", s, err)
	}
	if r, err := ParseRarity("legendary"); err != nil || r != Legendary {
		t.Fatalf("ParseRarity = %v, %v", r, err)
	}
	if _, err := ParseRarity("mythic"); err == nil {
		t.Fatalf("expected unknown rarity to fail")
	}
}
