package player

import (
	"fmt"
	"testing"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/crafting"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
)

func starterCatalog(t *testing.T) *part.Catalog {
	t.Helper()
	var parts []part.Part
	for _, slot := range part.Slots {
		parts = append(parts, part.Part{ID: string(slot) + "_1", Slot: slot, Tier: 1})
	}
	cat, err := part.NewCatalog(parts...)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return cat
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestNewFillsEverySlot(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s, err := New("p1", starterCatalog(t), now, sequentialIDs())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if len(s.Equipped) != len(part.Slots) {
		t.Fatalf("expected %d equipped slots, got %d", len(part.Slots), len(s.Equipped))
	}
	for _, slot := range part.Slots {
		if s.Equipped[slot].PartID != string(slot)+"_1" {
			t.Errorf("slot %s holds %q", slot, s.Equipped[slot].PartID)
		}
	}
	if !s.InCity() || s.Integrity != MaxIntegrity {
		t.Errorf("new game should start in the city with a full hull")
	}
}

func TestNewRejectsIncompleteCatalog(t *testing.T) {
	cat, _ := part.NewCatalog(part.Part{ID: "bit_1", Slot: part.SlotBit, Tier: 1})
	if _, err := New("p1", cat, time.Now(), sequentialIDs()); err == nil {
		t.Fatalf("expected error when a slot has no starter part")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s, err := New("p1", starterCatalog(t), time.Now(), sequentialIDs())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Resources[resource.Clay] = 10
	s.Jobs = []crafting.Job{{ID: "j", Cost: resource.Bundle{resource.Clay: 5}}}
	s.Licenses = []string{"basic"}

	c := s.Clone()
	c.Resources[resource.Clay] = 0
	c.Jobs[0].Cost[resource.Clay] = 0
	c.Equipped[part.SlotBit] = part.Item{ID: "other"}
	c.Licenses[0] = "changed"

	if s.Resources[resource.Clay] != 10 || s.Jobs[0].Cost[resource.Clay] != 5 {
		t.Errorf("clone shares resource maps")
	}
	if s.Equipped[part.SlotBit].ID == "other" || s.Licenses[0] != "basic" {
		t.Errorf("clone shares equipment or licenses")
	}
}
