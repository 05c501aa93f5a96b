// Package part defines equipment slots, catalog parts and owned part instances.
// This package is PURE and must NOT import any infrastructure packages.
package part

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

// Slot is one of the ten fixed equipment categories on the drill.
type Slot string

const (
	SlotBit      Slot = "bit"
	SlotEngine   Slot = "engine"
	SlotCooling  Slot = "cooling"
	SlotHull     Slot = "hull"
	SlotLogic    Slot = "logic"
	SlotControl  Slot = "control"
	SlotGearbox  Slot = "gearbox"
	SlotPower    Slot = "power"
	SlotArmor    Slot = "armor"
	SlotCargoBay Slot = "cargo_bay"
)

// Slots lists every slot. A valid drill has exactly one part in each.
var Slots = []Slot{
	SlotBit, SlotEngine, SlotCooling, SlotHull, SlotLogic,
	SlotControl, SlotGearbox, SlotPower, SlotArmor, SlotCargoBay,
}

// ParseSlot validates a slot name.
func ParseSlot(s string) (Slot, error) {
	n := Slot(strings.ToLower(strings.TrimSpace(s)))
	for _, slot := range Slots {
		if n == slot {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown slot %q", s)
}

// Rarity is shared by parts and artifacts.
type Rarity int

const (
	Common Rarity = iota + 1
	Uncommon
	Rare
	Epic
	Legendary
	Godly
)

var rarityNames = map[Rarity]string{
	Common:    "common",
	Uncommon:  "uncommon",
	Rare:      "rare",
	Epic:      "epic",
	Legendary: "legendary",
	Godly:     "godly",
}

func (r Rarity) String() string {
	if n, ok := rarityNames[r]; ok {
		return n
	}
	return fmt.Sprintf("rarity(%d)", int(r))
}

// Next returns the following rarity tier and false when r is already Godly.
func (r Rarity) Next() (Rarity, bool) {
	if r >= Godly || r < Common {
		return r, false
	}
	return r + 1, true
}

// ParseRarity validates a rarity name.
func ParseRarity(s string) (Rarity, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for r, name := range rarityNames {
		if name == n {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rarity %q", s)
}

func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rarity) UnmarshalText(b []byte) error {
	parsed, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

const (
	MinTier = 1
	MaxTier = 15
	// FusionTier is the first tier that can only be obtained by fusion.
	FusionTier = 13
)

// Part is an immutable catalog entry.
type Part struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Slot          Slot            `json:"slot"`
	Tier          int             `json:"tier"`
	Rarity        Rarity          `json:"rarity"`
	BaseStats     stats.Stats     `json:"base_stats"`
	Cost          resource.Bundle `json:"cost"`
	CraftDuration time.Duration   `json:"craft_duration"`
	Blueprint     string          `json:"blueprint,omitempty"` // required blueprint id
	Tags          []string        `json:"tags,omitempty"`      // biome matching tags
}

// FusionOnly reports whether the part can only enter a slot through fusion.
func (p Part) FusionOnly() bool {
	return p.Tier >= FusionTier
}

// HasTag reports whether the part carries a matching tag.
func (p Part) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Item is an owned part instance, either installed or sitting in inventory.
type Item struct {
	ID         string    `json:"id"`
	PartID     string    `json:"part_id"`
	Slot       Slot      `json:"slot"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Catalog is the read-only registry of every part, indexed by id and slot.
type Catalog struct {
	byID   map[string]Part
	bySlot map[Slot][]Part
}

// NewCatalog indexes parts. Duplicate ids, unknown slots and out-of-range
// tiers are rejected.
func NewCatalog(parts ...Part) (*Catalog, error) {
	c := &Catalog{
		byID:   make(map[string]Part, len(parts)),
		bySlot: make(map[Slot][]Part),
	}
	for _, p := range parts {
		if p.ID == "" {
			return nil, fmt.Errorf("part with empty id")
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate part id %q", p.ID)
		}
		if _, err := ParseSlot(string(p.Slot)); err != nil {
			return nil, fmt.Errorf("part %q: %w", p.ID, err)
		}
		if p.Tier < MinTier || p.Tier > MaxTier {
			return nil, fmt.Errorf("part %q: tier %d out of range", p.ID, p.Tier)
		}
		c.byID[p.ID] = p
		c.bySlot[p.Slot] = append(c.bySlot[p.Slot], p)
	}
	for slot := range c.bySlot {
		list := c.bySlot[slot]
		sort.Slice(list, func(i, j int) bool { return list[i].Tier < list[j].Tier })
	}
	return c, nil
}

// Get returns the part definition for an id.
func (c *Catalog) Get(id string) (Part, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// ForSlot returns every part of a slot ordered by tier.
func (c *Catalog) ForSlot(slot Slot) []Part {
	return c.bySlot[slot]
}

// AtTier returns the part of a slot at a given tier.
func (c *Catalog) AtTier(slot Slot, tier int) (Part, bool) {
	for _, p := range c.bySlot[slot] {
		if p.Tier == tier {
			return p, true
		}
	}
	return Part{}, false
}

// Starter returns the tier-1 part of a slot, used to seed a new game.
func (c *Catalog) Starter(slot Slot) (Part, bool) {
	return c.AtTier(slot, MinTier)
}

// Len returns the number of parts in the catalog.
func (c *Catalog) Len() int {
	return len(c.byID)
}
