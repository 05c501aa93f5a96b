// Package biome describes the strata the drill passes through on its way down.
// This package is PURE and must NOT import any infrastructure packages.
package biome

import (
	"fmt"
	"sort"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

// Biome is one depth band with its own ore, hardness and hazard.
type Biome struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	MinDepth float64       `json:"min_depth"`
	Ore      resource.Kind `json:"ore"`
	// Hardness is the fraction of drilling yield lost to the rock (0..1).
	// Torque ignores a percentage of it.
	Hardness float64 `json:"hardness"`
	// HazardDamage is hull damage per second before hazard resist and defense.
	HazardDamage float64 `json:"hazard_damage"`

	// Penalties are scaled down by hazard resist before they are applied.
	Penalties []stats.Modifier `json:"penalties,omitempty"`

	// Bonuses apply once for every installed part carrying MatchingTag.
	MatchingTag string           `json:"matching_tag,omitempty"`
	Bonuses     []stats.Modifier `json:"bonuses,omitempty"`
}

// Table is the ordered list of biomes, shallowest first.
type Table struct {
	biomes []Biome
}

// NewTable sorts biomes by depth. The first biome must start at depth zero so
// every depth resolves to a biome.
func NewTable(biomes ...Biome) (*Table, error) {
	if len(biomes) == 0 {
		return nil, fmt.Errorf("biome table is empty")
	}
	list := append([]Biome(nil), biomes...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].MinDepth < list[j].MinDepth })
	if list[0].MinDepth != 0 {
		return nil, fmt.Errorf("shallowest biome %q starts at %.0f, want 0", list[0].ID, list[0].MinDepth)
	}
	seen := make(map[string]bool, len(list))
	for _, b := range list {
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate biome id %q", b.ID)
		}
		seen[b.ID] = true
	}
	return &Table{biomes: list}, nil
}

// ForDepth returns the deepest biome whose MinDepth does not exceed depth.
func (t *Table) ForDepth(depth float64) Biome {
	current := t.biomes[0]
	for _, b := range t.biomes {
		if depth < b.MinDepth {
			break
		}
		current = b
	}
	return current
}

// All returns the biomes shallowest first.
func (t *Table) All() []Biome {
	return append([]Biome(nil), t.biomes...)
}
