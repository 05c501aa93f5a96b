// Package skill defines upgradeable pilot skills and their per-level bonuses.
// This package is PURE and must NOT import any infrastructure packages.
package skill

import (
	"fmt"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

// Definition is a skill tree node. Each level grants PerLevel once more.
type Definition struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	MaxLevel int              `json:"max_level"`
	PerLevel []stats.Modifier `json:"per_level"` // flat modifiers only
	BaseCost resource.Bundle  `json:"base_cost"` // cost of level 1
}

// CostFor returns the cost of raising the skill to level, growing
// geometrically by growth per level.
func (d Definition) CostFor(level int, growth float64) resource.Bundle {
	f := 1.0
	for i := 1; i < level; i++ {
		f *= growth
	}
	return d.BaseCost.Scale(f).Floor()
}

// Registry holds every skill definition.
type Registry struct {
	byID  map[string]Definition
	order []string
}

// NewRegistry indexes skills. Skills may only grant flat bonuses.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{byID: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate skill id %q", d.ID)
		}
		for _, m := range d.PerLevel {
			if m.Op != stats.OpAdd {
				return nil, fmt.Errorf("skill %q: only additive bonuses are allowed", d.ID)
			}
		}
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

func (r *Registry) Get(id string) (Definition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// All returns definitions in load order.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
