// Package artifact defines relic definitions and the player's owned relics.
// This package is PURE and must NOT import any infrastructure packages.
package artifact

import (
	"fmt"
	"sort"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

const (
	// MaxEquipped is the number of quick slots for artifacts.
	MaxEquipped = 4
	// TransmuteInputs is the number of same-rarity artifacts consumed by one transmutation.
	TransmuteInputs = 3
)

// Definition describes an artifact kind.
type Definition struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Rarity  part.Rarity      `json:"rarity"`
	Effects []stats.Modifier `json:"effects"`
	Visual  string           `json:"visual"` // render tag, opaque to the engine
}

// Instance is an artifact the player owns.
type Instance struct {
	ID         string    `json:"id"`
	DefID      string    `json:"def_id"`
	Identified bool      `json:"identified"`
	Equipped   bool      `json:"equipped"`
	FoundAt    time.Time `json:"found_at"`
}

// Registry holds every artifact definition.
type Registry struct {
	byID     map[string]Definition
	byRarity map[part.Rarity][]Definition
}

// NewRegistry indexes definitions, rejecting duplicate ids.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		byID:     make(map[string]Definition, len(defs)),
		byRarity: make(map[part.Rarity][]Definition),
	}
	for _, d := range defs {
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate artifact id %q", d.ID)
		}
		r.byID[d.ID] = d
		r.byRarity[d.Rarity] = append(r.byRarity[d.Rarity], d)
	}
	for rarity := range r.byRarity {
		list := r.byRarity[rarity]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return r, nil
}

// Get returns the definition for an id.
func (r *Registry) Get(id string) (Definition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// OfRarity returns every definition of a rarity ordered by id.
func (r *Registry) OfRarity(rarity part.Rarity) []Definition {
	return r.byRarity[rarity]
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.byID)
}
