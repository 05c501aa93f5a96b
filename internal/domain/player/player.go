// Package player defines the single explicit game state the engine transitions.
// This package is PURE and must NOT import any infrastructure packages.
//
// State is plain data. Every timer inside it is an absolute timestamp, so a
// serialized State can be restored after any amount of downtime.
package player

import (
	"fmt"
	"slices"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/crafting"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/effect"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/thermal"
)

// MaxIntegrity is a fully repaired hull.
const MaxIntegrity = 100.0

// Location is where the drill currently is.
type Location string

const (
	LocationCity Location = "city"
	LocationMine Location = "mine"
)

// Progress tracks the counters fusion recipes unlock on.
type Progress struct {
	MaxDepth          float64 `json:"max_depth"`
	ZeroHeatSeconds   float64 `json:"zero_heat_seconds"`
	ZeroDamageSeconds float64 `json:"zero_damage_seconds"`
}

// Totals are lifetime counters shown in status output.
type Totals struct {
	Mined       float64 `json:"mined"`
	Strikes     int     `json:"strikes"`
	Vents       int     `json:"vents"`
	Overheats   int     `json:"overheats"`
	Crafted     int     `json:"crafted"`
	Expeditions int     `json:"expeditions"`
}

// State is the whole game for one player.
type State struct {
	PlayerID    string                  `json:"player_id"`
	Resources   resource.Bundle         `json:"resources"`
	Equipped    map[part.Slot]part.Item `json:"equipped"`
	Inventory   []part.Item             `json:"inventory"`
	Artifacts   []artifact.Instance     `json:"artifacts"`
	SkillLevels map[string]int          `json:"skill_levels"`
	Jobs        []crafting.Job          `json:"jobs"`
	Expeditions []expedition.Expedition `json:"expeditions"`
	Thermal     thermal.State           `json:"thermal"`
	Integrity   float64                 `json:"integrity"`
	Breached    bool                    `json:"breached,omitempty"` // set when integrity hit 0, cleared by a repair
	Depth       float64                 `json:"depth"`
	Progress    Progress                `json:"progress"`
	Location    Location                `json:"location"`
	Drilling    bool                    `json:"drilling"`
	Drones      int                     `json:"drones"` // idle, not on expedition
	Effects     []effect.Active         `json:"effects"`
	Blueprints  []string                `json:"blueprints"`
	Licenses    []string                `json:"licenses"`
	Totals      Totals                  `json:"totals"`
	SavedAt     time.Time               `json:"saved_at"`
}

// New seeds a fresh game: every slot holds its tier-1 part, the drill is
// parked in the city with a full hull.
func New(playerID string, catalog *part.Catalog, now time.Time, newID func() string) (State, error) {
	s := State{
		PlayerID:    playerID,
		Resources:   resource.Bundle{},
		Equipped:    make(map[part.Slot]part.Item, len(part.Slots)),
		SkillLevels: map[string]int{},
		Integrity:   MaxIntegrity,
		Location:    LocationCity,
		SavedAt:     now,
	}
	for _, slot := range part.Slots {
		p, ok := catalog.Starter(slot)
		if !ok {
			return State{}, fmt.Errorf("catalog has no tier-1 part for slot %s", slot)
		}
		s.Equipped[slot] = part.Item{ID: newID(), PartID: p.ID, Slot: slot, AcquiredAt: now}
	}
	return s, nil
}

// Clone returns a deep copy. Transitions mutate the clone and hand it back,
// leaving the caller's State untouched on rejection.
func (s State) Clone() State {
	c := s
	c.Resources = s.Resources.Clone()
	c.Equipped = make(map[part.Slot]part.Item, len(s.Equipped))
	for k, v := range s.Equipped {
		c.Equipped[k] = v
	}
	c.Inventory = slices.Clone(s.Inventory)
	c.Artifacts = slices.Clone(s.Artifacts)
	c.SkillLevels = make(map[string]int, len(s.SkillLevels))
	for k, v := range s.SkillLevels {
		c.SkillLevels[k] = v
	}
	c.Jobs = make([]crafting.Job, len(s.Jobs))
	for i, j := range s.Jobs {
		j.Cost = j.Cost.Clone()
		c.Jobs[i] = j
	}
	c.Expeditions = make([]expedition.Expedition, len(s.Expeditions))
	for i, e := range s.Expeditions {
		e.Log = slices.Clone(e.Log)
		c.Expeditions[i] = e
	}
	c.Effects = slices.Clone(s.Effects)
	c.Blueprints = slices.Clone(s.Blueprints)
	c.Licenses = slices.Clone(s.Licenses)
	return c
}

// InCity reports whether city services are available.
func (s State) InCity() bool {
	return s.Location == LocationCity
}

func (s State) HasBlueprint(id string) bool {
	return slices.Contains(s.Blueprints, id)
}

func (s State) HasLicense(id string) bool {
	return slices.Contains(s.Licenses, id)
}

// FindJob returns the index of a crafting job or -1.
func (s State) FindJob(id string) int {
	return slices.IndexFunc(s.Jobs, func(j crafting.Job) bool { return j.ID == id })
}

// FindExpedition returns the index of an expedition or -1.
func (s State) FindExpedition(id string) int {
	return slices.IndexFunc(s.Expeditions, func(e expedition.Expedition) bool { return e.ID == id })
}

// FindItem returns the index of an inventory item or -1.
func (s State) FindItem(id string) int {
	return slices.IndexFunc(s.Inventory, func(it part.Item) bool { return it.ID == id })
}

// FindArtifact returns the index of an owned artifact or -1.
func (s State) FindArtifact(id string) int {
	return slices.IndexFunc(s.Artifacts, func(a artifact.Instance) bool { return a.ID == id })
}

// EquippedArtifactIDs lists the ids of artifacts in quick slots.
func (s State) EquippedArtifactIDs() []string {
	var ids []string
	for _, a := range s.Artifacts {
		if a.Equipped {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// DronesAway counts drones committed to running expeditions.
func (s State) DronesAway() int {
	n := 0
	for _, e := range s.Expeditions {
		n += e.DroneCount
	}
	return n
}
