// Package rules contains the pure calculation logic for game mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/biome"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/effect"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/skill"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

var (
	// ErrMissingSlot means a slot has no installed part. New games fill every
	// slot, so this is always state corruption.
	ErrMissingSlot = errors.New("slot has no installed part")
	// ErrUnknownPart means state references a part, artifact or skill the
	// catalog does not know.
	ErrUnknownPart = errors.New("unknown catalog reference")
)

// InvariantError reports corrupted state. It is never a player mistake.
type InvariantError struct {
	Err    error
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %v: %s", e.Err, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

func invariant(err error, format string, args ...any) error {
	return &InvariantError{Err: err, Detail: fmt.Sprintf(format, args...)}
}

// Inputs is everything the aggregator reads. Nothing else influences the result.
type Inputs struct {
	Equipped            map[part.Slot]part.Part
	SkillLevels         map[string]int
	Skills              *skill.Registry
	EquippedArtifactIDs []string
	ArtifactInventory   []artifact.Instance
	Artifacts           *artifact.Registry
	Depth               float64
	Biomes              *biome.Table
	Effects             []effect.Active
	Now                 time.Time // decides which timed effects are live
}

// Resolve derives the drill's complete stat profile. The order of the steps
// is fixed:
//
//  1. zero every stat
//  2. sum base stats of all ten installed parts
//  3. add flat skill bonuses
//  4. artifacts: flat effects are added, then percentage effects multiply
//     the summed value, compounding across artifacts
//  5. biome modifiers: penalties scaled by hazard resist, bonuses per
//     installed part carrying the biome's matching tag
//  6. timed effects: percentages summed per stat, then applied once
//  7. clamp
func Resolve(in Inputs) (stats.Stats, error) {
	var out stats.Stats

	for _, slot := range part.Slots {
		p, ok := in.Equipped[slot]
		if !ok {
			return stats.Stats{}, invariant(ErrMissingSlot, "slot %s", slot)
		}
		out = out.Plus(p.BaseStats)
	}

	for id, level := range in.SkillLevels {
		if level <= 0 {
			continue
		}
		if in.Skills == nil {
			return stats.Stats{}, invariant(ErrUnknownPart, "no skill registry for %q", id)
		}
		if _, ok := in.Skills.Get(id); !ok {
			return stats.Stats{}, invariant(ErrUnknownPart, "skill %q", id)
		}
	}
	if in.Skills != nil {
		// registry order keeps float summation stable across calls
		for _, def := range in.Skills.All() {
			level := in.SkillLevels[def.ID]
			if level <= 0 {
				continue
			}
			for _, m := range def.PerLevel {
				out.Add(m.Stat, m.Value*float64(level))
			}
		}
	}

	defs, err := equippedArtifacts(in)
	if err != nil {
		return stats.Stats{}, err
	}
	for _, d := range defs {
		for _, m := range d.Effects {
			if m.Op == stats.OpAdd {
				out.Add(m.Stat, m.Value)
			}
		}
	}
	for _, d := range defs {
		for _, m := range d.Effects {
			if m.Op == stats.OpMul {
				out.Set(m.Stat, out.Get(m.Stat)*(1+m.Value))
			}
		}
	}

	if in.Biomes != nil {
		applyBiome(&out, in.Biomes.ForDepth(in.Depth), in.Equipped)
	}

	var pct stats.Stats
	for _, e := range in.Effects {
		if e.Live(in.Now) {
			pct.Add(e.Stat, e.Pct)
		}
	}
	for _, st := range stats.All() {
		if p := pct.Get(st); p != 0 {
			out.Set(st, out.Get(st)*(1+p))
		}
	}

	clamp(&out)
	return out, nil
}

func equippedArtifacts(in Inputs) ([]artifact.Definition, error) {
	if len(in.EquippedArtifactIDs) == 0 {
		return nil, nil
	}
	owned := make(map[string]artifact.Instance, len(in.ArtifactInventory))
	for _, a := range in.ArtifactInventory {
		owned[a.ID] = a
	}
	defs := make([]artifact.Definition, 0, len(in.EquippedArtifactIDs))
	for _, id := range in.EquippedArtifactIDs {
		inst, ok := owned[id]
		if !ok {
			return nil, invariant(ErrUnknownPart, "equipped artifact %q not owned", id)
		}
		if in.Artifacts == nil {
			return nil, invariant(ErrUnknownPart, "no artifact registry for %q", inst.DefID)
		}
		d, ok := in.Artifacts.Get(inst.DefID)
		if !ok {
			return nil, invariant(ErrUnknownPart, "artifact definition %q", inst.DefID)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

func applyBiome(out *stats.Stats, b biome.Biome, equipped map[part.Slot]part.Part) {
	resist := clampPct(out.HazardResist)
	scale := 1 - resist/100
	for _, m := range b.Penalties {
		applyModifier(out, m, scale)
	}

	if b.MatchingTag == "" {
		return
	}
	matches := 0
	for _, slot := range part.Slots {
		if equipped[slot].HasTag(b.MatchingTag) {
			matches++
		}
	}
	for i := 0; i < matches; i++ {
		for _, m := range b.Bonuses {
			applyModifier(out, m, 1)
		}
	}
}

func applyModifier(out *stats.Stats, m stats.Modifier, scale float64) {
	switch m.Op {
	case stats.OpMul:
		out.Set(m.Stat, out.Get(m.Stat)*(1+m.Value*scale))
	default:
		out.Add(m.Stat, m.Value*scale)
	}
}

func clamp(s *stats.Stats) {
	for _, st := range []stats.Stat{stats.EnergyCost, stats.Cooling, stats.Damage, stats.Speed} {
		if s.Get(st) < 0 {
			s.Set(st, 0)
		}
	}
	s.Torque = clampPct(s.Torque)
	s.HazardResist = clampPct(s.HazardResist)
}

func clampPct(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Catalogs bundles the read-only registries a player state is resolved against.
type Catalogs struct {
	Parts     *part.Catalog
	Skills    *skill.Registry
	Artifacts *artifact.Registry
	Biomes    *biome.Table
}

// EquippedParts looks up the catalog entry of every installed item.
func EquippedParts(s player.State, parts *part.Catalog) (map[part.Slot]part.Part, error) {
	out := make(map[part.Slot]part.Part, len(part.Slots))
	for _, slot := range part.Slots {
		item, ok := s.Equipped[slot]
		if !ok {
			return nil, invariant(ErrMissingSlot, "slot %s", slot)
		}
		p, ok := parts.Get(item.PartID)
		if !ok {
			return nil, invariant(ErrUnknownPart, "part %q in slot %s", item.PartID, slot)
		}
		out[slot] = p
	}
	return out, nil
}

// ResolveState is Resolve over a player state.
func ResolveState(s player.State, c Catalogs, now time.Time) (stats.Stats, error) {
	equipped, err := EquippedParts(s, c.Parts)
	if err != nil {
		return stats.Stats{}, err
	}
	return Resolve(Inputs{
		Equipped:            equipped,
		SkillLevels:         s.SkillLevels,
		Skills:              c.Skills,
		EquippedArtifactIDs: s.EquippedArtifactIDs(),
		ArtifactInventory:   s.Artifacts,
		Artifacts:           c.Artifacts,
		Depth:               s.Depth,
		Biomes:              c.Biomes,
		Effects:             s.Effects,
		Now:                 now,
	})
}
