// Package gamedata loads the static game content: parts, artifacts, skills,
// biomes, fusion recipes, city buffs, blueprints and licenses.
//
// Content is authored in YAML with free-form stat names. Load converts it into
// the closed domain types and rejects anything the engine would not understand,
// so a bad data file fails at boot instead of mid-game.
package gamedata

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/biome"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/effect"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/skill"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Data is the loaded, validated content.
type Data struct {
	Parts      *part.Catalog
	Artifacts  *artifact.Registry
	Skills     *skill.Registry
	Biomes     *biome.Table
	Fusion     map[string]part.FusionRecipe
	Buffs      map[string]effect.CityBuff
	Blueprints map[string]part.Blueprint
	Licenses   map[string]expedition.License
}

// Catalogs returns the registries the stat aggregator resolves against.
func (d *Data) Catalogs() rules.Catalogs {
	return rules.Catalogs{Parts: d.Parts, Skills: d.Skills, Artifacts: d.Artifacts, Biomes: d.Biomes}
}

type rawModifier struct {
	Stat  string  `yaml:"stat"`
	Op    string  `yaml:"op"`
	Value float64 `yaml:"value"`
}

type rawPart struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	Slot          string             `yaml:"slot"`
	Tier          int                `yaml:"tier"`
	Rarity        string             `yaml:"rarity"`
	BaseStats     map[string]float64 `yaml:"base_stats"`
	Cost          resource.Bundle    `yaml:"cost"`
	CraftDuration time.Duration      `yaml:"craft_duration"`
	Blueprint     string             `yaml:"blueprint"`
	Tags          []string           `yaml:"tags"`
}

type rawArtifact struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Rarity  string        `yaml:"rarity"`
	Visual  string        `yaml:"visual"`
	Effects []rawModifier `yaml:"effects"`
}

type rawSkill struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	MaxLevel int             `yaml:"max_level"`
	PerLevel []rawModifier   `yaml:"per_level"`
	BaseCost resource.Bundle `yaml:"base_cost"`
}

type rawBiome struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	MinDepth     float64       `yaml:"min_depth"`
	Ore          string        `yaml:"ore"`
	Hardness     float64       `yaml:"hardness"`
	HazardDamage float64       `yaml:"hazard_damage"`
	Penalties    []rawModifier `yaml:"penalties"`
	MatchingTag  string        `yaml:"matching_tag"`
	Bonuses      []rawModifier `yaml:"bonuses"`
}

type rawFusion struct {
	ID         string          `yaml:"id"`
	Slot       string          `yaml:"slot"`
	TargetTier int             `yaml:"target_tier"`
	Catalyst   resource.Bundle `yaml:"catalyst"`
	Condition  struct {
		Kind      string  `yaml:"kind"`
		Threshold float64 `yaml:"threshold"`
	} `yaml:"condition"`
}

type rawBuff struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	Stat     string          `yaml:"stat"`
	Pct      float64         `yaml:"pct"`
	Duration time.Duration   `yaml:"duration"`
	Cost     resource.Bundle `yaml:"cost"`
}

type rawUnlock struct {
	ID   string          `yaml:"id"`
	Name string          `yaml:"name"`
	Cost resource.Bundle `yaml:"cost"`
}

type rawCatalog struct {
	Parts      []rawPart     `yaml:"parts"`
	Fusion     []rawFusion   `yaml:"fusion"`
	Artifacts  []rawArtifact `yaml:"artifacts"`
	Skills     []rawSkill    `yaml:"skills"`
	Biomes     []rawBiome    `yaml:"biomes"`
	Buffs      []rawBuff     `yaml:"buffs"`
	Blueprints []rawUnlock   `yaml:"blueprints"`
	Licenses   []rawUnlock   `yaml:"licenses"`
}

// Default loads the embedded catalog.
func Default() (*Data, error) {
	return Parse(catalogYAML)
}

// Load reads a catalog file, or the embedded one when path is empty.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates catalog YAML.
func Parse(raw []byte) (*Data, error) {
	var rc rawCatalog
	if err := yaml.Unmarshal(raw, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	d := &Data{
		Fusion:     make(map[string]part.FusionRecipe, len(rc.Fusion)),
		Buffs:      make(map[string]effect.CityBuff, len(rc.Buffs)),
		Blueprints: make(map[string]part.Blueprint, len(rc.Blueprints)),
		Licenses:   make(map[string]expedition.License, len(rc.Licenses)),
	}

	for _, b := range rc.Blueprints {
		d.Blueprints[b.ID] = part.Blueprint{ID: b.ID, Name: b.Name, Cost: b.Cost}
	}
	for _, l := range rc.Licenses {
		d.Licenses[l.ID] = expedition.License{ID: l.ID, Name: l.Name, Cost: l.Cost}
	}

	parts, err := convertParts(rc.Parts, d.Blueprints)
	if err != nil {
		return nil, err
	}
	if d.Parts, err = part.NewCatalog(parts...); err != nil {
		return nil, fmt.Errorf("parts: %w", err)
	}
	for _, slot := range part.Slots {
		for tier := part.MinTier; tier <= part.MaxTier; tier++ {
			if _, ok := d.Parts.AtTier(slot, tier); !ok {
				return nil, fmt.Errorf("parts: slot %s has no tier %d", slot, tier)
			}
		}
	}

	for _, rf := range rc.Fusion {
		r, err := convertFusion(rf)
		if err != nil {
			return nil, err
		}
		if _, dup := d.Fusion[r.ID]; dup {
			return nil, fmt.Errorf("fusion: duplicate recipe %q", r.ID)
		}
		d.Fusion[r.ID] = r
	}

	arts := make([]artifact.Definition, 0, len(rc.Artifacts))
	for _, ra := range rc.Artifacts {
		rarity, err := part.ParseRarity(ra.Rarity)
		if err != nil {
			return nil, fmt.Errorf("artifact %q: %w", ra.ID, err)
		}
		effects, err := convertModifiers(ra.Effects)
		if err != nil {
			return nil, fmt.Errorf("artifact %q: %w", ra.ID, err)
		}
		arts = append(arts, artifact.Definition{ID: ra.ID, Name: ra.Name, Rarity: rarity, Effects: effects, Visual: ra.Visual})
	}
	if d.Artifacts, err = artifact.NewRegistry(arts...); err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}

	skills := make([]skill.Definition, 0, len(rc.Skills))
	for _, rs := range rc.Skills {
		per, err := convertModifiers(rs.PerLevel)
		if err != nil {
			return nil, fmt.Errorf("skill %q: %w", rs.ID, err)
		}
		skills = append(skills, skill.Definition{ID: rs.ID, Name: rs.Name, MaxLevel: rs.MaxLevel, PerLevel: per, BaseCost: rs.BaseCost})
	}
	if d.Skills, err = skill.NewRegistry(skills...); err != nil {
		return nil, fmt.Errorf("skills: %w", err)
	}

	biomes := make([]biome.Biome, 0, len(rc.Biomes))
	for _, rb := range rc.Biomes {
		b, err := convertBiome(rb)
		if err != nil {
			return nil, err
		}
		biomes = append(biomes, b)
	}
	if d.Biomes, err = biome.NewTable(biomes...); err != nil {
		return nil, fmt.Errorf("biomes: %w", err)
	}

	for _, rb := range rc.Buffs {
		st, err := stats.ParseStat(rb.Stat)
		if err != nil {
			return nil, fmt.Errorf("buff %q: %w", rb.ID, err)
		}
		if rb.Duration <= 0 {
			return nil, fmt.Errorf("buff %q: duration must be positive", rb.ID)
		}
		d.Buffs[rb.ID] = effect.CityBuff{ID: rb.ID, Name: rb.Name, Stat: st, Pct: rb.Pct, Duration: rb.Duration, Cost: rb.Cost}
	}

	return d, nil
}

func convertParts(raw []rawPart, blueprints map[string]part.Blueprint) ([]part.Part, error) {
	out := make([]part.Part, 0, len(raw))
	for _, rp := range raw {
		slot, err := part.ParseSlot(rp.Slot)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", rp.ID, err)
		}
		rarity, err := part.ParseRarity(rp.Rarity)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", rp.ID, err)
		}
		base, err := stats.FromMap(rp.BaseStats)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", rp.ID, err)
		}
		if err := checkResources(rp.Cost); err != nil {
			return nil, fmt.Errorf("part %q: %w", rp.ID, err)
		}
		if rp.Blueprint != "" {
			if _, ok := blueprints[rp.Blueprint]; !ok {
				return nil, fmt.Errorf("part %q: unknown blueprint %q", rp.ID, rp.Blueprint)
			}
		}
		out = append(out, part.Part{
			ID:            rp.ID,
			Name:          rp.Name,
			Slot:          slot,
			Tier:          rp.Tier,
			Rarity:        rarity,
			BaseStats:     base,
			Cost:          rp.Cost,
			CraftDuration: rp.CraftDuration,
			Blueprint:     rp.Blueprint,
			Tags:          rp.Tags,
		})
	}
	return out, nil
}

func convertFusion(rf rawFusion) (part.FusionRecipe, error) {
	slot, err := part.ParseSlot(rf.Slot)
	if err != nil {
		return part.FusionRecipe{}, fmt.Errorf("fusion %q: %w", rf.ID, err)
	}
	if rf.TargetTier < part.FusionTier || rf.TargetTier > part.MaxTier {
		return part.FusionRecipe{}, fmt.Errorf("fusion %q: target tier %d is not fusion-only", rf.ID, rf.TargetTier)
	}
	kind := part.ConditionKind(rf.Condition.Kind)
	switch kind {
	case part.ConditionDepth, part.ConditionZeroHeat, part.ConditionZeroDamage:
	default:
		return part.FusionRecipe{}, fmt.Errorf("fusion %q: unknown condition %q", rf.ID, rf.Condition.Kind)
	}
	return part.FusionRecipe{
		ID:         rf.ID,
		Slot:       slot,
		TargetTier: rf.TargetTier,
		Catalyst:   rf.Catalyst,
		Condition:  part.FusionCondition{Kind: kind, Threshold: rf.Condition.Threshold},
	}, nil
}

func convertBiome(rb rawBiome) (biome.Biome, error) {
	ore, err := resource.Parse(rb.Ore)
	if err != nil {
		return biome.Biome{}, fmt.Errorf("biome %q: %w", rb.ID, err)
	}
	pen, err := convertModifiers(rb.Penalties)
	if err != nil {
		return biome.Biome{}, fmt.Errorf("biome %q: %w", rb.ID, err)
	}
	bon, err := convertModifiers(rb.Bonuses)
	if err != nil {
		return biome.Biome{}, fmt.Errorf("biome %q: %w", rb.ID, err)
	}
	return biome.Biome{
		ID:           rb.ID,
		Name:         rb.Name,
		MinDepth:     rb.MinDepth,
		Ore:          ore,
		Hardness:     rb.Hardness,
		HazardDamage: rb.HazardDamage,
		Penalties:    pen,
		MatchingTag:  rb.MatchingTag,
		Bonuses:      bon,
	}, nil
}

func convertModifiers(raw []rawModifier) ([]stats.Modifier, error) {
	out := make([]stats.Modifier, 0, len(raw))
	for _, rm := range raw {
		st, err := stats.ParseStat(rm.Stat)
		if err != nil {
			return nil, err
		}
		op, err := stats.ParseOp(rm.Op)
		if err != nil {
			return nil, err
		}
		out = append(out, stats.Modifier{Stat: st, Op: op, Value: rm.Value})
	}
	return out, nil
}

func checkResources(b resource.Bundle) error {
	for k := range b {
		if _, err := resource.Parse(string(k)); err != nil {
			return err
		}
	}
	return nil
}
