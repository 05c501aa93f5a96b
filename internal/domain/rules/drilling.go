package rules

import (
	"math"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/biome"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

// DrillParams tunes continuous drilling and manual strikes.
type DrillParams struct {
	DepthPerSpeed  float64 `yaml:"depth_per_speed" json:"depth_per_speed"`   // metres per speed point per second
	YieldPerDamage float64 `yaml:"yield_per_damage" json:"yield_per_damage"` // ore per damage point per second
	CritMultiplier float64 `yaml:"crit_multiplier" json:"crit_multiplier"`
	DefenseFactor  float64 `yaml:"defense_factor" json:"defense_factor"` // hazard damage absorbed per defense point
}

// hardnessFactor is the fraction of yield that survives the rock.
func hardnessFactor(b biome.Biome, s stats.Stats) float64 {
	ignored := clampPct(s.Torque) / 100
	loss := b.Hardness * (1 - ignored)
	return math.Max(0, 1-loss)
}

// DrillYield is ore mined over dt seconds of drilling.
func DrillYield(p DrillParams, s stats.Stats, b biome.Biome, dt float64) float64 {
	return s.Damage * p.YieldPerDamage * (1 + s.Luck/100) * hardnessFactor(b, s) * dt
}

// DepthGain is metres descended over dt seconds.
func DepthGain(p DrillParams, s stats.Stats, dt float64) float64 {
	return s.Speed * dt * p.DepthPerSpeed
}

// StrikeYield is the ore from one manual strike.
func StrikeYield(p DrillParams, s stats.Stats, b biome.Biome, crit bool) float64 {
	y := s.Damage * s.ClickMultiplier * hardnessFactor(b, s)
	if crit {
		y *= p.CritMultiplier
	}
	return y
}

// IsCrit turns a roll in [0,100) into a crit against the crit chance.
func IsCrit(s stats.Stats, roll float64) bool {
	return roll < s.CritChance
}

// HazardDamage is hull integrity lost to the biome over dt seconds.
func HazardDamage(p DrillParams, s stats.Stats, b biome.Biome, dt float64) float64 {
	raw := b.HazardDamage*(1-clampPct(s.HazardResist)/100) - s.Defense*p.DefenseFactor
	return math.Max(0, raw) * dt
}
