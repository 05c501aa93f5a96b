package rules

import (
	"math"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/thermal"
)

// HeatParams tunes heat gain and heat damage.
type HeatParams struct {
	BaseRate      float64 `yaml:"base_rate" json:"base_rate"`           // heat/s with no modifiers
	PerTier       float64 `yaml:"per_tier" json:"per_tier"`             // heat/s per bit+engine tier
	EnergyFactor  float64 `yaml:"energy_factor" json:"energy_factor"`   // heat/s per energy cost
	CoolingFactor float64 `yaml:"cooling_factor" json:"cooling_factor"` // heat/s removed per cooling
	ClickHeat     float64 `yaml:"click_heat" json:"click_heat"`         // heat per manual strike
	// Above DamageThreshold the hull loses DamagePerSec integrity.
	DamageThreshold float64 `yaml:"damage_threshold" json:"damage_threshold"`
	DamagePerSec    float64 `yaml:"damage_per_sec" json:"damage_per_sec"`
}

// HeatRate is the heat gained per second of drilling. It is never negative:
// cooling slows heating but does not vent.
func HeatRate(p HeatParams, s stats.Stats, bitTier, engineTier int) float64 {
	rate := p.BaseRate +
		p.PerTier*float64(bitTier+engineTier) +
		p.EnergyFactor*s.EnergyCost -
		p.CoolingFactor*s.Cooling
	return math.Max(0, rate)
}

// AdvanceHeat applies dt seconds of drilling and clamps to [0,100].
func AdvanceHeat(heat, rate, dt float64) float64 {
	return thermal.Clamp(heat + rate*dt)
}

// HeatDamage is hull integrity lost over dt at the given heat.
func HeatDamage(p HeatParams, heat, dt float64) float64 {
	if heat <= p.DamageThreshold {
		return 0
	}
	return p.DamagePerSec * dt
}

// VentParams tunes the vent timing mini-game.
type VentParams struct {
	PulseFrequency  float64       `yaml:"pulse_frequency" json:"pulse_frequency"` // cycles per second
	TargetPhase     float64       `yaml:"target_phase" json:"target_phase"`       // [0,1)
	PerfectWindow   float64       `yaml:"perfect_window" json:"perfect_window"`   // max phase distance
	GoodWindow      float64       `yaml:"good_window" json:"good_window"`
	PerfectFraction float64       `yaml:"perfect_fraction" json:"perfect_fraction"` // of MaxHeat
	GoodFraction    float64       `yaml:"good_fraction" json:"good_fraction"`
	ComboStep       float64       `yaml:"combo_step" json:"combo_step"` // extra reduction per combo
	BaseCooldown    time.Duration `yaml:"base_cooldown" json:"base_cooldown"`
}

// AdvancePulse moves the oscillating pulse dt seconds forward. The pulse runs
// whether or not the drill is working.
func AdvancePulse(phase, dt, frequency float64) float64 {
	next := math.Mod(phase+dt*frequency, 1)
	if next < 0 {
		next++
	}
	return next
}

// PhaseDistance is the wrapped distance between two phases in [0,0.5].
func PhaseDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	d = math.Mod(d, 1)
	return math.Min(d, 1-d)
}

// GradeVent scores an attempt made at the given pulse phase.
func GradeVent(p VentParams, phase float64) thermal.Grade {
	d := PhaseDistance(phase, p.TargetPhase)
	switch {
	case d <= p.PerfectWindow:
		return thermal.GradePerfect
	case d <= p.GoodWindow:
		return thermal.GradeGood
	}
	return thermal.GradeMiss
}

// VentReduction is the heat removed by a graded attempt. The combo held before
// the attempt multiplies the base fraction without a cap.
func VentReduction(p VentParams, g thermal.Grade, combo int) float64 {
	var frac float64
	switch g {
	case thermal.GradePerfect:
		frac = p.PerfectFraction
	case thermal.GradeGood:
		frac = p.GoodFraction
	default:
		return 0
	}
	return frac * thermal.MaxHeat * (1 + p.ComboStep*float64(combo))
}

// NextCombo advances the combo counter. MISS resets it.
func NextCombo(g thermal.Grade, combo int) int {
	if g == thermal.GradeMiss {
		return 0
	}
	return combo + 1
}

// VentCooldown shortens the base cooldown by the vent speed percentage.
func VentCooldown(p VentParams, ventSpeed float64) time.Duration {
	if ventSpeed < 0 {
		ventSpeed = 0
	}
	return time.Duration(float64(p.BaseCooldown) / (1 + ventSpeed/100))
}
