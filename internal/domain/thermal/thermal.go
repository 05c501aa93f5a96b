// Package thermal holds the drill's heat state.
// This package is PURE and must NOT import any infrastructure packages.
package thermal

import "time"

// MaxHeat is the saturation point. At MaxHeat the drill is overheated.
const MaxHeat = 100.0

// Phase is the thermal state machine position. There are only two.
type Phase string

const (
	PhaseCool       Phase = "COOL"
	PhaseOverheated Phase = "OVERHEATED"
)

// Grade scores a vent attempt.
type Grade string

const (
	GradePerfect Grade = "PERFECT"
	GradeGood    Grade = "GOOD"
	GradeMiss    Grade = "MISS"
)

// State is persisted with absolute timestamps only.
type State struct {
	Heat        float64   `json:"heat"`
	Combo       int       `json:"combo"`
	PulsePhase  float64   `json:"pulse_phase"` // [0,1)
	VentReadyAt time.Time `json:"vent_ready_at"`
}

// Phase derives the state machine position from heat.
func (s State) Phase() Phase {
	if s.Heat >= MaxHeat {
		return PhaseOverheated
	}
	return PhaseCool
}

func (s State) Overheated() bool {
	return s.Phase() == PhaseOverheated
}

// CoolingDown reports whether a vent attempt at now falls inside the cooldown.
func (s State) CoolingDown(now time.Time) bool {
	return now.Before(s.VentReadyAt)
}

// Clamp bounds heat to [0, MaxHeat].
func Clamp(heat float64) float64 {
	switch {
	case heat < 0:
		return 0
	case heat > MaxHeat:
		return MaxHeat
	}
	return heat
}
