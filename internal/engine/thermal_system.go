package engine

import (
	"fmt"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/thermal"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
)

// VentResult is the payload of a scored vent attempt.
type VentResult struct {
	Grade      thermal.Grade `json:"grade"`
	Phase      float64       `json:"phase"`
	Reduction  float64       `json:"reduction"`
	HeatBefore float64       `json:"heat_before"`
	HeatAfter  float64       `json:"heat_after"`
	Combo      int           `json:"combo"`
	ReadyAt    time.Time     `json:"ready_at"`
}

// ThermalPayload marks a COOL/OVERHEATED transition.
type ThermalPayload struct {
	Phase thermal.Phase `json:"phase"`
	Heat  float64       `json:"heat"`
}

// ThermalReport summarises one tick of the heat loop.
type ThermalReport struct {
	HeatRate   float64 `json:"heat_rate"`
	HeatDamage float64 `json:"heat_damage"`
	Overheated bool    `json:"overheated"`
}

// ThermalSystem runs the heat state machine and the vent mini-game.
type ThermalSystem struct {
	env
}

func NewThermalSystem(v env) *ThermalSystem {
	return &ThermalSystem{env: v}
}

// Advance moves the pulse and, while drilling, the heat. s is the tick's
// working copy and is modified in place.
func (ts *ThermalSystem) Advance(s *player.State, st stats.Stats, equipped map[part.Slot]part.Part, dt float64, now time.Time) ThermalReport {
	th := &s.Thermal
	th.PulsePhase = rules.AdvancePulse(th.PulsePhase, dt, ts.tuning.Vent.PulseFrequency)

	var report ThermalReport
	if s.Drilling && s.Location == player.LocationMine {
		wasOver := th.Overheated()
		report.HeatRate = rules.HeatRate(ts.tuning.Heat, st, equipped[part.SlotBit].Tier, equipped[part.SlotEngine].Tier)
		th.Heat = rules.AdvanceHeat(th.Heat, report.HeatRate, dt)
		report.HeatDamage = rules.HeatDamage(ts.tuning.Heat, th.Heat, dt)

		if !wasOver && th.Overheated() {
			s.Totals.Overheats++
			ts.emit(*s, events.EventTypeOverheated, "", now, ThermalPayload{Phase: thermal.PhaseOverheated, Heat: th.Heat})
			ts.logger.Warn(fmt.Sprintf("[THERMAL] %s overheated at depth %.0f, drilling output clamped", s.PlayerID, s.Depth))
		}
	}
	report.Overheated = th.Overheated()
	return report
}

// AttemptVent scores a vent at the current pulse phase. During the cooldown
// the attempt is a no-op: nothing is queued and neither heat nor combo move.
func (ts *ThermalSystem) AttemptVent(s player.State, now time.Time) (player.State, VentResult, error) {
	if s.Thermal.CoolingDown(now) {
		return s, VentResult{}, fmt.Errorf("%w: ready in %s", ErrVentCooldown, s.Thermal.VentReadyAt.Sub(now).Round(time.Millisecond))
	}
	st, err := ts.resolve(s, now)
	if err != nil {
		return s, VentResult{}, err
	}

	next := s.Clone()
	th := &next.Thermal
	wasOver := th.Overheated()
	grade := rules.GradeVent(ts.tuning.Vent, th.PulsePhase)
	res := VentResult{
		Grade:      grade,
		Phase:      th.PulsePhase,
		Reduction:  rules.VentReduction(ts.tuning.Vent, grade, th.Combo),
		HeatBefore: th.Heat,
	}
	th.Heat = thermal.Clamp(th.Heat - res.Reduction)
	th.Combo = rules.NextCombo(grade, th.Combo)
	th.VentReadyAt = now.Add(rules.VentCooldown(ts.tuning.Vent, st.VentSpeed))
	next.Totals.Vents++

	res.HeatAfter = th.Heat
	res.Combo = th.Combo
	res.ReadyAt = th.VentReadyAt

	ts.emit(next, events.EventTypeVentAttempt, "", now, res)
	if wasOver && !th.Overheated() {
		ts.emit(next, events.EventTypeCooled, "", now, ThermalPayload{Phase: thermal.PhaseCool, Heat: th.Heat})
	}
	ts.logger.Info(fmt.Sprintf("[THERMAL] Vent %s at phase %.2f: heat %.1f -> %.1f (combo %d)", grade, res.Phase, res.HeatBefore, res.HeatAfter, res.Combo))
	return next, res, nil
}
