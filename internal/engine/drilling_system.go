package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/thermal"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
)

// DrillReport summarises one tick of drilling.
type DrillReport struct {
	Biome      string        `json:"biome"`
	Ore        resource.Kind `json:"ore"`
	Income     float64       `json:"income"`
	DepthGain  float64       `json:"depth_gain"`
	HullDamage float64       `json:"hull_damage"`
}

// StrikeResult is the payload of a manual strike.
type StrikeResult struct {
	Ore      resource.Kind `json:"ore"`
	Amount   float64       `json:"amount"`
	Crit     bool          `json:"crit"`
	HeatRise float64       `json:"heat_rise"`
}

// BiomePayload announces a new stratum.
type BiomePayload struct {
	BiomeID string        `json:"biome_id"`
	Name    string        `json:"name"`
	Ore     resource.Kind `json:"ore"`
}

// LocationPayload records movement between the city and the mine.
type LocationPayload struct {
	Location player.Location `json:"location"`
	Drilling bool            `json:"drilling"`
}

// DrillingSystem turns resolved stats into depth, ore and hull wear.
type DrillingSystem struct {
	env
}

func NewDrillingSystem(v env) *DrillingSystem {
	return &DrillingSystem{env: v}
}

// Advance applies dt seconds of drilling to the tick's working copy.
// wasOverheated is the thermal phase at the start of the tick: an overheated
// drill produces exactly nothing.
func (ds *DrillingSystem) Advance(s *player.State, st stats.Stats, dt float64, now time.Time, wasOverheated bool, heatDamage float64) DrillReport {
	b := ds.data.Biomes.ForDepth(s.Depth)
	report := DrillReport{Biome: b.ID, Ore: b.Ore}

	active := s.Drilling && s.Location == player.LocationMine
	if active && !wasOverheated {
		report.DepthGain = rules.DepthGain(ds.tuning.Drill, st, dt)
		report.Income = credit(s, b.Ore, rules.DrillYield(ds.tuning.Drill, st, b, dt), st.CargoCapacity)

		s.Depth += report.DepthGain
		if s.Depth > s.Progress.MaxDepth {
			s.Progress.MaxDepth = s.Depth
		}
		if nb := ds.data.Biomes.ForDepth(s.Depth); nb.ID != b.ID {
			ds.emit(*s, events.EventTypeBiomeEntered, nb.ID, now, BiomePayload{BiomeID: nb.ID, Name: nb.Name, Ore: nb.Ore})
			ds.logger.Info(fmt.Sprintf("[DRILL] %s entered %s at %.0fm", s.PlayerID, nb.Name, s.Depth))
		}
	}

	if active {
		report.HullDamage = rules.HazardDamage(ds.tuning.Drill, st, b, dt) + heatDamage
	}
	regen := st.Regen * dt
	if s.Breached {
		// A breached hull does not knit back together on its own.
		regen = 0
	}
	s.Integrity = math.Min(player.MaxIntegrity, s.Integrity-report.HullDamage+regen)

	if active {
		if s.Thermal.Heat == 0 {
			s.Progress.ZeroHeatSeconds += dt
		} else {
			s.Progress.ZeroHeatSeconds = 0
		}
		if report.HullDamage == 0 {
			s.Progress.ZeroDamageSeconds += dt
		} else {
			s.Progress.ZeroDamageSeconds = 0
		}
	}

	if s.Integrity <= 0 {
		s.Integrity = 0
		if s.Breached {
			return report
		}
		s.Breached = true
		s.Drilling = false
		s.Location = player.LocationCity
		ds.emit(*s, events.EventTypeHullBreached, "", now, LocationPayload{Location: s.Location})
		ds.logger.Error(fmt.Sprintf("[DRILL] %s hull breached at %.0fm, hauled back to the city", s.PlayerID, s.Depth))
	}
	return report
}

// credit adds mined ore up to the cargo capacity for that ore.
func credit(s *player.State, ore resource.Kind, amount, capacity float64) float64 {
	room := capacity - s.Resources[ore]
	if amount <= 0 || room <= 0 {
		return 0
	}
	if amount > room {
		amount = room
	}
	s.Resources[ore] += amount
	s.Totals.Mined += amount
	return amount
}

// Strike is a manual hit on the rock face.
func (ds *DrillingSystem) Strike(s player.State, now time.Time, critRoll float64) (player.State, StrikeResult, error) {
	if s.Location != player.LocationMine {
		return s, StrikeResult{}, ErrNotInMine
	}
	if s.Thermal.Overheated() {
		return s, StrikeResult{}, ErrOverheated
	}
	st, err := ds.resolve(s, now)
	if err != nil {
		return s, StrikeResult{}, err
	}

	next := s.Clone()
	b := ds.data.Biomes.ForDepth(next.Depth)
	res := StrikeResult{Ore: b.Ore, Crit: rules.IsCrit(st, critRoll)}
	res.Amount = credit(&next, b.Ore, rules.StrikeYield(ds.tuning.Drill, st, b, res.Crit), st.CargoCapacity)

	before := next.Thermal.Heat
	next.Thermal.Heat = thermal.Clamp(before + ds.tuning.Heat.ClickHeat)
	res.HeatRise = next.Thermal.Heat - before
	next.Totals.Strikes++

	ds.emit(next, events.EventTypeStrike, "", now, res)
	if next.Thermal.Overheated() {
		next.Totals.Overheats++
		ds.emit(next, events.EventTypeOverheated, "", now, ThermalPayload{Phase: thermal.PhaseOverheated, Heat: next.Thermal.Heat})
	}
	return next, res, nil
}

// StartDrilling moves the drill into the shaft and starts the motor.
func (ds *DrillingSystem) StartDrilling(s player.State, now time.Time) (player.State, LocationPayload, error) {
	if s.Breached || s.Integrity <= 0 {
		return s, LocationPayload{}, ErrHullBreached
	}
	if s.Drilling {
		return s, LocationPayload{}, fmt.Errorf("%w: already drilling", ErrNothingToDo)
	}
	next := s.Clone()
	next.Location = player.LocationMine
	next.Drilling = true
	res := LocationPayload{Location: next.Location, Drilling: true}
	ds.emit(next, events.EventTypeDrillStarted, "", now, res)
	ds.logger.Info(fmt.Sprintf("[DRILL] %s started drilling at %.0fm", next.PlayerID, next.Depth))
	return next, res, nil
}

// StopDrilling idles the motor but stays in the shaft.
func (ds *DrillingSystem) StopDrilling(s player.State, now time.Time) (player.State, LocationPayload, error) {
	if !s.Drilling {
		return s, LocationPayload{}, fmt.Errorf("%w: not drilling", ErrNothingToDo)
	}
	next := s.Clone()
	next.Drilling = false
	res := LocationPayload{Location: next.Location}
	ds.emit(next, events.EventTypeDrillStopped, "", now, res)
	return next, res, nil
}

// ReturnToCity surfaces the drill. The shaft keeps its depth.
func (ds *DrillingSystem) ReturnToCity(s player.State, now time.Time) (player.State, LocationPayload, error) {
	if s.InCity() {
		return s, LocationPayload{}, fmt.Errorf("%w: already in the city", ErrNothingToDo)
	}
	next := s.Clone()
	next.Location = player.LocationCity
	next.Drilling = false
	res := LocationPayload{Location: next.Location}
	ds.emit(next, events.EventTypeReturnedToCity, "", now, res)
	ds.logger.Info(fmt.Sprintf("[DRILL] %s returned to the city from %.0fm", next.PlayerID, next.Depth))
	return next, res, nil
}
