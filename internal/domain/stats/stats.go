// Package stats defines the closed set of drill performance stats.
// This package is PURE and must NOT import any infrastructure packages.
//
// Stats is a fixed record: every stat the engine knows about is a field, and a
// stat that no source mentions is simply zero. Free-form stat names only exist
// at the data-loading boundary, where ParseStat rejects anything unknown.
package stats

import (
	"fmt"
	"strings"
)

// Stat identifies one field of the Stats record.
type Stat int

const (
	Damage Stat = iota
	Speed
	Cooling
	EnergyOutput
	EnergyCost
	CargoCapacity
	CritChance
	Luck
	ClickMultiplier
	VentSpeed
	Torque // percent of biome hardness ignored
	Defense
	HazardResist // percent of hazard penalties ignored
	Regen

	numStats
)

var statNames = [numStats]string{
	Damage:          "damage",
	Speed:           "speed",
	Cooling:         "cooling",
	EnergyOutput:    "energy_output",
	EnergyCost:      "energy_cost",
	CargoCapacity:   "cargo_capacity",
	CritChance:      "crit_chance",
	Luck:            "luck",
	ClickMultiplier: "click_multiplier",
	VentSpeed:       "vent_speed",
	Torque:          "torque",
	Defense:         "defense",
	HazardResist:    "hazard_resist",
	Regen:           "regen",
}

// All lists every stat in declaration order.
func All() []Stat {
	out := make([]Stat, numStats)
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

func (s Stat) String() string {
	if s < 0 || s >= numStats {
		return fmt.Sprintf("stat(%d)", int(s))
	}
	return statNames[s]
}

// Valid reports whether s names a field of Stats.
func (s Stat) Valid() bool {
	return s >= 0 && s < numStats
}

// ParseStat resolves a data-file stat name.
func ParseStat(name string) (Stat, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, known := range statNames {
		if n == known {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

func (s Stat) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stat %d", int(s))
	}
	return []byte(statNames[s]), nil
}

func (s *Stat) UnmarshalText(b []byte) error {
	parsed, err := ParseStat(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Stats is the fully resolved numeric profile of a drill.
type Stats struct {
	Damage          float64 `json:"damage"`
	Speed           float64 `json:"speed"`
	Cooling         float64 `json:"cooling"`
	EnergyOutput    float64 `json:"energy_output"`
	EnergyCost      float64 `json:"energy_cost"`
	CargoCapacity   float64 `json:"cargo_capacity"`
	CritChance      float64 `json:"crit_chance"`
	Luck            float64 `json:"luck"`
	ClickMultiplier float64 `json:"click_multiplier"`
	VentSpeed       float64 `json:"vent_speed"`
	Torque          float64 `json:"torque"`
	Defense         float64 `json:"defense"`
	HazardResist    float64 `json:"hazard_resist"`
	Regen           float64 `json:"regen"`
}

func (s *Stats) field(stat Stat) *float64 {
	switch stat {
	case Damage:
		return &s.Damage
	case Speed:
		return &s.Speed
	case Cooling:
		return &s.Cooling
	case EnergyOutput:
		return &s.EnergyOutput
	case EnergyCost:
		return &s.EnergyCost
	case CargoCapacity:
		return &s.CargoCapacity
	case CritChance:
		return &s.CritChance
	case Luck:
		return &s.Luck
	case ClickMultiplier:
		return &s.ClickMultiplier
	case VentSpeed:
		return &s.VentSpeed
	case Torque:
		return &s.Torque
	case Defense:
		return &s.Defense
	case HazardResist:
		return &s.HazardResist
	case Regen:
		return &s.Regen
	}
	panic(fmt.Sprintf("stats: unknown stat %d", int(stat)))
}

// Get returns the value of one stat.
func (s Stats) Get(stat Stat) float64 {
	return *s.field(stat)
}

// Set overwrites one stat.
func (s *Stats) Set(stat Stat, v float64) {
	*s.field(stat) = v
}

// Add increases one stat by v.
func (s *Stats) Add(stat Stat, v float64) {
	*s.field(stat) += v
}

// Plus returns the field-wise sum of s and o.
func (s Stats) Plus(o Stats) Stats {
	for _, st := range All() {
		s.Add(st, o.Get(st))
	}
	return s
}

// FromMap builds a Stats record from a sparse name->value map.
func FromMap(m map[string]float64) (Stats, error) {
	var out Stats
	for name, v := range m {
		st, err := ParseStat(name)
		if err != nil {
			return Stats{}, err
		}
		out.Add(st, v)
	}
	return out, nil
}

// NonZero returns the sparse view of s, keyed by stat name.
func (s Stats) NonZero() map[string]float64 {
	out := make(map[string]float64)
	for _, st := range All() {
		if v := s.Get(st); v != 0 {
			out[st.String()] = v
		}
	}
	return out
}

// Op says how a modifier combines with the running total.
type Op string

const (
	OpAdd Op = "add" // flat amount
	OpMul Op = "mul" // fractional bonus: 0.5 means +50%
)

// Modifier is one sparse contribution from a modifier source.
type Modifier struct {
	Stat  Stat    `json:"stat"`
	Op    Op      `json:"op"`
	Value float64 `json:"value"`
}

// Add builds a flat modifier.
func Add(stat Stat, v float64) Modifier {
	return Modifier{Stat: stat, Op: OpAdd, Value: v}
}

// Mul builds a fractional modifier.
func Mul(stat Stat, frac float64) Modifier {
	return Modifier{Stat: stat, Op: OpMul, Value: frac}
}

// ParseOp validates a data-file operation name. Empty means add.
func ParseOp(s string) (Op, error) {
	switch Op(strings.ToLower(strings.TrimSpace(s))) {
	case "", OpAdd:
		return OpAdd, nil
	case OpMul:
		return OpMul, nil
	}
	return "", fmt.Errorf("unknown modifier op %q", s)
}
