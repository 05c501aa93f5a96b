// Package resource defines mined materials and resource bundles.
// This package is PURE and must NOT import any infrastructure packages.
package resource

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a material held in the player's balances.
type Kind string

const (
	Clay        Kind = "clay"
	Stone       Kind = "stone"
	Copper      Kind = "copper"
	Iron        Kind = "iron"
	Silver      Kind = "silver"
	Gold        Kind = "gold"
	Titanium    Kind = "titanium"
	Uranium     Kind = "uranium"
	NanoSwarm   Kind = "nano_swarm"
	AncientTech Kind = "ancient_tech"
	Rubies      Kind = "rubies"
	Emeralds    Kind = "emeralds"
	Diamonds    Kind = "diamonds"
	Ice         Kind = "ice" // coolant
	Scrap       Kind = "scrap"
)

// Known lists every material in display order.
var Known = []Kind{
	Clay, Stone, Copper, Iron, Silver, Gold, Titanium, Uranium,
	NanoSwarm, AncientTech, Rubies, Emeralds, Diamonds, Ice, Scrap,
}

// Parse validates a material name.
func Parse(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Known {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown resource %q", s)
}

// Bundle is a sparse set of material amounts. A missing key means zero.
type Bundle map[Kind]float64

// Clone returns an independent copy.
func (b Bundle) Clone() Bundle {
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Covers reports whether b holds at least every amount in cost.
func (b Bundle) Covers(cost Bundle) bool {
	for k, v := range cost {
		if v <= 0 {
			continue
		}
		if b[k] < v {
			return false
		}
	}
	return true
}

// Missing returns the shortfall of b against cost.
func (b Bundle) Missing(cost Bundle) Bundle {
	out := Bundle{}
	for k, v := range cost {
		if short := v - b[k]; short > 0 {
			out[k] = short
		}
	}
	return out
}

// Add adds every amount in other to b in place.
func (b Bundle) Add(other Bundle) {
	for k, v := range other {
		b[k] += v
	}
}

// Sub subtracts cost from b in place. Callers must check Covers first.
func (b Bundle) Sub(cost Bundle) {
	for k, v := range cost {
		b[k] -= v
	}
}

// Scale returns a new bundle with every amount multiplied by f.
func (b Bundle) Scale(f float64) Bundle {
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = v * f
	}
	return out
}

// Floor returns a new bundle with every amount rounded down to a whole unit.
func (b Bundle) Floor() Bundle {
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = float64(int64(v))
	}
	return out
}

// IsZero reports whether no amount is positive.
func (b Bundle) IsZero() bool {
	for _, v := range b {
		if v > 0 {
			return false
		}
	}
	return true
}

// String renders the bundle as "{clay: 50, iron: 2}" with stable ordering.
func (b Bundle) String() string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %g", k, b[Kind(k)]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
