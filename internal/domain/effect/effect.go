// Package effect holds timed buffs bought in the city.
// This package is PURE and must NOT import any infrastructure packages.
package effect

import (
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
)

// CityBuff is a purchasable timed effect from the bar or service counter.
type CityBuff struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Stat     stats.Stat      `json:"stat"`
	Pct      float64         `json:"pct"` // 0.1 means +10%
	Duration time.Duration   `json:"duration"`
	Cost     resource.Bundle `json:"cost"`
}

// Active is a bought buff with an absolute expiry.
type Active struct {
	ID        string     `json:"id"`
	BuffID    string     `json:"buff_id"`
	Stat      stats.Stat `json:"stat"`
	Pct       float64    `json:"pct"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Live reports whether the effect still applies at now.
func (a Active) Live(now time.Time) bool {
	return now.Before(a.ExpiresAt)
}

// Prune drops expired effects, keeping order.
func Prune(list []Active, now time.Time) []Active {
	out := list[:0:0]
	for _, a := range list {
		if a.Live(now) {
			out = append(out, a)
		}
	}
	return out
}
