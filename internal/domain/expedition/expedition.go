// Package expedition models drone-swarm missions.
// This package is PURE and must NOT import any infrastructure packages.
package expedition

import (
	"fmt"
	"strings"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
)

// Difficulty selects the risk table row.
type Difficulty string

const (
	Easy    Difficulty = "easy"
	Medium  Difficulty = "medium"
	Hard    Difficulty = "hard"
	Extreme Difficulty = "extreme"
)

// Difficulties lists every difficulty, safest first.
var Difficulties = []Difficulty{Easy, Medium, Hard, Extreme}

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Expedition is a launched mission. Only launch parameters are stored; the
// outcome is rolled from Seed when the rewards are collected.
type Expedition struct {
	ID         string        `json:"id"`
	Difficulty Difficulty    `json:"difficulty"`
	DroneCount int           `json:"drone_count"`
	Target     resource.Kind `json:"target"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`
	Seed       uint64        `json:"seed"`
	Luck       float64       `json:"luck"` // resolved luck at launch
	Log        []string      `json:"log,omitempty"`
}

// ReturnsAt is the absolute time the swarm is back.
func (e Expedition) ReturnsAt() time.Time {
	return e.StartTime.Add(e.Duration)
}

// Returned reports whether now - start >= duration.
func (e Expedition) Returned(now time.Time) bool {
	return now.Sub(e.StartTime) >= e.Duration
}

// Remaining returns the time until return, never negative.
func (e Expedition) Remaining(now time.Time) time.Duration {
	if d := e.ReturnsAt().Sub(now); d > 0 {
		return d
	}
	return 0
}

// Result is the band the risk roll landed in.
type Result string

const (
	ResultSuccess Result = "success"
	ResultPartial Result = "partial"
	ResultLost    Result = "lost"
)

// Outcome is what collecting an expedition pays out.
type Outcome struct {
	ExpeditionID   string          `json:"expedition_id"`
	Result         Result          `json:"result"`
	Roll           float64         `json:"roll"` // 0..100
	Reward         resource.Bundle `json:"reward"`
	DronesLost     int             `json:"drones_lost"`
	DronesReturned int             `json:"drones_returned"`
	ArtifactDefID  string          `json:"artifact_def_id,omitempty"`
	Log            []string        `json:"log"`
}

// License unlocks a difficulty.
type License struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Cost resource.Bundle `json:"cost"`
}
