// Package crafting models timed part-build jobs.
// This package is PURE and must NOT import any infrastructure packages.
//
// A job never stores whether it is finished. Status is derived from the
// absolute completion time on every read, so a job started before the
// process was suspended resolves correctly the moment it is looked at again.
package crafting

import (
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
)

// Status of a job at a given instant.
type Status string

const (
	StatusInProgress     Status = "in_progress"
	StatusReadyToCollect Status = "ready_to_collect"
)

// Job is one queued craft.
type Job struct {
	ID             string          `json:"id"`
	Slot           part.Slot       `json:"slot"`
	PartID         string          `json:"part_id"`
	StartTime      time.Time       `json:"start_time"`
	CompletionTime time.Time       `json:"completion_time"`
	Cost           resource.Bundle `json:"cost"` // what was deducted at start
}

// NewJob schedules a craft starting at now.
func NewJob(id string, p part.Part, now time.Time) Job {
	return Job{
		ID:             id,
		Slot:           p.Slot,
		PartID:         p.ID,
		StartTime:      now,
		CompletionTime: now.Add(p.CraftDuration),
		Cost:           p.Cost.Clone(),
	}
}

// Status is a pure function of now and the completion time.
func (j Job) Status(now time.Time) Status {
	if !now.Before(j.CompletionTime) {
		return StatusReadyToCollect
	}
	return StatusInProgress
}

// Ready reports whether the job can be collected at now.
func (j Job) Ready(now time.Time) bool {
	return j.Status(now) == StatusReadyToCollect
}

// Remaining returns the time left, never negative.
func (j Job) Remaining(now time.Time) time.Duration {
	if d := j.CompletionTime.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Progress returns completion in [0,1].
func (j Job) Progress(now time.Time) float64 {
	total := j.CompletionTime.Sub(j.StartTime)
	if total <= 0 || j.Ready(now) {
		return 1
	}
	done := now.Sub(j.StartTime)
	if done <= 0 {
		return 0
	}
	return float64(done) / float64(total)
}
