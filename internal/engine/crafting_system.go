package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/crafting"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
)

// CraftCollected is the payload of a collected job.
type CraftCollected struct {
	JobID string    `json:"job_id"`
	Item  part.Item `json:"item"`
}

// CraftCancelled is the payload of a cancelled job.
type CraftCancelled struct {
	JobID  string          `json:"job_id"`
	Refund resource.Bundle `json:"refund"`
}

// CraftingSystem runs the timed build queue. Job status is never stored, it
// is read from the completion timestamp each time.
type CraftingSystem struct {
	env
}

func NewCraftingSystem(v env) *CraftingSystem {
	return &CraftingSystem{env: v}
}

// Start validates and queues a craft. Resources are deducted in the same
// transition that inserts the job.
func (cs *CraftingSystem) Start(s player.State, partID string, slot part.Slot, now time.Time) (player.State, crafting.Job, error) {
	p, ok := cs.data.Parts.Get(partID)
	if !ok {
		return s, crafting.Job{}, fmt.Errorf("%w: part %q", ErrUnknownEntry, partID)
	}
	if p.Slot != slot {
		return s, crafting.Job{}, fmt.Errorf("%w: %s is a %s part, not %s", ErrSlotMismatch, p.ID, p.Slot, slot)
	}
	if p.FusionOnly() {
		return s, crafting.Job{}, fmt.Errorf("%w: %s is tier %d", ErrFusionOnly, p.ID, p.Tier)
	}
	if p.Blueprint != "" && !s.HasBlueprint(p.Blueprint) {
		return s, crafting.Job{}, fmt.Errorf("%w: %s needs %s", ErrBlueprintLocked, p.ID, p.Blueprint)
	}
	if limit := cs.tuning.Crafting.QueueSize; limit > 0 && len(s.Jobs) >= limit {
		return s, crafting.Job{}, fmt.Errorf("%w: %d jobs queued", ErrQueueFull, len(s.Jobs))
	}

	next := s.Clone()
	if err := spend(&next, p.Cost); err != nil {
		return s, crafting.Job{}, err
	}
	job := crafting.NewJob(cs.newID(), p, now)
	next.Jobs = append(next.Jobs, job)

	cs.emit(next, events.EventTypeCraftStarted, job.ID, now, job)
	cs.logger.Info(fmt.Sprintf("[CRAFT] %s queued %s, ready at %s", next.PlayerID, p.Name, job.CompletionTime.Format(time.RFC3339)))
	return next, job, nil
}

// Collect turns a finished job into one inventory item. The job is removed in
// the same transition, so a repeated collect finds nothing and changes nothing.
func (cs *CraftingSystem) Collect(s player.State, jobID string, now time.Time) (player.State, CraftCollected, error) {
	idx := s.FindJob(jobID)
	if idx < 0 {
		return s, CraftCollected{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	job := s.Jobs[idx]
	if !job.Ready(now) {
		return s, CraftCollected{}, fmt.Errorf("%w: %s left", ErrJobNotReady, job.Remaining(now).Round(time.Second))
	}
	if _, ok := cs.data.Parts.Get(job.PartID); !ok {
		return s, CraftCollected{}, fmt.Errorf("%w: job %s references part %q", ErrUnknownEntry, job.ID, job.PartID)
	}

	next := s.Clone()
	next.Jobs = append(next.Jobs[:idx], next.Jobs[idx+1:]...)
	item := part.Item{ID: cs.newID(), PartID: job.PartID, Slot: job.Slot, AcquiredAt: now}
	next.Inventory = append(next.Inventory, item)
	next.Totals.Crafted++

	res := CraftCollected{JobID: job.ID, Item: item}
	cs.emit(next, events.EventTypeCraftCollected, job.ID, now, res)
	return next, res, nil
}

// Cancel drops an in-progress job and refunds part of its cost. A job that
// has already finished must be collected instead.
func (cs *CraftingSystem) Cancel(s player.State, jobID string, now time.Time) (player.State, CraftCancelled, error) {
	idx := s.FindJob(jobID)
	if idx < 0 {
		return s, CraftCancelled{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	job := s.Jobs[idx]
	if job.Ready(now) {
		return s, CraftCancelled{}, fmt.Errorf("%w: collect %s instead", ErrJobAlreadyReady, job.ID)
	}

	next := s.Clone()
	next.Jobs = append(next.Jobs[:idx], next.Jobs[idx+1:]...)
	refund := refundOf(job.Cost, cs.tuning.Crafting.CancelRefundPct)
	next.Resources.Add(refund)

	res := CraftCancelled{JobID: job.ID, Refund: refund}
	cs.emit(next, events.EventTypeCraftCancelled, job.ID, now, res)
	cs.logger.Info(fmt.Sprintf("[CRAFT] %s cancelled %s, refunded %s", next.PlayerID, job.ID, refund))
	return next, res, nil
}

// refundOf returns pct percent of cost, rounded down per resource.
func refundOf(cost resource.Bundle, pct float64) resource.Bundle {
	out := resource.Bundle{}
	for k, v := range cost {
		if amt := math.Floor(v * pct / 100); amt > 0 {
			out[k] = amt
		}
	}
	return out
}
