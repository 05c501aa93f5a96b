package engine

import (
	"fmt"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
)

// ExpeditionCollected is the payload of collected rewards.
type ExpeditionCollected struct {
	Outcome  expedition.Outcome  `json:"outcome"`
	Artifact *artifact.Instance `json:"artifact,omitempty"`
}

// ExpeditionSystem launches drone swarms and settles them on collection.
type ExpeditionSystem struct {
	env
}

func NewExpeditionSystem(v env) *ExpeditionSystem {
	return &ExpeditionSystem{env: v}
}

// Launch commits drones and pays the launch cost. seed fixes the outcome
// roll now; the roll itself only happens in Collect.
func (es *ExpeditionSystem) Launch(s player.State, diff expedition.Difficulty, drones int, target resource.Kind, seed uint64, now time.Time) (player.State, expedition.Expedition, error) {
	params, ok := es.tuning.Expeditions[diff]
	if !ok {
		return s, expedition.Expedition{}, fmt.Errorf("%w: difficulty %q", ErrUnknownEntry, diff)
	}
	if _, err := resource.Parse(string(target)); err != nil {
		return s, expedition.Expedition{}, fmt.Errorf("%w: %v", ErrUnknownEntry, err)
	}
	if params.License != "" && !s.HasLicense(params.License) {
		return s, expedition.Expedition{}, fmt.Errorf("%w: %s expeditions need %s", ErrLicenseRequired, diff, params.License)
	}
	if drones <= 0 {
		return s, expedition.Expedition{}, fmt.Errorf("%w: drone count %d", ErrInvalidAmount, drones)
	}
	if drones > s.Drones {
		return s, expedition.Expedition{}, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughDrones, drones, s.Drones)
	}
	st, err := es.resolve(s, now)
	if err != nil {
		return s, expedition.Expedition{}, err
	}

	next := s.Clone()
	if err := spend(&next, rules.LaunchCost(params, drones)); err != nil {
		return s, expedition.Expedition{}, err
	}
	next.Drones -= drones
	e := expedition.Expedition{
		ID:         es.newID(),
		Difficulty: diff,
		DroneCount: drones,
		Target:     target,
		StartTime:  now,
		Duration:   params.Duration,
		Seed:       seed,
		Luck:       st.Luck,
		Log:        []string{fmt.Sprintf("%d drones launched towards %s deposits", drones, target)},
	}
	next.Expeditions = append(next.Expeditions, e)

	es.emit(next, events.EventTypeExpeditionLaunched, e.ID, now, e)
	es.logger.Info(fmt.Sprintf("[EXPEDITION] %s launched %s swarm of %d, back at %s", next.PlayerID, diff, drones, e.ReturnsAt().Format(time.RFC3339)))
	return next, e, nil
}

// Collect settles a returned expedition and removes it. The outcome depends
// only on what was stored at launch.
func (es *ExpeditionSystem) Collect(s player.State, id string, now time.Time) (player.State, ExpeditionCollected, error) {
	idx := s.FindExpedition(id)
	if idx < 0 {
		return s, ExpeditionCollected{}, fmt.Errorf("%w: %s", ErrExpeditionNotFound, id)
	}
	e := s.Expeditions[idx]
	if !e.Returned(now) {
		return s, ExpeditionCollected{}, fmt.Errorf("%w: %s left", ErrExpeditionNotReturned, e.Remaining(now).Round(time.Second))
	}
	params, ok := es.tuning.Expeditions[e.Difficulty]
	if !ok {
		return s, ExpeditionCollected{}, fmt.Errorf("%w: difficulty %q", ErrUnknownEntry, e.Difficulty)
	}

	out := rules.ResolveExpedition(e, params, es.data.Artifacts.OfRarity(params.ArtifactRarity))
	next := s.Clone()
	next.Expeditions = append(next.Expeditions[:idx], next.Expeditions[idx+1:]...)
	next.Resources.Add(out.Reward)
	next.Drones += out.DronesReturned
	next.Totals.Expeditions++

	res := ExpeditionCollected{Outcome: out}
	if out.ArtifactDefID != "" {
		inst := artifact.Instance{ID: es.newID(), DefID: out.ArtifactDefID, FoundAt: now}
		next.Artifacts = append(next.Artifacts, inst)
		res.Artifact = &inst
		es.emit(next, events.EventTypeArtifactFound, inst.ID, now, inst)
	}

	es.emit(next, events.EventTypeExpeditionCollected, e.ID, now, res)
	es.logger.Info(fmt.Sprintf("[EXPEDITION] %s collected %s: %s, reward %s, %d drones lost",
		next.PlayerID, e.ID, out.Result, out.Reward, out.DronesLost))
	return next, res, nil
}
