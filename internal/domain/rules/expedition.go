package rules

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
)

// DifficultyParams is one row of the expedition risk table.
type DifficultyParams struct {
	Duration              time.Duration   `yaml:"duration" json:"duration"`
	FailurePct            float64         `yaml:"failure_pct" json:"failure_pct"` // chance of total loss
	PartialPct            float64         `yaml:"partial_pct" json:"partial_pct"` // chance of partial loss
	CostPerDrone          resource.Bundle `yaml:"cost_per_drone" json:"cost_per_drone"`
	RewardPerDrone        float64         `yaml:"reward_per_drone" json:"reward_per_drone"`
	PartialRewardFraction float64         `yaml:"partial_reward_fraction" json:"partial_reward_fraction"`
	PartialDroneLoss      float64         `yaml:"partial_drone_loss" json:"partial_drone_loss"` // fraction of drones lost
	License               string          `yaml:"license" json:"license"`                       // empty: no license needed
	ArtifactPct           float64         `yaml:"artifact_pct" json:"artifact_pct"`             // chance a fully successful swarm brings back a relic
	ArtifactRarity        part.Rarity     `yaml:"artifact_rarity" json:"artifact_rarity"`
}

// LaunchCost is the cost of sending droneCount drones.
func LaunchCost(d DifficultyParams, droneCount int) resource.Bundle {
	return d.CostPerDrone.Scale(float64(droneCount))
}

// ResolveExpedition rolls the outcome of a returned expedition. The roll only
// depends on the parameters stored at launch, so it gives the same answer no
// matter when, or how often, it is computed. loot lists the artifact
// definitions a successful swarm may bring back.
func ResolveExpedition(e expedition.Expedition, d DifficultyParams, loot []artifact.Definition) expedition.Outcome {
	rng := rand.New(rand.NewPCG(e.Seed, e.Seed^0x9e3779b97f4a7c15))
	roll := rng.Float64() * 100

	out := expedition.Outcome{
		ExpeditionID: e.ID,
		Roll:         roll,
		Reward:       resource.Bundle{},
		Log:          append([]string(nil), e.Log...),
	}
	full := float64(e.DroneCount) * d.RewardPerDrone * (1 + e.Luck/100)

	switch {
	case roll < d.FailurePct:
		out.Result = expedition.ResultLost
		out.DronesLost = e.DroneCount
		out.Log = append(out.Log, fmt.Sprintf("signal lost with all %d drones", e.DroneCount))
	case roll < d.FailurePct+d.PartialPct:
		out.Result = expedition.ResultPartial
		lost := int(math.Ceil(float64(e.DroneCount) * d.PartialDroneLoss))
		if lost > e.DroneCount {
			lost = e.DroneCount
		}
		out.DronesLost = lost
		if amt := math.Floor(full * d.PartialRewardFraction); amt > 0 {
			out.Reward[e.Target] = amt
		}
		out.Log = append(out.Log, fmt.Sprintf("swarm damaged: %d drones lost, %.0f %s recovered", lost, out.Reward[e.Target], e.Target))
	default:
		out.Result = expedition.ResultSuccess
		if amt := math.Floor(full); amt > 0 {
			out.Reward[e.Target] = amt
		}
		out.Log = append(out.Log, fmt.Sprintf("swarm returned with %.0f %s", out.Reward[e.Target], e.Target))
		if len(loot) > 0 && rng.Float64()*100 < d.ArtifactPct {
			found := loot[rng.IntN(len(loot))]
			out.ArtifactDefID = found.ID
			out.Log = append(out.Log, "an unknown relic was recovered")
		}
	}
	out.DronesReturned = e.DroneCount - out.DronesLost
	return out
}
