package part

import "github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"

// ConditionKind names the progress counter a fusion recipe waits on.
type ConditionKind string

const (
	ConditionDepth      ConditionKind = "depth"       // deepest point reached
	ConditionZeroHeat   ConditionKind = "zero_heat"   // seconds drilled at zero heat
	ConditionZeroDamage ConditionKind = "zero_damage" // seconds drilled without hull damage
)

// FusionCondition is the unlock requirement of a recipe.
type FusionCondition struct {
	Kind      ConditionKind `json:"kind"`
	Threshold float64       `json:"threshold"`
}

// FusionRecipe replaces the installed part of Slot with the part at TargetTier.
// The installed part must be exactly one tier below the target.
type FusionRecipe struct {
	ID         string          `json:"id"`
	Slot       Slot            `json:"slot"`
	TargetTier int             `json:"target_tier"`
	Catalyst   resource.Bundle `json:"catalyst"`
	Condition  FusionCondition `json:"condition"`
}

// Blueprint unlocks crafting of parts that reference it.
type Blueprint struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Cost resource.Bundle `json:"cost"`
}
