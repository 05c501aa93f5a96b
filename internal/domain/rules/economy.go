package rules

import (
	"errors"
	"fmt"
	"math"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
)

var (
	// ErrTierGate means the installed part is not exactly one tier below the recipe target.
	ErrTierGate = errors.New("installed part is not the preceding tier")
	// ErrFusionConditionUnmet means the recipe's progress requirement is not reached yet.
	ErrFusionConditionUnmet = errors.New("fusion condition not met")
	// ErrTransmuteInvalid means the selected artifacts cannot be transmuted together.
	ErrTransmuteInvalid = errors.New("artifacts cannot be transmuted")
	// ErrUntradeable means a resource has no market value.
	ErrUntradeable = errors.New("resource has no market value")
)

// EconomyParams tunes every city service.
type EconomyParams struct {
	Values             map[resource.Kind]float64 `yaml:"values" json:"values"` // market value per unit
	TradeFee           float64                   `yaml:"trade_fee" json:"trade_fee"`
	GambleWinPct       float64                   `yaml:"gamble_win_pct" json:"gamble_win_pct"`
	GamblePayout       float64                   `yaml:"gamble_payout" json:"gamble_payout"` // stake multiplier on win
	RepairCostPerPoint resource.Bundle           `yaml:"repair_cost_per_point" json:"repair_cost_per_point"`
	HealCostPerHeat    resource.Bundle           `yaml:"heal_cost_per_heat" json:"heal_cost_per_heat"`
	AnalyzeCost        resource.Bundle           `yaml:"analyze_cost" json:"analyze_cost"`
	SkillCostGrowth    float64                   `yaml:"skill_cost_growth" json:"skill_cost_growth"`
	DroneCost          resource.Bundle           `yaml:"drone_cost" json:"drone_cost"`
}

// TradeQuote is how much of to is received for amount of from, after the fee,
// rounded down to whole units.
func TradeQuote(p EconomyParams, from, to resource.Kind, amount float64) (float64, error) {
	vf, vt := p.Values[from], p.Values[to]
	if vf <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrUntradeable, from)
	}
	if vt <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrUntradeable, to)
	}
	return math.Floor(amount * vf / vt * (1 - p.TradeFee)), nil
}

// GambleResult settles a stake against a roll in [0,100). It returns the
// amount credited back, zero on a loss.
func GambleResult(p EconomyParams, stake, roll float64) (won bool, payout float64) {
	if roll < p.GambleWinPct {
		return true, math.Floor(stake * p.GamblePayout)
	}
	return false, 0
}

// RepairCost prices restoring the hull to full.
func RepairCost(p EconomyParams, integrity float64) resource.Bundle {
	missing := math.Ceil(player.MaxIntegrity - integrity)
	if missing <= 0 {
		return resource.Bundle{}
	}
	return p.RepairCostPerPoint.Scale(missing)
}

// HealCost prices dumping coolant until the given heat is gone.
func HealCost(p EconomyParams, heat float64) resource.Bundle {
	h := math.Ceil(heat)
	if h <= 0 {
		return resource.Bundle{}
	}
	return p.HealCostPerHeat.Scale(h)
}

// ConditionMet checks a fusion recipe's progress requirement.
func ConditionMet(c part.FusionCondition, pr player.Progress) bool {
	switch c.Kind {
	case part.ConditionDepth:
		return pr.MaxDepth >= c.Threshold
	case part.ConditionZeroHeat:
		return pr.ZeroHeatSeconds >= c.Threshold
	case part.ConditionZeroDamage:
		return pr.ZeroDamageSeconds >= c.Threshold
	}
	return false
}

// CheckFusion validates a recipe against the installed part. The tier gate is
// checked first, independent of resources or progress.
func CheckFusion(r part.FusionRecipe, installed part.Part, pr player.Progress) error {
	if installed.Slot != r.Slot || installed.Tier != r.TargetTier-1 {
		return fmt.Errorf("%w: %s holds tier %d, recipe %s needs tier %d",
			ErrTierGate, r.Slot, installed.Tier, r.ID, r.TargetTier-1)
	}
	if !ConditionMet(r.Condition, pr) {
		return fmt.Errorf("%w: %s %.0f", ErrFusionConditionUnmet, r.Condition.Kind, r.Condition.Threshold)
	}
	return nil
}

// CheckTransmute validates the artifacts picked for transmutation and returns
// the rarity they will produce.
func CheckTransmute(picked []artifact.Instance, reg *artifact.Registry) (part.Rarity, error) {
	if len(picked) != artifact.TransmuteInputs {
		return 0, fmt.Errorf("%w: need %d, got %d", ErrTransmuteInvalid, artifact.TransmuteInputs, len(picked))
	}
	seen := make(map[string]bool, len(picked))
	var rarity part.Rarity
	for i, inst := range picked {
		if seen[inst.ID] {
			return 0, fmt.Errorf("%w: %s picked twice", ErrTransmuteInvalid, inst.ID)
		}
		seen[inst.ID] = true
		if !inst.Identified {
			return 0, fmt.Errorf("%w: %s is not identified", ErrTransmuteInvalid, inst.ID)
		}
		if inst.Equipped {
			return 0, fmt.Errorf("%w: %s is equipped", ErrTransmuteInvalid, inst.ID)
		}
		def, ok := reg.Get(inst.DefID)
		if !ok {
			return 0, invariant(ErrUnknownPart, "artifact definition %q", inst.DefID)
		}
		if i == 0 {
			rarity = def.Rarity
		} else if def.Rarity != rarity {
			return 0, fmt.Errorf("%w: mixed rarities %s and %s", ErrTransmuteInvalid, rarity, def.Rarity)
		}
	}
	next, ok := rarity.Next()
	if !ok {
		return 0, fmt.Errorf("%w: %s is the highest rarity", ErrTransmuteInvalid, rarity)
	}
	return next, nil
}
