package engine

import (
	"fmt"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/effect"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/thermal"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
)

// TradeResult is the payload of a market exchange.
type TradeResult struct {
	From     resource.Kind `json:"from"`
	To       resource.Kind `json:"to"`
	Paid     float64       `json:"paid"`
	Received float64       `json:"received"`
}

// ServiceResult is the payload of a repair or coolant dump.
type ServiceResult struct {
	Cost   resource.Bundle `json:"cost"`
	Before float64         `json:"before"`
	After  float64         `json:"after"`
}

// GambleOutcome is the payload of a bet.
type GambleOutcome struct {
	Kind   resource.Kind `json:"kind"`
	Stake  float64       `json:"stake"`
	Won    bool          `json:"won"`
	Payout float64       `json:"payout"`
	Roll   float64       `json:"roll"`
}

// FusionResult is the payload of a fusion upgrade.
type FusionResult struct {
	RecipeID string    `json:"recipe_id"`
	Slot     part.Slot `json:"slot"`
	Consumed part.Item `json:"consumed"`
	Created  part.Item `json:"created"`
	Tier     int       `json:"tier"`
}

// SkillResult is the payload of a skill upgrade.
type SkillResult struct {
	SkillID string          `json:"skill_id"`
	Level   int             `json:"level"`
	Cost    resource.Bundle `json:"cost"`
}

// PurchaseResult is the payload of one-off purchases (blueprints, licenses, drones).
type PurchaseResult struct {
	ID   string          `json:"id"`
	Cost resource.Bundle `json:"cost"`
}

// EconomySystem hosts the city services and the progression purchases.
// Every operation is all-or-nothing: a rejection leaves the balances untouched.
type EconomySystem struct {
	env
}

func NewEconomySystem(v env) *EconomySystem {
	return &EconomySystem{env: v}
}

// Trade exchanges amount of from into to at market value minus the fee.
func (ec *EconomySystem) Trade(s player.State, from, to resource.Kind, amount float64, now time.Time) (player.State, TradeResult, error) {
	if err := requireCity(s); err != nil {
		return s, TradeResult{}, err
	}
	if amount <= 0 || from == to {
		return s, TradeResult{}, fmt.Errorf("%w: trade %g %s for %s", ErrInvalidAmount, amount, from, to)
	}
	received, err := rules.TradeQuote(ec.tuning.Economy, from, to, amount)
	if err != nil {
		return s, TradeResult{}, err
	}
	if received <= 0 {
		return s, TradeResult{}, fmt.Errorf("%w: %g %s buys no %s", ErrInvalidAmount, amount, from, to)
	}

	next := s.Clone()
	if err := spend(&next, resource.Bundle{from: amount}); err != nil {
		return s, TradeResult{}, err
	}
	next.Resources[to] += received

	res := TradeResult{From: from, To: to, Paid: amount, Received: received}
	ec.emit(next, events.EventTypeTrade, "", now, res)
	return next, res, nil
}

// Repair restores the hull to full integrity.
func (ec *EconomySystem) Repair(s player.State, now time.Time) (player.State, ServiceResult, error) {
	if err := requireCity(s); err != nil {
		return s, ServiceResult{}, err
	}
	if s.Integrity >= player.MaxIntegrity {
		return s, ServiceResult{}, fmt.Errorf("%w: hull is intact", ErrNothingToDo)
	}

	next := s.Clone()
	cost := rules.RepairCost(ec.tuning.Economy, s.Integrity)
	if err := spend(&next, cost); err != nil {
		return s, ServiceResult{}, err
	}
	next.Integrity = player.MaxIntegrity
	next.Breached = false

	res := ServiceResult{Cost: cost, Before: s.Integrity, After: next.Integrity}
	ec.emit(next, events.EventTypeRepair, "", now, res)
	ec.logger.Info(fmt.Sprintf("[CITY] %s repaired hull %.1f -> %.0f for %s", next.PlayerID, res.Before, res.After, cost))
	return next, res, nil
}

// Heal dumps coolant to bring heat to zero. Works in the shaft too.
func (ec *EconomySystem) Heal(s player.State, now time.Time) (player.State, ServiceResult, error) {
	if s.Thermal.Heat <= 0 {
		return s, ServiceResult{}, fmt.Errorf("%w: drill is cold", ErrNothingToDo)
	}

	next := s.Clone()
	cost := rules.HealCost(ec.tuning.Economy, s.Thermal.Heat)
	if err := spend(&next, cost); err != nil {
		return s, ServiceResult{}, err
	}
	next.Thermal.Heat = 0

	res := ServiceResult{Cost: cost, Before: s.Thermal.Heat, After: 0}
	ec.emit(next, events.EventTypeHeal, "", now, res)
	if s.Thermal.Overheated() {
		ec.emit(next, events.EventTypeCooled, "", now, ThermalPayload{Phase: thermal.PhaseCool, Heat: 0})
	}
	return next, res, nil
}

// Gamble stakes a resource against a roll in [0,100).
func (ec *EconomySystem) Gamble(s player.State, kind resource.Kind, stake, roll float64, now time.Time) (player.State, GambleOutcome, error) {
	if err := requireCity(s); err != nil {
		return s, GambleOutcome{}, err
	}
	if stake <= 0 {
		return s, GambleOutcome{}, fmt.Errorf("%w: stake %g", ErrInvalidAmount, stake)
	}

	next := s.Clone()
	if err := spend(&next, resource.Bundle{kind: stake}); err != nil {
		return s, GambleOutcome{}, err
	}
	won, payout := rules.GambleResult(ec.tuning.Economy, stake, roll)
	next.Resources[kind] += payout

	res := GambleOutcome{Kind: kind, Stake: stake, Won: won, Payout: payout, Roll: roll}
	ec.emit(next, events.EventTypeGamble, "", now, res)
	return next, res, nil
}

// BuyBuff purchases a timed effect. Buying a buff that is still running
// restarts its timer instead of stacking a second copy.
func (ec *EconomySystem) BuyBuff(s player.State, buffID string, now time.Time) (player.State, effect.Active, error) {
	if err := requireCity(s); err != nil {
		return s, effect.Active{}, err
	}
	buff, ok := ec.data.Buffs[buffID]
	if !ok {
		return s, effect.Active{}, fmt.Errorf("%w: buff %q", ErrUnknownEntry, buffID)
	}

	next := s.Clone()
	if err := spend(&next, buff.Cost); err != nil {
		return s, effect.Active{}, err
	}
	next.Effects = effect.Prune(next.Effects, now)
	active := effect.Active{ID: ec.newID(), BuffID: buff.ID, Stat: buff.Stat, Pct: buff.Pct, ExpiresAt: now.Add(buff.Duration)}
	replaced := false
	for i, a := range next.Effects {
		if a.BuffID == buff.ID {
			active.ID = a.ID
			next.Effects[i] = active
			replaced = true
			break
		}
	}
	if !replaced {
		next.Effects = append(next.Effects, active)
	}

	ec.emit(next, events.EventTypeBuffBought, buff.ID, now, active)
	ec.logger.Info(fmt.Sprintf("[CITY] %s bought %s until %s", next.PlayerID, buff.Name, active.ExpiresAt.Format(time.RFC3339)))
	return next, active, nil
}

// BuyDrone adds one drone to the idle fleet.
func (ec *EconomySystem) BuyDrone(s player.State, now time.Time) (player.State, PurchaseResult, error) {
	if err := requireCity(s); err != nil {
		return s, PurchaseResult{}, err
	}
	next := s.Clone()
	cost := ec.tuning.Economy.DroneCost
	if err := spend(&next, cost); err != nil {
		return s, PurchaseResult{}, err
	}
	next.Drones++

	res := PurchaseResult{ID: "drone", Cost: cost.Clone()}
	ec.emit(next, events.EventTypeDroneBought, "", now, res)
	return next, res, nil
}

// Fusion replaces the installed part of the recipe's slot with the next tier.
// The tier gate is checked before anything is consumed.
func (ec *EconomySystem) Fusion(s player.State, recipeID string, now time.Time) (player.State, FusionResult, error) {
	recipe, ok := ec.data.Fusion[recipeID]
	if !ok {
		return s, FusionResult{}, fmt.Errorf("%w: recipe %q", ErrUnknownEntry, recipeID)
	}
	equipped, err := rules.EquippedParts(s, ec.data.Parts)
	if err != nil {
		return s, FusionResult{}, err
	}
	if err := rules.CheckFusion(recipe, equipped[recipe.Slot], s.Progress); err != nil {
		return s, FusionResult{}, err
	}
	target, ok := ec.data.Parts.AtTier(recipe.Slot, recipe.TargetTier)
	if !ok {
		return s, FusionResult{}, fmt.Errorf("%w: no tier %d %s part", ErrUnknownEntry, recipe.TargetTier, recipe.Slot)
	}

	next := s.Clone()
	if err := spend(&next, recipe.Catalyst); err != nil {
		return s, FusionResult{}, err
	}
	consumed := next.Equipped[recipe.Slot]
	created := part.Item{ID: ec.newID(), PartID: target.ID, Slot: recipe.Slot, AcquiredAt: now}
	next.Equipped[recipe.Slot] = created

	res := FusionResult{RecipeID: recipe.ID, Slot: recipe.Slot, Consumed: consumed, Created: created, Tier: target.Tier}
	ec.emit(next, events.EventTypeFusion, recipe.ID, now, res)
	ec.logger.Info(fmt.Sprintf("[FUSION] %s fused %s into %s (tier %d)", next.PlayerID, consumed.PartID, target.Name, target.Tier))
	return next, res, nil
}

// UpgradeSkill raises a skill by one level.
func (ec *EconomySystem) UpgradeSkill(s player.State, skillID string, now time.Time) (player.State, SkillResult, error) {
	def, ok := ec.data.Skills.Get(skillID)
	if !ok {
		return s, SkillResult{}, fmt.Errorf("%w: skill %q", ErrUnknownEntry, skillID)
	}
	level := s.SkillLevels[skillID]
	if level >= def.MaxLevel {
		return s, SkillResult{}, fmt.Errorf("%w: %s is level %d", ErrSkillMaxed, def.Name, level)
	}

	next := s.Clone()
	cost := def.CostFor(level+1, ec.tuning.Economy.SkillCostGrowth)
	if err := spend(&next, cost); err != nil {
		return s, SkillResult{}, err
	}
	next.SkillLevels[skillID] = level + 1

	res := SkillResult{SkillID: skillID, Level: level + 1, Cost: cost}
	ec.emit(next, events.EventTypeSkillUpgraded, skillID, now, res)
	return next, res, nil
}

// BuyBlueprint unlocks crafting of the parts that reference it.
func (ec *EconomySystem) BuyBlueprint(s player.State, id string, now time.Time) (player.State, PurchaseResult, error) {
	bp, ok := ec.data.Blueprints[id]
	if !ok {
		return s, PurchaseResult{}, fmt.Errorf("%w: blueprint %q", ErrUnknownEntry, id)
	}
	if s.HasBlueprint(id) {
		return s, PurchaseResult{}, fmt.Errorf("%w: %s", ErrAlreadyOwned, bp.Name)
	}
	next := s.Clone()
	if err := spend(&next, bp.Cost); err != nil {
		return s, PurchaseResult{}, err
	}
	next.Blueprints = append(next.Blueprints, id)

	res := PurchaseResult{ID: id, Cost: bp.Cost.Clone()}
	ec.emit(next, events.EventTypeBlueprintBought, id, now, res)
	return next, res, nil
}

// BuyLicense unlocks an expedition difficulty.
func (ec *EconomySystem) BuyLicense(s player.State, id string, now time.Time) (player.State, PurchaseResult, error) {
	lic, ok := ec.data.Licenses[id]
	if !ok {
		return s, PurchaseResult{}, fmt.Errorf("%w: license %q", ErrUnknownEntry, id)
	}
	if s.HasLicense(id) {
		return s, PurchaseResult{}, fmt.Errorf("%w: %s", ErrAlreadyOwned, lic.Name)
	}
	next := s.Clone()
	if err := spend(&next, lic.Cost); err != nil {
		return s, PurchaseResult{}, err
	}
	next.Licenses = append(next.Licenses, id)

	res := PurchaseResult{ID: id, Cost: lic.Cost.Clone()}
	ec.emit(next, events.EventTypeLicenseBought, id, now, res)
	return next, res, nil
}
