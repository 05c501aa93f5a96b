package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
)

// PartSwap is the payload of an equip.
type PartSwap struct {
	Slot      part.Slot `json:"slot"`
	Installed part.Item `json:"installed"`
	Removed   part.Item `json:"removed"`
}

// ScrapResult is the payload of a scrapped item.
type ScrapResult struct {
	Item   part.Item       `json:"item"`
	Refund resource.Bundle `json:"refund"`
}

// TransmuteResult is the payload of a transmutation.
type TransmuteResult struct {
	Consumed []string          `json:"consumed"`
	Created  artifact.Instance `json:"created"`
	Rarity   part.Rarity       `json:"rarity"`
}

// EquipmentSystem manages installed parts, inventory and artifacts.
type EquipmentSystem struct {
	env
}

func NewEquipmentSystem(v env) *EquipmentSystem {
	return &EquipmentSystem{env: v}
}

// EquipPart installs an inventory item, moving the previous part of that slot
// back to the inventory.
func (eq *EquipmentSystem) EquipPart(s player.State, itemID string, now time.Time) (player.State, PartSwap, error) {
	idx := s.FindItem(itemID)
	if idx < 0 {
		return s, PartSwap{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	item := s.Inventory[idx]
	p, ok := eq.data.Parts.Get(item.PartID)
	if !ok {
		return s, PartSwap{}, fmt.Errorf("%w: item %s references part %q", ErrUnknownEntry, item.ID, item.PartID)
	}
	if p.FusionOnly() {
		return s, PartSwap{}, fmt.Errorf("%w: %s is tier %d", ErrFusionOnly, p.ID, p.Tier)
	}
	old, ok := s.Equipped[p.Slot]
	if !ok {
		return s, PartSwap{}, &rules.InvariantError{Err: rules.ErrMissingSlot, Detail: string(p.Slot)}
	}
	// Fused parts cannot come back from the inventory, so they never leave the slot.
	if installed, ok := eq.data.Parts.Get(old.PartID); ok && installed.FusionOnly() {
		return s, PartSwap{}, fmt.Errorf("%w: %s holds %s", ErrFusedInstalled, p.Slot, installed.ID)
	}

	next := s.Clone()
	next.Inventory = slices.Delete(next.Inventory, idx, idx+1)
	next.Inventory = append(next.Inventory, old)
	next.Equipped[p.Slot] = item

	res := PartSwap{Slot: p.Slot, Installed: item, Removed: old}
	eq.emit(next, events.EventTypePartEquipped, item.ID, now, res)
	eq.logger.Info(fmt.Sprintf("[EQUIP] %s installed %s in %s", next.PlayerID, p.Name, p.Slot))
	return next, res, nil
}

// Scrap destroys an inventory item for a fraction of its cost.
func (eq *EquipmentSystem) Scrap(s player.State, itemID string, now time.Time) (player.State, ScrapResult, error) {
	idx := s.FindItem(itemID)
	if idx < 0 {
		return s, ScrapResult{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	item := s.Inventory[idx]
	p, ok := eq.data.Parts.Get(item.PartID)
	if !ok {
		return s, ScrapResult{}, fmt.Errorf("%w: item %s references part %q", ErrUnknownEntry, item.ID, item.PartID)
	}

	next := s.Clone()
	next.Inventory = slices.Delete(next.Inventory, idx, idx+1)
	refund := refundOf(p.Cost, eq.tuning.Crafting.ScrapRefundPct)
	next.Resources.Add(refund)

	res := ScrapResult{Item: item, Refund: refund}
	eq.emit(next, events.EventTypeItemScrapped, item.ID, now, res)
	return next, res, nil
}

// Analyze identifies an artifact so it can be equipped or transmuted.
func (eq *EquipmentSystem) Analyze(s player.State, artifactID string, now time.Time) (player.State, artifact.Instance, error) {
	idx := s.FindArtifact(artifactID)
	if idx < 0 {
		return s, artifact.Instance{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, artifactID)
	}
	if s.Artifacts[idx].Identified {
		return s, artifact.Instance{}, fmt.Errorf("%w: %s", ErrArtifactIdentified, artifactID)
	}

	next := s.Clone()
	if err := spend(&next, eq.tuning.Economy.AnalyzeCost); err != nil {
		return s, artifact.Instance{}, err
	}
	next.Artifacts[idx].Identified = true
	inst := next.Artifacts[idx]

	eq.emit(next, events.EventTypeArtifactAnalyzed, inst.ID, now, inst)
	if def, ok := eq.data.Artifacts.Get(inst.DefID); ok {
		eq.logger.Info(fmt.Sprintf("[ARTIFACT] %s identified %s (%s)", next.PlayerID, def.Name, def.Rarity))
	}
	return next, inst, nil
}

// EquipArtifact puts an identified artifact into a free quick slot.
func (eq *EquipmentSystem) EquipArtifact(s player.State, artifactID string, now time.Time) (player.State, artifact.Instance, error) {
	idx := s.FindArtifact(artifactID)
	if idx < 0 {
		return s, artifact.Instance{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, artifactID)
	}
	inst := s.Artifacts[idx]
	switch {
	case !inst.Identified:
		return s, artifact.Instance{}, fmt.Errorf("%w: %s", ErrArtifactUnidentified, artifactID)
	case inst.Equipped:
		return s, artifact.Instance{}, fmt.Errorf("%w: %s", ErrArtifactEquipped, artifactID)
	case len(s.EquippedArtifactIDs()) >= artifact.MaxEquipped:
		return s, artifact.Instance{}, fmt.Errorf("%w: %d in use", ErrArtifactSlotsFull, artifact.MaxEquipped)
	}
	if _, ok := eq.data.Artifacts.Get(inst.DefID); !ok {
		return s, artifact.Instance{}, fmt.Errorf("%w: artifact %q", ErrUnknownEntry, inst.DefID)
	}

	next := s.Clone()
	next.Artifacts[idx].Equipped = true
	inst = next.Artifacts[idx]
	eq.emit(next, events.EventTypeArtifactEquipped, inst.ID, now, inst)
	return next, inst, nil
}

// UnequipArtifact frees a quick slot.
func (eq *EquipmentSystem) UnequipArtifact(s player.State, artifactID string, now time.Time) (player.State, artifact.Instance, error) {
	idx := s.FindArtifact(artifactID)
	if idx < 0 {
		return s, artifact.Instance{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, artifactID)
	}
	if !s.Artifacts[idx].Equipped {
		return s, artifact.Instance{}, fmt.Errorf("%w: %s", ErrArtifactNotEquipped, artifactID)
	}

	next := s.Clone()
	next.Artifacts[idx].Equipped = false
	inst := next.Artifacts[idx]
	eq.emit(next, events.EventTypeArtifactUnequipped, inst.ID, now, inst)
	return next, inst, nil
}

// Transmute fuses three identified artifacts of one rarity into a random
// artifact of the next rarity. pickRoll in [0,1) selects the result.
func (eq *EquipmentSystem) Transmute(s player.State, ids []string, pickRoll float64, now time.Time) (player.State, TransmuteResult, error) {
	picked := make([]artifact.Instance, 0, len(ids))
	for _, id := range ids {
		idx := s.FindArtifact(id)
		if idx < 0 {
			return s, TransmuteResult{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, id)
		}
		picked = append(picked, s.Artifacts[idx])
	}
	rarity, err := rules.CheckTransmute(picked, eq.data.Artifacts)
	if err != nil {
		return s, TransmuteResult{}, err
	}
	pool := eq.data.Artifacts.OfRarity(rarity)
	if len(pool) == 0 {
		return s, TransmuteResult{}, fmt.Errorf("%w: no %s artifacts exist", ErrTransmuteInvalid, rarity)
	}
	pick := int(pickRoll * float64(len(pool)))
	if pick < 0 {
		pick = 0
	}
	if pick >= len(pool) {
		pick = len(pool) - 1
	}

	next := s.Clone()
	next.Artifacts = slices.DeleteFunc(next.Artifacts, func(a artifact.Instance) bool {
		return slices.Contains(ids, a.ID)
	})
	created := artifact.Instance{ID: eq.newID(), DefID: pool[pick].ID, Identified: true, FoundAt: now}
	next.Artifacts = append(next.Artifacts, created)

	res := TransmuteResult{Consumed: slices.Clone(ids), Created: created, Rarity: rarity}
	eq.emit(next, events.EventTypeArtifactTransmuted, created.ID, now, res)
	eq.logger.Info(fmt.Sprintf("[ARTIFACT] %s transmuted 3 into %s (%s)", next.PlayerID, pool[pick].Name, rarity))
	return next, res, nil
}
