package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/engine"
)

// ErrUnknownIntent is returned for an intent type Dispatch does not route.
var ErrUnknownIntent = errors.New("unknown intent")

// Intent is a player command as it arrives over the WebSocket or the REST
// API. Only the fields the intent type needs are read.
type Intent struct {
	Type string `json:"type"` // "START_DRILLING", "STRIKE", "START_CRAFT", ...

	PartID     string   `json:"part_id,omitempty"`
	Slot       string   `json:"slot,omitempty"`
	JobID      string   `json:"job_id,omitempty"`
	ItemID     string   `json:"item_id,omitempty"`
	ArtifactID string   `json:"artifact_id,omitempty"`
	IDs        []string `json:"ids,omitempty"`

	Difficulty string `json:"difficulty,omitempty"`
	Drones     int    `json:"drones,omitempty"`
	Target     string `json:"target,omitempty"`

	From   string  `json:"from,omitempty"`
	To     string  `json:"to,omitempty"`
	Kind   string  `json:"kind,omitempty"`
	Amount float64 `json:"amount,omitempty"`

	ID string `json:"id,omitempty"` // recipe, buff, skill, blueprint or license id
}

// Reply answers one intent.
type Reply struct {
	Type      string      `json:"type"` // always "result"
	Intent    string      `json:"intent"`
	OK        bool        `json:"ok"`
	Rejection bool        `json:"rejection,omitempty"`
	Error     string      `json:"error,omitempty"`
	Result    interface{} `json:"result,omitempty"`

	err error
}

// ParseIntent decodes a raw intent message.
func ParseIntent(raw []byte) (Intent, error) {
	var in Intent
	if err := json.Unmarshal(raw, &in); err != nil {
		return Intent{}, fmt.Errorf("malformed intent: %w", err)
	}
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	if in.Type == "" {
		return Intent{}, fmt.Errorf("intent type is required")
	}
	return in, nil
}

// Dispatch routes an intent to the matching engine command.
func Dispatch(eng *engine.Engine, in Intent) (interface{}, error) {
	switch in.Type {
	// Drill
	case "START_DRILLING":
		return eng.StartDrilling()
	case "STOP_DRILLING":
		return eng.StopDrilling()
	case "RETURN_TO_CITY":
		return eng.ReturnToCity()
	case "STRIKE":
		return eng.Strike()
	case "VENT":
		return eng.AttemptVent()

	// Crafting
	case "START_CRAFT":
		slot, err := part.ParseSlot(in.Slot)
		if err != nil {
			return nil, err
		}
		return eng.StartCraft(in.PartID, slot)
	case "COLLECT_CRAFT":
		return eng.CollectCraftedItem(in.JobID)
	case "CANCEL_CRAFT":
		return eng.CancelCraft(in.JobID)

	// Expeditions
	case "LAUNCH_EXPEDITION":
		diff, err := expedition.ParseDifficulty(in.Difficulty)
		if err != nil {
			return nil, err
		}
		target, err := resource.Parse(in.Target)
		if err != nil {
			return nil, err
		}
		return eng.LaunchExpedition(diff, in.Drones, target)
	case "COLLECT_EXPEDITION":
		return eng.CollectRewards(in.ID)

	// Equipment and artifacts
	case "EQUIP_PART":
		return eng.EquipPart(in.ItemID)
	case "SCRAP_ITEM":
		return eng.ScrapItem(in.ItemID)
	case "ANALYZE_ARTIFACT":
		return eng.AnalyzeArtifact(in.ArtifactID)
	case "EQUIP_ARTIFACT":
		return eng.EquipArtifact(in.ArtifactID)
	case "UNEQUIP_ARTIFACT":
		return eng.UnequipArtifact(in.ArtifactID)
	case "TRANSMUTE":
		return eng.TransmuteArtifacts(in.IDs)

	// City
	case "TRADE":
		from, err := resource.Parse(in.From)
		if err != nil {
			return nil, err
		}
		to, err := resource.Parse(in.To)
		if err != nil {
			return nil, err
		}
		return eng.TradeResources(from, to, in.Amount)
	case "REPAIR":
		return eng.RepairHull()
	case "HEAL":
		return eng.HealHeat()
	case "GAMBLE":
		kind, err := resource.Parse(in.Kind)
		if err != nil {
			return nil, err
		}
		return eng.GambleResources(kind, in.Amount)
	case "FUSE":
		return eng.FusionUpgrade(in.ID)
	case "BUY_BUFF":
		return eng.BuyCityBuff(in.ID)
	case "BUY_DRONE":
		return eng.BuyDrone()
	case "UPGRADE_SKILL":
		return eng.UpgradeSkill(in.ID)
	case "BUY_BLUEPRINT":
		return eng.BuyBlueprint(in.ID)
	case "BUY_LICENSE":
		return eng.BuyLicense(in.ID)

	// Reads
	case "STATUS":
		return eng.Status()
	case "STATS":
		return eng.Stats()
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, in.Type)
}

// Execute runs an intent and wraps the outcome in a Reply.
func Execute(eng *engine.Engine, in Intent) Reply {
	res, err := Dispatch(eng, in)
	if err != nil {
		return Reply{Type: "result", Intent: in.Type, Error: err.Error(), Rejection: engine.IsRejection(err), err: err}
	}
	return Reply{Type: "result", Intent: in.Type, OK: true, Result: res}
}
