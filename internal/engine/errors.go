package engine

import (
	"errors"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
)

// Rejections. A command that returns one of these left the state untouched.
var (
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrUnknownEntry          = errors.New("unknown catalog entry")
	ErrSlotMismatch          = errors.New("part does not fit that slot")
	ErrBlueprintLocked       = errors.New("blueprint required")
	ErrFusionOnly            = errors.New("part can only be installed by fusion")
	ErrFusedInstalled        = errors.New("fused part cannot be swapped out")
	ErrQueueFull             = errors.New("crafting queue is full")
	ErrJobNotFound           = errors.New("crafting job not found")
	ErrJobNotReady           = errors.New("crafting job is still in progress")
	ErrJobAlreadyReady       = errors.New("crafting job is already complete")
	ErrExpeditionNotFound    = errors.New("expedition not found or already collected")
	ErrExpeditionNotReturned = errors.New("expedition has not returned")
	ErrNotEnoughDrones       = errors.New("not enough idle drones")
	ErrLicenseRequired       = errors.New("license required")
	ErrVentCooldown          = errors.New("vent is cooling down")
	ErrOverheated            = errors.New("drill is overheated")
	ErrNotInCity             = errors.New("only available in the city")
	ErrNotInMine             = errors.New("only available in the mine")
	ErrItemNotFound          = errors.New("item not found")
	ErrArtifactNotFound      = errors.New("artifact not found")
	ErrArtifactUnidentified  = errors.New("artifact is not identified")
	ErrArtifactIdentified    = errors.New("artifact is already identified")
	ErrArtifactEquipped      = errors.New("artifact is already equipped")
	ErrArtifactNotEquipped   = errors.New("artifact is not equipped")
	ErrArtifactSlotsFull     = errors.New("all artifact slots are in use")
	ErrSkillMaxed            = errors.New("skill is at max level")
	ErrAlreadyOwned          = errors.New("already owned")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrNothingToDo           = errors.New("nothing to do")
	ErrHullBreached          = errors.New("hull is breached, repair first")

	ErrTierGate             = rules.ErrTierGate
	ErrFusionConditionUnmet = rules.ErrFusionConditionUnmet
	ErrTransmuteInvalid     = rules.ErrTransmuteInvalid
	ErrUntradeable          = rules.ErrUntradeable
)

var rejections = []error{
	ErrInsufficientResources, ErrUnknownEntry, ErrSlotMismatch, ErrBlueprintLocked,
	ErrFusionOnly, ErrFusedInstalled, ErrQueueFull, ErrJobNotFound, ErrJobNotReady, ErrJobAlreadyReady,
	ErrExpeditionNotFound, ErrExpeditionNotReturned, ErrNotEnoughDrones,
	ErrLicenseRequired, ErrVentCooldown, ErrOverheated, ErrNotInCity, ErrNotInMine,
	ErrItemNotFound, ErrArtifactNotFound, ErrArtifactUnidentified, ErrArtifactIdentified,
	ErrArtifactEquipped, ErrArtifactNotEquipped, ErrArtifactSlotsFull, ErrSkillMaxed,
	ErrAlreadyOwned, ErrInvalidAmount, ErrNothingToDo, ErrHullBreached, ErrTierGate,
	ErrFusionConditionUnmet, ErrTransmuteInvalid, ErrUntradeable,
}

// IsRejection reports whether err is an ordinary "nothing happened, here is
// why" answer the caller should show to the player.
func IsRejection(err error) bool {
	if err == nil || IsInvariant(err) {
		return false
	}
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

// IsInvariant reports whether err signals corrupted state.
func IsInvariant(err error) bool {
	var inv *rules.InvariantError
	return errors.As(err, &inv)
}
