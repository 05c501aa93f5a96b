package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/config"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/artifact"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/crafting"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/effect"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/thermal"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/gamedata"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/clock"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/logger"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/metrics"
)

// DefaultMaxTick bounds dt when no limit is configured.
const DefaultMaxTick = 5 * time.Second

// Options overrides the engine's sources of time, randomness and ids.
// Zero values fall back to the real clock, a time-seeded PCG and uuids.
type Options struct {
	Clock        clock.Clock
	Rand         *rand.Rand
	NewID        func() string
	Metrics      *metrics.Collector
	TickInterval time.Duration
	MaxTick      time.Duration
}

// Engine is the central orchestrator. It owns the single player.State and
// serialises every transition on it: the ticker and all commands take the
// same lock, so there is exactly one logical thread of game time.
type Engine struct {
	mu       sync.Mutex
	state    player.State
	lastTick time.Time

	data     *gamedata.Data
	tuning   *config.Tuning
	eventLog *events.EventLog
	logger   *logger.Logger
	metrics  *metrics.Collector
	clock    clock.Clock
	rng      *rand.Rand
	ticker   *Ticker
	maxTick  time.Duration

	// Sub-systems
	thermalSystem    *ThermalSystem
	drillingSystem   *DrillingSystem
	craftingSystem   *CraftingSystem
	expeditionSystem *ExpeditionSystem
	equipmentSystem  *EquipmentSystem
	economySystem    *EconomySystem

	// ids already announced as ready or returned
	announced map[string]bool
}

// NewEngine wires the systems around an initial state.
func NewEngine(state player.State, data *gamedata.Data, tuning *config.Tuning, eventLog *events.EventLog, log *logger.Logger, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>7|1))
	}
	if opts.NewID == nil {
		opts.NewID = events.GenerateEventID
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Get()
	}
	if opts.MaxTick <= 0 {
		opts.MaxTick = DefaultMaxTick
	}

	v := env{eventLog: eventLog, logger: log, data: data, tuning: tuning, newID: opts.NewID}
	e := &Engine{
		state:    state,
		lastTick: opts.Clock.Now(),
		data:     data,
		tuning:   tuning,
		eventLog: eventLog,
		logger:   log,
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		rng:      opts.Rand,
		maxTick:  opts.MaxTick,

		thermalSystem:    NewThermalSystem(v),
		drillingSystem:   NewDrillingSystem(v),
		craftingSystem:   NewCraftingSystem(v),
		expeditionSystem: NewExpeditionSystem(v),
		equipmentSystem:  NewEquipmentSystem(v),
		economySystem:    NewEconomySystem(v),

		announced: make(map[string]bool),
	}
	e.ticker = NewTicker(e, opts.TickInterval, log)
	e.markAnnounced(state, e.lastTick)
	return e
}

// Start spawns the ticker loop.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Starting drill simulation engine...")
	go e.ticker.Start(ctx)
}

// Stop halts the ticker.
func (e *Engine) Stop() {
	e.ticker.Stop()
}

// TickReport summarises one simulation step.
type TickReport struct {
	At      time.Time     `json:"at"`
	DT      float64       `json:"dt"`
	Stats   stats.Stats   `json:"stats"`
	Thermal ThermalReport `json:"thermal"`
	Drill   DrillReport   `json:"drill"`
}

// Tick advances the simulation to the clock's now. dt is capped at the
// configured maximum, so time the process spent suspended is not drilled.
// Crafting jobs and expeditions do not need ticks; they resolve from their
// timestamps whenever they are read.
func (e *Engine) Tick() (TickReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	now := e.clock.Now()
	dt := now.Sub(e.lastTick)
	if dt <= 0 {
		return TickReport{At: now}, nil
	}
	if dt > e.maxTick {
		dt = e.maxTick
	}
	report := TickReport{At: now, DT: dt.Seconds()}

	next := e.state.Clone()
	next.Effects = effect.Prune(next.Effects, now)

	equipped, err := rules.EquippedParts(next, e.data.Parts)
	if err != nil {
		e.logger.Error(fmt.Sprintf("[TICK] state corrupted, tick skipped: %v", err))
		return report, err
	}
	resolveStart := time.Now()
	st, err := rules.ResolveState(next, e.data.Catalogs(), now)
	e.metrics.RecordResolve(time.Since(resolveStart))
	if err != nil {
		e.logger.Error(fmt.Sprintf("[TICK] state corrupted, tick skipped: %v", err))
		return report, err
	}
	report.Stats = st

	wasOverheated := next.Thermal.Overheated()
	report.Thermal = e.thermalSystem.Advance(&next, st, equipped, report.DT, now)
	report.Drill = e.drillingSystem.Advance(&next, st, report.DT, now, wasOverheated, report.Thermal.HeatDamage)
	e.announce(next, now)

	e.state = next
	e.lastTick = now
	e.metrics.RecordTick(time.Since(started))
	return report, nil
}

// announce emits CRAFT_READY and EXPEDITION_RETURNED once per id.
func (e *Engine) announce(s player.State, now time.Time) {
	live := make(map[string]bool, len(s.Jobs)+len(s.Expeditions))
	for _, j := range s.Jobs {
		live[j.ID] = true
		if j.Ready(now) && !e.announced[j.ID] {
			e.announced[j.ID] = true
			e.eventLog.Append(events.New(events.EventTypeCraftReady, s.PlayerID, j.ID, j.CompletionTime, s.Depth, j))
			e.logger.Info(fmt.Sprintf("[CRAFT] %s job %s is ready to collect", s.PlayerID, j.ID))
		}
	}
	for _, x := range s.Expeditions {
		live[x.ID] = true
		if x.Returned(now) && !e.announced[x.ID] {
			e.announced[x.ID] = true
			e.eventLog.Append(events.New(events.EventTypeExpeditionReturned, s.PlayerID, x.ID, x.ReturnsAt(), s.Depth, x))
		}
	}
	for id := range e.announced {
		if !live[id] {
			delete(e.announced, id)
		}
	}
}

// markAnnounced treats everything already finished in a restored state as
// announced, so a reboot does not repeat old notifications.
func (e *Engine) markAnnounced(s player.State, now time.Time) {
	for _, j := range s.Jobs {
		if j.Ready(now) {
			e.announced[j.ID] = true
		}
	}
	for _, x := range s.Expeditions {
		if x.Returned(now) {
			e.announced[x.ID] = true
		}
	}
}

// apply runs one command transition under the engine lock. The state is only
// replaced when the transition succeeds.
func apply[R any](e *Engine, name string, fn func(s player.State, now time.Time) (player.State, R, error)) (R, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	next, res, err := fn(e.state, now)
	invariant := IsInvariant(err)
	e.metrics.RecordCommand(name, err, invariant)
	if err != nil {
		if invariant {
			e.logger.Error(fmt.Sprintf("[CMD] %s failed on corrupted state: %v", name, err))
		} else {
			e.logger.Warn(fmt.Sprintf("[CMD] %s rejected: %v", name, err))
		}
		var zero R
		return zero, err
	}
	e.state = next
	return res, nil
}

func (e *Engine) StartDrilling() (LocationPayload, error) {
	return apply(e, "start_drilling", e.drillingSystem.StartDrilling)
}

func (e *Engine) StopDrilling() (LocationPayload, error) {
	return apply(e, "stop_drilling", e.drillingSystem.StopDrilling)
}

func (e *Engine) ReturnToCity() (LocationPayload, error) {
	return apply(e, "return_to_city", e.drillingSystem.ReturnToCity)
}

// Strike is a manual click on the rock face.
func (e *Engine) Strike() (StrikeResult, error) {
	return apply(e, "strike", func(s player.State, now time.Time) (player.State, StrikeResult, error) {
		return e.drillingSystem.Strike(s, now, e.rng.Float64()*100)
	})
}

// AttemptVent scores a vent at the current pulse phase.
func (e *Engine) AttemptVent() (VentResult, error) {
	return apply(e, "attempt_vent", e.thermalSystem.AttemptVent)
}

func (e *Engine) StartCraft(partID string, slot part.Slot) (crafting.Job, error) {
	return apply(e, "start_craft", func(s player.State, now time.Time) (player.State, crafting.Job, error) {
		return e.craftingSystem.Start(s, partID, slot, now)
	})
}

func (e *Engine) CollectCraftedItem(jobID string) (CraftCollected, error) {
	return apply(e, "collect_craft", func(s player.State, now time.Time) (player.State, CraftCollected, error) {
		return e.craftingSystem.Collect(s, jobID, now)
	})
}

func (e *Engine) CancelCraft(jobID string) (CraftCancelled, error) {
	return apply(e, "cancel_craft", func(s player.State, now time.Time) (player.State, CraftCancelled, error) {
		return e.craftingSystem.Cancel(s, jobID, now)
	})
}

func (e *Engine) LaunchExpedition(diff expedition.Difficulty, drones int, target resource.Kind) (expedition.Expedition, error) {
	return apply(e, "launch_expedition", func(s player.State, now time.Time) (player.State, expedition.Expedition, error) {
		return e.expeditionSystem.Launch(s, diff, drones, target, e.rng.Uint64(), now)
	})
}

func (e *Engine) CollectRewards(id string) (ExpeditionCollected, error) {
	return apply(e, "collect_rewards", func(s player.State, now time.Time) (player.State, ExpeditionCollected, error) {
		return e.expeditionSystem.Collect(s, id, now)
	})
}

func (e *Engine) EquipPart(itemID string) (PartSwap, error) {
	return apply(e, "equip_part", func(s player.State, now time.Time) (player.State, PartSwap, error) {
		return e.equipmentSystem.EquipPart(s, itemID, now)
	})
}

func (e *Engine) ScrapItem(itemID string) (ScrapResult, error) {
	return apply(e, "scrap_item", func(s player.State, now time.Time) (player.State, ScrapResult, error) {
		return e.equipmentSystem.Scrap(s, itemID, now)
	})
}

func (e *Engine) AnalyzeArtifact(id string) (artifact.Instance, error) {
	return apply(e, "analyze_artifact", func(s player.State, now time.Time) (player.State, artifact.Instance, error) {
		return e.equipmentSystem.Analyze(s, id, now)
	})
}

func (e *Engine) EquipArtifact(id string) (artifact.Instance, error) {
	return apply(e, "equip_artifact", func(s player.State, now time.Time) (player.State, artifact.Instance, error) {
		return e.equipmentSystem.EquipArtifact(s, id, now)
	})
}

func (e *Engine) UnequipArtifact(id string) (artifact.Instance, error) {
	return apply(e, "unequip_artifact", func(s player.State, now time.Time) (player.State, artifact.Instance, error) {
		return e.equipmentSystem.UnequipArtifact(s, id, now)
	})
}

func (e *Engine) TransmuteArtifacts(ids []string) (TransmuteResult, error) {
	return apply(e, "transmute_artifacts", func(s player.State, now time.Time) (player.State, TransmuteResult, error) {
		return e.equipmentSystem.Transmute(s, ids, e.rng.Float64(), now)
	})
}

func (e *Engine) TradeResources(from, to resource.Kind, amount float64) (TradeResult, error) {
	return apply(e, "trade_resources", func(s player.State, now time.Time) (player.State, TradeResult, error) {
		return e.economySystem.Trade(s, from, to, amount, now)
	})
}

func (e *Engine) RepairHull() (ServiceResult, error) {
	return apply(e, "repair_hull", e.economySystem.Repair)
}

func (e *Engine) HealHeat() (ServiceResult, error) {
	return apply(e, "heal_heat", e.economySystem.Heal)
}

func (e *Engine) GambleResources(kind resource.Kind, stake float64) (GambleOutcome, error) {
	return apply(e, "gamble_resources", func(s player.State, now time.Time) (player.State, GambleOutcome, error) {
		return e.economySystem.Gamble(s, kind, stake, e.rng.Float64()*100, now)
	})
}

func (e *Engine) FusionUpgrade(recipeID string) (FusionResult, error) {
	return apply(e, "fusion_upgrade", func(s player.State, now time.Time) (player.State, FusionResult, error) {
		return e.economySystem.Fusion(s, recipeID, now)
	})
}

func (e *Engine) BuyCityBuff(buffID string) (effect.Active, error) {
	return apply(e, "buy_city_buff", func(s player.State, now time.Time) (player.State, effect.Active, error) {
		return e.economySystem.BuyBuff(s, buffID, now)
	})
}

func (e *Engine) BuyDrone() (PurchaseResult, error) {
	return apply(e, "buy_drone", e.economySystem.BuyDrone)
}

func (e *Engine) UpgradeSkill(skillID string) (SkillResult, error) {
	return apply(e, "upgrade_skill", func(s player.State, now time.Time) (player.State, SkillResult, error) {
		return e.economySystem.UpgradeSkill(s, skillID, now)
	})
}

func (e *Engine) BuyBlueprint(id string) (PurchaseResult, error) {
	return apply(e, "buy_blueprint", func(s player.State, now time.Time) (player.State, PurchaseResult, error) {
		return e.economySystem.BuyBlueprint(s, id, now)
	})
}

func (e *Engine) BuyLicense(id string) (PurchaseResult, error) {
	return apply(e, "buy_license", func(s player.State, now time.Time) (player.State, PurchaseResult, error) {
		return e.economySystem.BuyLicense(s, id, now)
	})
}

// Snapshot returns a deep copy of the state, stamped with the save time.
func (e *Engine) Snapshot() player.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state.Clone()
	s.SavedAt = e.clock.Now()
	return s
}

// Restore replaces the state, for example with a save loaded at boot.
func (e *Engine) Restore(s player.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	e.state = s.Clone()
	e.lastTick = now
	e.announced = make(map[string]bool)
	e.markAnnounced(s, now)
	e.logger.Info(fmt.Sprintf("Restored state for %s saved at %s", s.PlayerID, s.SavedAt.Format(time.RFC3339)))
}

// Stats is the read-only resolved stats view.
func (e *Engine) Stats() (stats.Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return rules.ResolveState(e.state, e.data.Catalogs(), e.clock.Now())
}

// Data exposes the loaded catalog content.
func (e *Engine) Data() *gamedata.Data {
	return e.data
}

// GetEventLog exposes the event ledger.
func (e *Engine) GetEventLog() *events.EventLog {
	return e.eventLog
}

// JobView is a crafting job with its status derived at the view time.
type JobView struct {
	crafting.Job
	Status    crafting.Status `json:"status"`
	Progress  float64         `json:"progress"`
	Remaining time.Duration   `json:"remaining"`
}

// ExpeditionView is an expedition with its return state derived at the view time.
type ExpeditionView struct {
	expedition.Expedition
	Returned  bool          `json:"returned"`
	Remaining time.Duration `json:"remaining"`
}

// StatusView is the dashboard read model.
type StatusView struct {
	At          time.Time        `json:"at"`
	PlayerID    string           `json:"player_id"`
	Location    player.Location  `json:"location"`
	Drilling    bool             `json:"drilling"`
	Depth       float64          `json:"depth"`
	MaxDepth    float64          `json:"max_depth"`
	Biome       string           `json:"biome"`
	Integrity   float64          `json:"integrity"`
	Heat        float64          `json:"heat"`
	Phase       thermal.Phase    `json:"phase"`
	Combo       int              `json:"combo"`
	PulsePhase  float64          `json:"pulse_phase"`
	VentReady   bool             `json:"vent_ready"`
	Stats       stats.Stats      `json:"stats"`
	Resources   resource.Bundle  `json:"resources"`
	Drones      int              `json:"drones"`
	DronesAway  int              `json:"drones_away"`
	Jobs        []JobView        `json:"jobs"`
	Expeditions []ExpeditionView `json:"expeditions"`
	Effects     []effect.Active  `json:"effects"`
	Totals      player.Totals    `json:"totals"`
}

// Status builds the dashboard view at the clock's now.
func (e *Engine) Status() (StatusView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return BuildStatus(e.state, e.data, e.clock.Now())
}

// BuildStatus derives the dashboard view of any state, live or loaded from a save.
func BuildStatus(s player.State, data *gamedata.Data, now time.Time) (StatusView, error) {
	st, err := rules.ResolveState(s, data.Catalogs(), now)
	if err != nil {
		return StatusView{}, err
	}
	v := StatusView{
		At:         now,
		PlayerID:   s.PlayerID,
		Location:   s.Location,
		Drilling:   s.Drilling,
		Depth:      s.Depth,
		MaxDepth:   s.Progress.MaxDepth,
		Biome:      data.Biomes.ForDepth(s.Depth).Name,
		Integrity:  s.Integrity,
		Heat:       s.Thermal.Heat,
		Phase:      s.Thermal.Phase(),
		Combo:      s.Thermal.Combo,
		PulsePhase: s.Thermal.PulsePhase,
		VentReady:  !s.Thermal.CoolingDown(now),
		Stats:      st,
		Resources:  s.Resources.Clone(),
		Drones:     s.Drones,
		DronesAway: s.DronesAway(),
		Effects:    effect.Prune(s.Effects, now),
		Totals:     s.Totals,
	}
	for _, j := range s.Jobs {
		v.Jobs = append(v.Jobs, JobView{Job: j, Status: j.Status(now), Progress: j.Progress(now), Remaining: j.Remaining(now)})
	}
	for _, x := range s.Expeditions {
		v.Expeditions = append(v.Expeditions, ExpeditionView{Expedition: x, Returned: x.Returned(now), Remaining: x.Remaining(now)})
	}
	return v, nil
}
