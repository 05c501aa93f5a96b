package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
)

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tuning.Crafting.CancelRefundPct != 50 {
		t.Errorf("expected 50%% cancel refund, got %v", cfg.Tuning.Crafting.CancelRefundPct)
	}
	if cfg.Tuning.Vent.BaseCooldown != 3*time.Second {
		t.Errorf("expected 3s vent cooldown, got %v", cfg.Tuning.Vent.BaseCooldown)
	}
	if cfg.Tuning.Expeditions[expedition.Easy].CostPerDrone[resource.Clay] != 20 {
		t.Errorf("expected easy expeditions to cost 20 clay per drone")
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "drill.yaml")
	body := "server:\n  addr: \":9999\"\ntuning:\n  heat:\n    base_rate: 4\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Act
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Assert
	if cfg.Server.Addr != ":9999" || cfg.Tuning.Heat.BaseRate != 4 {
		t.Errorf("overrides not applied: %+v", cfg.Server)
	}
	if cfg.Tuning.Heat.PerTier != 0.4 || cfg.Server.TickInterval != 100*time.Millisecond {
		t.Errorf("defaults lost for keys the file did not set")
	}
}

func TestLoadMergesSingleExpeditionField(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "drill.yaml")
	body := "tuning:\n  expeditions:\n    hard:\n      duration: 3h\n    easy:\n      cost_per_drone: {stone: 5}\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	defaults, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	// Act
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Assert
	hard := cfg.Tuning.Expeditions[expedition.Hard]
	want := defaults.Tuning.Expeditions[expedition.Hard]
	if hard.Duration != 3*time.Hour {
		t.Errorf("expected hard duration 3h, got %v", hard.Duration)
	}
	if hard.License != want.License || hard.RewardPerDrone != want.RewardPerDrone || hard.FailurePct != want.FailurePct {
		t.Errorf("hard row lost its defaults: %+v", hard)
	}
	if hard.CostPerDrone[resource.Iron] != want.CostPerDrone[resource.Iron] || hard.CostPerDrone[resource.Silver] != want.CostPerDrone[resource.Silver] {
		t.Errorf("hard launch cost lost: %v", hard.CostPerDrone)
	}
	easy := cfg.Tuning.Expeditions[expedition.Easy]
	if easy.CostPerDrone[resource.Stone] != 5 || easy.CostPerDrone[resource.Clay] != 0 {
		t.Errorf("expected the easy cost replaced by 5 stone, got %v", easy.CostPerDrone)
	}
	if easy.Duration != 10*time.Minute {
		t.Errorf("easy duration should keep its default, got %v", easy.Duration)
	}
	if len(cfg.Tuning.Expeditions) != len(expedition.Difficulties) {
		t.Errorf("expected untouched rows to survive, got %d rows", len(cfg.Tuning.Expeditions))
	}
}

func TestValidateRejectsBrokenRiskTable(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	row := cfg.Tuning.Expeditions[expedition.Hard]
	row.FailurePct = 80
	row.PartialPct = 30
	cfg.Tuning.Expeditions[expedition.Hard] = row

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected risk percentages above 100 to be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
