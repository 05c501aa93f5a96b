// Package config loads server settings and the gameplay tuning tables.
//
// Every number that shapes the feel of the game (heat curves, vent windows,
// expedition risk) lives here rather than in code. The embedded default.yaml
// is always decoded first; a file given on the command line only overrides
// the keys it sets, down to single fields of an expedition row. Resource
// costs are replaced whole.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/expedition"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the complete runtime configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Tuning Tuning       `yaml:"tuning"`
}

// ServerConfig covers process-level settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	DBPath         string        `yaml:"db_path"`
	PlayerID       string        `yaml:"player_id"`
	TickInterval   time.Duration `yaml:"tick_interval"`
	MaxTick        time.Duration `yaml:"max_tick"` // longest dt a single tick simulates
	BackupInterval time.Duration `yaml:"backup_interval"`
	CacheSize      int           `yaml:"cache_size"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	Profile        string        `yaml:"profile"` // optimization profile: default, stress, low
	CatalogPath    string        `yaml:"catalog_path"`
}

// CraftingParams tunes the build queue.
type CraftingParams struct {
	QueueSize       int     `yaml:"queue_size" json:"queue_size"`
	CancelRefundPct float64 `yaml:"cancel_refund_pct" json:"cancel_refund_pct"`
	ScrapRefundPct  float64 `yaml:"scrap_refund_pct" json:"scrap_refund_pct"`
}

// Tuning is the gameplay data table set.
type Tuning struct {
	Heat        rules.HeatParams                                  `yaml:"heat" json:"heat"`
	Vent        rules.VentParams                                  `yaml:"vent" json:"vent"`
	Drill       rules.DrillParams                                 `yaml:"drill" json:"drill"`
	Crafting    CraftingParams                                    `yaml:"crafting" json:"crafting"`
	Expeditions map[expedition.Difficulty]rules.DifficultyParams `yaml:"expeditions" json:"expeditions"`
	Economy     rules.EconomyParams                               `yaml:"economy" json:"economy"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode embedded config: %w", err)
	}
	return &cfg, nil
}

// Load decodes path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := overlay(cfg, raw); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay decodes raw over cfg. yaml.v3 merges into existing structs but
// builds map values from zero, so expedition rows are decoded one by one
// over their current values.
func overlay(cfg *Config, raw []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	rows := cut(child(root, "tuning"), "expeditions")
	if err := root.Decode(cfg); err != nil {
		return err
	}
	if rows == nil {
		return nil
	}
	if rows.Kind != yaml.MappingNode {
		return fmt.Errorf("tuning.expeditions must be a mapping")
	}
	if cfg.Tuning.Expeditions == nil {
		cfg.Tuning.Expeditions = map[expedition.Difficulty]rules.DifficultyParams{}
	}
	for i := 0; i+1 < len(rows.Content); i += 2 {
		d := expedition.Difficulty(rows.Content[i].Value)
		row := cfg.Tuning.Expeditions[d]
		if child(rows.Content[i+1], "cost_per_drone") != nil {
			// A cost is replaced whole, not merged per resource.
			row.CostPerDrone = nil
		}
		if err := rows.Content[i+1].Decode(&row); err != nil {
			return fmt.Errorf("tuning.expeditions.%s: %w", d, err)
		}
		cfg.Tuning.Expeditions[d] = row
	}
	return nil
}

// child returns the value node of key in a mapping node.
func child(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// cut removes key from a mapping node and returns its value node.
func cut(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			v := n.Content[i+1]
			n.Content = append(n.Content[:i], n.Content[i+2:]...)
			return v
		}
	}
	return nil
}

// Validate rejects tables the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.TickInterval <= 0 {
		return fmt.Errorf("server.tick_interval must be positive")
	}
	if c.Server.MaxTick < c.Server.TickInterval {
		return fmt.Errorf("server.max_tick must be at least tick_interval")
	}
	t := c.Tuning
	if t.Vent.PulseFrequency <= 0 {
		return fmt.Errorf("tuning.vent.pulse_frequency must be positive")
	}
	if t.Vent.PerfectWindow > t.Vent.GoodWindow {
		return fmt.Errorf("tuning.vent.perfect_window must not exceed good_window")
	}
	if t.Crafting.QueueSize <= 0 {
		return fmt.Errorf("tuning.crafting.queue_size must be positive")
	}
	if p := t.Crafting.CancelRefundPct; p < 0 || p > 100 {
		return fmt.Errorf("tuning.crafting.cancel_refund_pct must be within 0..100")
	}
	for _, d := range expedition.Difficulties {
		row, ok := t.Expeditions[d]
		if !ok {
			return fmt.Errorf("tuning.expeditions is missing %s", d)
		}
		if row.Duration <= 0 {
			return fmt.Errorf("tuning.expeditions.%s.duration must be positive", d)
		}
		if row.FailurePct < 0 || row.PartialPct < 0 || row.FailurePct+row.PartialPct > 100 {
			return fmt.Errorf("tuning.expeditions.%s: failure_pct + partial_pct must be within 0..100", d)
		}
	}
	return nil
}
