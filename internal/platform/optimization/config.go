// Package optimization provides buffer and pool sizing for the drill server.
// A profile is picked by name from the server config; Analyze can suggest a
// bigger one from live metrics.
package optimization

import (
	"fmt"
	"runtime"
	"time"
)

// Config holds tuned parameters for one load profile.
type Config struct {
	// Channel buffer sizes
	BroadcastChannelBuffer int // hub fan-out queue
	ClientSendBuffer       int // per WebSocket

	// Ledger polling by the hub
	EventPollInterval time.Duration

	// Connection pools
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Snapshot cache entries
	CacheSize int

	// Rate limiting
	MaxMessagesPerSecond int // per client
	MaxClients           int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		BroadcastChannelBuffer: 256,
		ClientSendBuffer:       64,

		EventPollInterval: 100 * time.Millisecond,

		// SQLite serialises writers; extra connections only help readers.
		DBMaxOpenConns: numCPU * 2,
		DBMaxIdleConns: numCPU,

		CacheSize: 64,

		MaxMessagesPerSecond: 30,
		MaxClients:           50,
	}
}

// StressTestConfig returns aggressive settings for drill-bot load runs.
func StressTestConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		BroadcastChannelBuffer: 1024,
		ClientSendBuffer:       256,

		EventPollInterval: 50 * time.Millisecond,

		DBMaxOpenConns: numCPU * 4,
		DBMaxIdleConns: numCPU * 2,

		CacheSize: 256,

		MaxMessagesPerSecond: 500,
		MaxClients:           500,
	}
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	return &Config{
		BroadcastChannelBuffer: 16,
		ClientSendBuffer:       8,

		EventPollInterval: 250 * time.Millisecond,

		DBMaxOpenConns: 2,
		DBMaxIdleConns: 1,

		CacheSize: 8,

		MaxMessagesPerSecond: 10,
		MaxClients:           5,
	}
}

// Profile resolves a profile name from the server config.
func Profile(name string) (*Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "stress":
		return StressTestConfig(), nil
	case "low":
		return LowResourceConfig(), nil
	}
	return nil, fmt.Errorf("unknown optimization profile %q", name)
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseBroadcastBuffer bool
	IncreaseDBConnections   bool
	SlowTick                bool
	Notes                   []string
}

// Analyze examines a metrics.Collector snapshot and returns recommendations.
func Analyze(metrics map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	// The whole tick runs under the engine lock; slow ticks stall commands.
	if tick, ok := metrics["tick"].(map[string]interface{}); ok {
		if maxLat, ok := tick["max_latency_ms"].(float64); ok && maxLat > 50 {
			rec.SlowTick = true
			rec.Notes = append(rec.Notes, "Tick latency exceeds 50ms - raise tick_interval or trim the catalog")
		}
	}

	if events, ok := metrics["events"].(map[string]interface{}); ok {
		if maxLat, ok := events["max_write_lat_ms"].(float64); ok && maxLat > 50 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Event write latency exceeds 50ms - increase DB connections")
		}
		if errors, ok := events["errors"].(int64); ok && errors > 0 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Event write errors detected - check DB connection pool")
		}
	}

	if ws, ok := metrics["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseBroadcastBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	return rec
}

// ApplyRecommendations modifies config based on recommendations.
func ApplyRecommendations(config *Config, rec *Recommendations) *Config {
	if rec.IncreaseBroadcastBuffer {
		config.BroadcastChannelBuffer *= 2
		config.ClientSendBuffer *= 2
	}
	if rec.IncreaseDBConnections {
		config.DBMaxOpenConns = int(float64(config.DBMaxOpenConns) * 1.5)
		config.DBMaxIdleConns = int(float64(config.DBMaxIdleConns) * 1.5)
	}
	if rec.SlowTick {
		config.EventPollInterval *= 2
	}
	return config
}
