// Package metrics provides observability for the drill server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Stat aggregator
	ResolveCount      int64
	ResolveLatencySum int64

	// Commands
	CommandsAccepted int64
	CommandsRejected int64
	InvariantErrors  int64
	rejectedBy       map[string]int64

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// Persistence
	SnapshotsWritten int64
	SnapshotErrors   int64
	CacheHits        int64
	CacheMisses      int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// New returns an empty collector.
func New() *Collector {
	return &Collector{StartTime: time.Now(), rejectedBy: make(map[string]int64)}
}

// Global collector instance
var collector = New()

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordResolve records one stat aggregation.
func (c *Collector) RecordResolve(latency time.Duration) {
	atomic.AddInt64(&c.ResolveCount, 1)
	atomic.AddInt64(&c.ResolveLatencySum, int64(latency))
}

// RecordCommand records the outcome of a player command.
func (c *Collector) RecordCommand(name string, err error, invariant bool) {
	if err == nil {
		atomic.AddInt64(&c.CommandsAccepted, 1)
		return
	}
	if invariant {
		atomic.AddInt64(&c.InvariantErrors, 1)
	}
	atomic.AddInt64(&c.CommandsRejected, 1)
	c.mu.Lock()
	c.rejectedBy[name]++
	c.mu.Unlock()
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordSnapshot records a save snapshot write.
func (c *Collector) RecordSnapshot(err error) {
	if err != nil {
		atomic.AddInt64(&c.SnapshotErrors, 1)
		return
	}
	atomic.AddInt64(&c.SnapshotsWritten, 1)
}

// RecordCache records a snapshot cache lookup.
func (c *Collector) RecordCache(hit bool) {
	if hit {
		atomic.AddInt64(&c.CacheHits, 1)
	} else {
		atomic.AddInt64(&c.CacheMisses, 1)
	}
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	resolveCount := atomic.LoadInt64(&c.ResolveCount)
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	// Calculate averages
	var tickAvg, resolveAvg, eventAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if resolveCount > 0 {
		resolveAvg = float64(atomic.LoadInt64(&c.ResolveLatencySum)) / float64(resolveCount) / 1e3 // µs
	}
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6
	}

	rejected := make(map[string]int64, len(c.rejectedBy))
	for k, v := range c.rejectedBy {
		rejected[k] = v
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"resolve": map[string]interface{}{
			"count":          resolveCount,
			"avg_latency_us": resolveAvg,
		},

		"commands": map[string]interface{}{
			"accepted":    atomic.LoadInt64(&c.CommandsAccepted),
			"rejected":    atomic.LoadInt64(&c.CommandsRejected),
			"invariants":  atomic.LoadInt64(&c.InvariantErrors),
			"rejected_by": rejected,
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"persistence": map[string]interface{}{
			"snapshots_written": atomic.LoadInt64(&c.SnapshotsWritten),
			"snapshot_errors":   atomic.LoadInt64(&c.SnapshotErrors),
			"cache_hits":        atomic.LoadInt64(&c.CacheHits),
			"cache_misses":      atomic.LoadInt64(&c.CacheMisses),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		counter := func(name, help string, v int64) {
			fmt.Fprintf(w, "# HELP %s %s\n", name, help)
			fmt.Fprintf(w, "# TYPE %s counter\n", name)
			fmt.Fprintf(w, "%s %d\n\n", name, v)
		}

		counter("drill_tick_count", "Total tick cycles", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP drill_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE drill_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "drill_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		counter("drill_resolve_count", "Stat aggregations performed", atomic.LoadInt64(&c.ResolveCount))
		counter("drill_commands_accepted", "Commands applied", atomic.LoadInt64(&c.CommandsAccepted))
		counter("drill_invariant_errors", "Commands failed on corrupted state", atomic.LoadInt64(&c.InvariantErrors))

		c.mu.RLock()
		names := make([]string, 0, len(c.rejectedBy))
		for k := range c.rejectedBy {
			names = append(names, k)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "# HELP drill_commands_rejected Commands rejected with no state change\n")
		fmt.Fprintf(w, "# TYPE drill_commands_rejected counter\n")
		for _, n := range names {
			fmt.Fprintf(w, "drill_commands_rejected{command=%q} %d\n", n, c.rejectedBy[n])
		}
		fmt.Fprintln(w)
		c.mu.RUnlock()

		counter("drill_events_written", "Total events written", atomic.LoadInt64(&c.EventsWritten))
		counter("drill_event_write_errors", "Total event write errors", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP drill_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE drill_ws_connections gauge\n")
		fmt.Fprintf(w, "drill_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP drill_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE drill_ws_messages_total counter\n")
		fmt.Fprintf(w, "drill_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "drill_ws_messages_total{direction=\"out\"} %d\n\n", atomic.LoadInt64(&c.WSMessagesOut))

		counter("drill_snapshots_written", "Save snapshots persisted", atomic.LoadInt64(&c.SnapshotsWritten))
		counter("drill_snapshot_errors", "Save snapshot failures", atomic.LoadInt64(&c.SnapshotErrors))
	}
}
