package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/logger"
)

// DefaultTickRate is how often the simulation advances in real time.
const DefaultTickRate = 100 * time.Millisecond

// Ticker manages the game loop heartbeat.
// It does NOT know about heat or ore - only when to call Tick.
type Ticker struct {
	engine     *Engine
	logger     *logger.Logger
	interval   time.Duration
	tickNumber atomic.Int64
	stopOnce   sync.Once
	stopChan   chan struct{}
}

// NewTicker creates a new game ticker.
func NewTicker(e *Engine, interval time.Duration, log *logger.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultTickRate
	}
	return &Ticker{
		engine:   e,
		logger:   log,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the game loop. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Info(fmt.Sprintf("Engine Ticker started at %s per tick.", t.interval))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Engine Ticker stopped by context.")
			return
		case <-t.stopChan:
			t.logger.Info("Engine Ticker stopped manually.")
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

// Stop gracefully stops the ticker. Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}

// tick processes a single game tick. A corrupted state is logged by the
// engine and the loop keeps running so commands can still be served.
func (t *Ticker) tick() {
	n := t.tickNumber.Add(1)
	if _, err := t.engine.Tick(); err != nil && n%600 == 1 {
		t.logger.Error(fmt.Sprintf("Tick %d failed: %v", n, err))
	}
}

// TickNumber returns how many ticks have run.
func (t *Ticker) TickNumber() int64 {
	return t.tickNumber.Load()
}
