package network

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/engine"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/logger"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/metrics"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/optimization"
)

// EventMessage is what the hub pushes for every ledger entry.
type EventMessage struct {
	Type  string           `json:"type"` // always "event"
	Event events.GameEvent `json:"event"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex

	engine  *engine.Engine
	logger  *logger.Logger
	metrics *metrics.Collector
	opt     *optimization.Config
}

// NewHub initializes a new WebSocket Hub.
func NewHub(eng *engine.Engine, log *logger.Logger, m *metrics.Collector, opt *optimization.Config) *Hub {
	if opt == nil {
		opt = optimization.DefaultConfig()
	}
	if m == nil {
		m = metrics.Get()
	}
	return &Hub{
		broadcast:  make(chan []byte, opt.BroadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		engine:     eng,
		logger:     log,
		metrics:    m,
		opt:        opt,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if len(h.clients) >= h.opt.MaxClients {
				h.mu.Unlock()
				h.logger.Warn("Client limit reached, refusing WebSocket connection")
				close(client.send)
				continue
			}
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					h.metrics.RecordWSMessage(false)
				default:
					// Slow consumer: drop it rather than stall the ledger feed.
					close(client.send)
					delete(h.clients, client)
					h.metrics.RecordWSConnection(-1)
					h.metrics.RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastEvent takes a GameEvent, serializes it to JSON, and queues it for every client.
func (h *Hub) BroadcastEvent(ctx context.Context, event events.GameEvent) {
	payload, err := json.Marshal(EventMessage{Type: "event", Event: event})
	if err != nil {
		h.logger.Error(fmt.Sprintf("Failed to serialize %s for WebSocket broadcast: %v", event.Type, err))
		return
	}
	select {
	case h.broadcast <- payload:
	case <-ctx.Done():
	}
}

// StartEventPoller spawns a goroutine that polls the EventLog and pushes new
// entries to the Hub. The hub never touches engine state; it only reads the
// ledger the engine appends to.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(h.opt.EventPollInterval)
		defer pollInterval.Stop()

		// Clients only get what happens after they could have connected.
		offset := eventLog.Len()

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				fresh := eventLog.From(offset)
				for _, event := range fresh {
					h.BroadcastEvent(ctx, event)
				}
				offset += len(fresh)
			}
		}
	}()
}
