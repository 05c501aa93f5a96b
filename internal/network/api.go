// Package network exposes the engine over HTTP and WebSocket.
//
// CommandAPI is the request/response surface: one POST endpoint that takes
// an Intent, plus read endpoints for the dashboard. The WebSocket hub carries
// the same intents and streams the ledger.
package network

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/engine"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/logger"
)

// CommandAPI handles player commands over REST.
type CommandAPI struct {
	engine *engine.Engine
	hub    *Hub
	logger *logger.Logger
}

// NewCommandAPI creates the command endpoints. hub may be nil.
func NewCommandAPI(eng *engine.Engine, hub *Hub, log *logger.Logger) *CommandAPI {
	return &CommandAPI{engine: eng, hub: hub, logger: log}
}

// HandleCommand runs one intent.
// POST /api/command
func (a *CommandAPI) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageSize))
	if err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	in, err := ParseIntent(raw)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply := Execute(a.engine, in)
	jsonReply(w, reply, statusFor(reply, a.logger))
}

// HandleStatus returns the dashboard view.
// GET /api/status
func (a *CommandAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	view, err := a.engine.Status()
	if err != nil {
		a.logger.Error(fmt.Sprintf("[API] status failed: %v", err))
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonReply(w, view, http.StatusOK)
}

// HandleStats returns the resolved drill stats.
// GET /api/stats
func (a *CommandAPI) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st, err := a.engine.Stats()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	online := 0
	if a.hub != nil {
		online = a.hub.ClientCount()
	}
	jsonReply(w, map[string]interface{}{
		"stats":          st,
		"clients_online": online,
	}, http.StatusOK)
}

// RegisterRoutes sets up the command API routes.
func (a *CommandAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/command", a.HandleCommand)
	mux.HandleFunc("/api/status", a.HandleStatus)
	mux.HandleFunc("/api/stats", a.HandleStats)
	if a.hub != nil {
		mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWS(a.hub, w, r)
		})
	}
}

// statusFor maps a reply to an HTTP status: rejections are the player's
// problem, bad arguments are the client's, invariant errors are ours.
func statusFor(r Reply, log *logger.Logger) int {
	switch {
	case r.OK:
		return http.StatusOK
	case r.Rejection:
		return http.StatusConflict
	case engine.IsInvariant(r.err):
		log.Error(fmt.Sprintf("[API] %s hit an invariant: %v", r.Intent, r.err))
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// jsonError sends an error response.
func jsonError(w http.ResponseWriter, message string, status int) {
	jsonReply(w, map[string]string{"error": message}, status)
}

// jsonReply sends a JSON response.
func jsonReply(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
