package network

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/infra/cache"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/infra/storage"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/logger"
)

// LedgerAPI serves the persisted event history. Responses are cached for the
// cache TTL, so a page may lag the live feed by that much.
type LedgerAPI struct {
	playerID      string
	eventRepo     storage.EventRepository
	reconstructor *storage.Reconstructor
	cache         *cache.ResponseCache
	logger        *logger.Logger
	now           func() time.Time
}

// NewLedgerAPI creates the ledger endpoints for one player.
func NewLedgerAPI(playerID string, repo storage.EventRepository, c *cache.ResponseCache, log *logger.Logger) *LedgerAPI {
	return &LedgerAPI{
		playerID:      playerID,
		eventRepo:     repo,
		reconstructor: storage.NewReconstructor(repo),
		cache:         c,
		logger:        log,
		now:           time.Now,
	}
}

// LedgerPage is one page of stored events.
type LedgerPage struct {
	PlayerID string                `json:"player_id"`
	After    int64                 `json:"after"`
	Next     int64                 `json:"next"` // pass as after= to continue
	Events   []storage.StoredEvent `json:"events"`
}

// HandleLedger pages through the ledger in append order.
// GET /api/ledger?after=SEQ&limit=N&type=EVENT_TYPE
func (la *LedgerAPI) HandleLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	after, err := parseInt(q.Get("after"), 0)
	if err != nil || after < 0 {
		jsonError(w, "Invalid after", http.StatusBadRequest)
		return
	}
	limit, err := parseInt(q.Get("limit"), 100)
	if err != nil || limit <= 0 || limit > 1000 {
		jsonError(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	eventType := q.Get("type")

	key := cache.PlayerKey(la.playerID, fmt.Sprintf("ledger:%d:%d:%s", after, limit, eventType))
	body, err := la.cache.GetOrLoad(key, func() (interface{}, error) {
		return la.page(r.Context(), after, int(limit), eventType)
	})
	if err != nil {
		la.logger.Error(fmt.Sprintf("[LEDGER] page after %d failed: %v", after, err))
		jsonError(w, "Ledger unavailable", http.StatusInternalServerError)
		return
	}
	writeBody(w, body)
}

func (la *LedgerAPI) page(ctx context.Context, after int64, limit int, eventType string) (LedgerPage, error) {
	page := LedgerPage{PlayerID: la.playerID, After: after, Next: after, Events: []storage.StoredEvent{}}
	var (
		evs []storage.StoredEvent
		err error
	)
	if eventType == "" {
		evs, err = la.eventRepo.Page(ctx, la.playerID, after, limit)
	} else {
		evs, err = la.eventRepo.GetByEventType(ctx, la.playerID, eventType)
		evs = afterSeq(evs, after, limit)
	}
	if err != nil {
		return page, err
	}
	if len(evs) > 0 {
		page.Events = evs
		page.Next = evs[len(evs)-1].Seq
	}
	return page, nil
}

// HandleRecap returns the "while you were away" report.
// GET /api/recap?since=RFC3339 or ?window=DURATION (default 24h)
func (la *LedgerAPI) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	since, err := la.parseSince(r.URL.Query().Get("since"), r.URL.Query().Get("window"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := cache.PlayerKey(la.playerID, "recap:"+since.UTC().Format(time.RFC3339))
	body, err := la.cache.GetOrLoad(key, func() (interface{}, error) {
		return la.reconstructor.GenerateRecap(r.Context(), la.playerID, since)
	})
	if err != nil {
		la.logger.Error(fmt.Sprintf("[LEDGER] recap since %s failed: %v", since.Format(time.RFC3339), err))
		jsonError(w, "Recap unavailable", http.StatusInternalServerError)
		return
	}
	writeBody(w, body)
}

// RegisterRoutes sets up the ledger API routes.
func (la *LedgerAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/ledger", la.HandleLedger)
	mux.HandleFunc("/api/recap", la.HandleRecap)
}

func (la *LedgerAPI) parseSince(since, window string) (time.Time, error) {
	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid since: %w", err)
		}
		return t, nil
	}
	d := 24 * time.Hour
	if window != "" {
		parsed, err := time.ParseDuration(window)
		if err != nil || parsed <= 0 {
			return time.Time{}, fmt.Errorf("invalid window %q", window)
		}
		d = parsed
	}
	// Truncate so repeated polls share a cache entry.
	return la.now().Add(-d).Truncate(time.Minute), nil
}

func afterSeq(evs []storage.StoredEvent, after int64, limit int) []storage.StoredEvent {
	out := make([]storage.StoredEvent, 0, limit)
	for _, e := range evs {
		if e.Seq <= after {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out
}

func parseInt(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
