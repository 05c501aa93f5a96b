package engine

import (
	"fmt"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/config"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/gamedata"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/logger"
)

// env carries what every system needs. Systems hold no game state of their
// own: each transition receives a player.State and returns the next one.
type env struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	data     *gamedata.Data
	tuning   *config.Tuning
	newID    func() string
}

func (v env) emit(s player.State, typ events.EventType, targetID string, now time.Time, payload interface{}) {
	v.eventLog.Append(events.New(typ, s.PlayerID, targetID, now, s.Depth, payload))
}

func (v env) resolve(s player.State, now time.Time) (stats.Stats, error) {
	return rules.ResolveState(s, v.data.Catalogs(), now)
}

// spend deducts cost from s or rejects without touching it.
func spend(s *player.State, cost resource.Bundle) error {
	if !s.Resources.Covers(cost) {
		return fmt.Errorf("%w: missing %s", ErrInsufficientResources, s.Resources.Missing(cost))
	}
	s.Resources.Sub(cost)
	return nil
}

func requireCity(s player.State) error {
	if !s.InCity() {
		return fmt.Errorf("%w: drill is in the %s", ErrNotInCity, s.Location)
	}
	return nil
}
