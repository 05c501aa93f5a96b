package root

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/config"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/gamedata"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/infra/storage"
)

// store is everything a read-only command needs.
type store struct {
	db       *sql.DB
	saves    *storage.SQLiteSaveRepository
	events   *storage.SQLiteEventRepository
	data     *gamedata.Data
	playerID string
}

func openStore() (*store, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	path := cfg.Server.DBPath
	if opts.dbPath != "" {
		path = opts.dbPath
	}
	playerID := cfg.Server.PlayerID
	if opts.playerID != "" {
		playerID = opts.playerID
	}
	data, err := gamedata.Load(cfg.Server.CatalogPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.InitSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return &store{
		db:       db,
		saves:    storage.NewSQLiteSaveRepository(db),
		events:   storage.NewSQLiteEventRepository(db),
		data:     data,
		playerID: playerID,
	}, cleanup, nil
}

func (s *store) loadSave(ctx context.Context) (player.State, error) {
	st, ok, err := s.saves.Load(ctx, s.playerID)
	if err != nil {
		return player.State{}, err
	}
	if !ok {
		return player.State{}, fmt.Errorf("no save for player %q", s.playerID)
	}
	return st, nil
}
