// Package main is the entry point for the drill simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/config"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/player"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/engine"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/events"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/gamedata"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/infra/cache"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/infra/storage"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/network"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/logger"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/metrics"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/optimization"
)

type flags struct {
	configPath string
	addr       string
	dbPath     string
	profile    string
	playerID   string
}

func main() {
	var f flags
	cmd := &cobra.Command{
		Use:           "drill-server",
		Short:         "Authoritative simulation server for the deep-core drill",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "YAML file overriding the embedded defaults")
	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&f.dbPath, "db", "", "SQLite path (overrides server.db_path)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "optimization profile: default, stress, low")
	cmd.Flags().StringVar(&f.playerID, "player", "", "player id (overrides server.player_id)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "[DRILL-SERVER] "+err.Error())
		os.Exit(1)
	}
}

func run(f flags) error {
	appLogger := logger.NewLogger()
	appLogger.Info("[DRILL-SERVER] Initializing deep-core drill server...")

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyOverrides(&cfg.Server, f)

	data, err := gamedata.Load(cfg.Server.CatalogPath)
	if err != nil {
		return err
	}
	opt, err := optimization.Profile(cfg.Server.Profile)
	if err != nil {
		return err
	}
	m := metrics.Get()

	appLogger.Info(fmt.Sprintf("Initializing SQLite database '%s'...", cfg.Server.DBPath))
	db, err := storage.InitSQLite(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	storage.ConfigurePool(db, opt)

	eventRepo := storage.NewSQLiteEventRepository(db)
	saveRepo := storage.NewSQLiteSaveRepository(db)

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(storage.NewLedgerPersister(eventRepo, m))
	eventLog.OnPersistError(func(e events.GameEvent, err error) {
		appLogger.Error(fmt.Sprintf("Failed to persist %s %s: %v", e.Type, e.ID, err))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state, err := bootstrapPlayer(ctx, saveRepo, eventRepo, data, cfg.Server.PlayerID, appLogger)
	if err != nil {
		return err
	}

	appLogger.Info("Bootstrapping Engine Subsystems...")
	gameEngine := engine.NewEngine(state, data, &cfg.Tuning, eventLog, appLogger, engine.Options{
		Metrics:      m,
		TickInterval: cfg.Server.TickInterval,
		MaxTick:      cfg.Server.MaxTick,
	})
	gameEngine.Start(ctx)

	// Automated state backup routine
	go backupLoop(ctx, gameEngine, saveRepo, cfg.Server.BackupInterval, m, appLogger)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(gameEngine, appLogger, m, opt)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	cacheSize := cfg.Server.CacheSize
	if cacheSize <= 0 {
		cacheSize = opt.CacheSize
	}
	responses := cache.NewResponseCache(cacheSize, cfg.Server.CacheTTL, m)

	mux := http.NewServeMux()
	network.NewCommandAPI(gameEngine, hub, appLogger).RegisterRoutes(mux)
	network.NewLedgerAPI(cfg.Server.PlayerID, eventRepo, responses, appLogger).RegisterRoutes(mux)
	mux.HandleFunc("/metrics", m.Handler())
	mux.HandleFunc("/metrics/prometheus", m.PrometheusHandler())

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		appLogger.Info(fmt.Sprintf("[DRILL-SERVER] HTTP API & WS Server listening on %s", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed: " + err.Error())
			cancel()
		}
	}()

	appLogger.Info("[DRILL-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	appLogger.Info("[DRILL-SERVER] Shutting down...")
	gameEngine.Stop()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	srv.Shutdown(shutdownCtx)

	err = saveRepo.Save(shutdownCtx, gameEngine.Snapshot())
	m.RecordSnapshot(err)
	if err != nil {
		return fmt.Errorf("final save failed: %w", err)
	}
	appLogger.Info("[DRILL-SERVER] Final save written.")
	return nil
}

func applyOverrides(s *config.ServerConfig, f flags) {
	if f.addr != "" {
		s.Addr = f.addr
	}
	if f.dbPath != "" {
		s.DBPath = f.dbPath
	}
	if f.profile != "" {
		s.Profile = f.profile
	}
	if f.playerID != "" {
		s.PlayerID = f.playerID
	}
}

// bootstrapPlayer loads the player's save, or seeds a new game when there is
// none. A loaded save also logs what the ledger recorded since it was written.
func bootstrapPlayer(ctx context.Context, saves *storage.SQLiteSaveRepository, evs *storage.SQLiteEventRepository, data *gamedata.Data, playerID string, appLogger *logger.Logger) (player.State, error) {
	appLogger.Info("Checking DB for an existing save...")
	s, ok, err := saves.Load(ctx, playerID)
	if err != nil {
		return player.State{}, fmt.Errorf("failed to load save of %s: %w", playerID, err)
	}
	if !ok {
		appLogger.Info(fmt.Sprintf("No save for %s. Seeding a fresh drill...", playerID))
		s, err = player.New(playerID, data.Parts, time.Now(), events.GenerateEventID)
		if err != nil {
			return player.State{}, err
		}
		if err := saves.Save(ctx, s); err != nil {
			return player.State{}, err
		}
		return s, nil
	}

	appLogger.Info(fmt.Sprintf("Restored save of %s from %s", playerID, s.SavedAt.Format(time.RFC3339)))
	recap, err := storage.NewReconstructor(evs).GenerateRecap(ctx, playerID, s.SavedAt)
	if err != nil {
		appLogger.Warn("Could not build the away recap: " + err.Error())
		return s, nil
	}
	for _, line := range recap.Events {
		appLogger.Info("[RECAP] " + line.Summary)
	}
	return s, nil
}

func backupLoop(ctx context.Context, eng *engine.Engine, saves *storage.SQLiteSaveRepository, every time.Duration, m *metrics.Collector, appLogger *logger.Logger) {
	if every <= 0 {
		every = time.Minute
	}
	backupTicker := time.NewTicker(every)
	defer backupTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-backupTicker.C:
			err := saves.Save(ctx, eng.Snapshot())
			m.RecordSnapshot(err)
			if err != nil {
				appLogger.Error("Backup failed: " + err.Error())
				continue
			}
			for _, note := range optimization.Analyze(m.Snapshot()).Notes {
				appLogger.Warn("[TUNING] " + note)
			}
		}
	}
}
