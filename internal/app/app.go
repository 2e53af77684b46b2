package app

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/riskibarqy/packers-hub/external/gridiron"
	"github.com/riskibarqy/packers-hub/internal/config"
	"github.com/riskibarqy/packers-hub/internal/domain/favorites"
	"github.com/riskibarqy/packers-hub/internal/infrastructure/repository/kvstore"
	"github.com/riskibarqy/packers-hub/internal/infrastructure/repository/remote"
	"github.com/riskibarqy/packers-hub/internal/infrastructure/storage"
	"github.com/riskibarqy/packers-hub/internal/platform/cache"
	"github.com/riskibarqy/packers-hub/internal/platform/logging"
	"github.com/riskibarqy/packers-hub/internal/platform/resilience"
	"github.com/riskibarqy/packers-hub/internal/usecase"
)

// Engine bundles the sync services behind one Start/Stop pair. The wiring is
// fixed: the schedule monitor's liveness signal gates the stats poller, and
// the favorites set is the poller's fan-out key.
type Engine struct {
	Client    *gridiron.Client
	Favorites *usecase.FavoritesService
	Search    *usecase.SearchService
	Roster    *usecase.RosterService
	Schedule  *usecase.ScheduleMonitor
	Stats     *usecase.StatsPoller

	unsubscribe []func()
}

func NewEngine(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Engine, error) {
	clock := clockwork.NewRealClock()

	client := gridiron.NewClient(gridiron.ClientConfig{
		BaseURL:    cfg.BackendBaseURL,
		Timeout:    cfg.BackendTimeout,
		MaxRetries: cfg.BackendMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.BackendCircuitEnabled,
			FailureThreshold: cfg.BackendCircuitFailureCount,
			OpenTimeout:      cfg.BackendCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.BackendCircuitHalfOpenMaxReq,
		},
	})

	favoritesRepo, err := buildFavoritesRepo(cfg, client, logger)
	if err != nil {
		return nil, err
	}

	favoritesSvc := usecase.NewFavoritesService(ctx, favoritesRepo, logger)
	searchSvc := usecase.NewSearchService(client, favoritesSvc, clock, logger)
	rosterSvc := usecase.NewRosterService(client, cache.NewStore(cfg.RosterCacheTTL))
	scheduleMon := usecase.NewScheduleMonitor(client, clock, logger, cfg.Season, cfg.ScheduleInterval)
	statsPoller := usecase.NewStatsPoller(client, clock, logger, cfg.StatsInterval, cfg.StatsWorkers)

	engine := &Engine{
		Client:    client,
		Favorites: favoritesSvc,
		Search:    searchSvc,
		Roster:    rosterSvc,
		Schedule:  scheduleMon,
		Stats:     statsPoller,
	}

	engine.unsubscribe = append(engine.unsubscribe,
		favoritesSvc.Subscribe(statsPoller.OnFavoritesChanged),
		scheduleMon.Subscribe(func(state usecase.ScheduleState) {
			statsPoller.SetLive(state.Live)
		}),
	)

	return engine, nil
}

// Start spins the timer-owning services up and seeds the poller with the
// already-loaded favorites set.
func (e *Engine) Start(ctx context.Context) {
	e.Stats.Start(ctx)
	e.Stats.OnFavoritesChanged(e.Favorites.List())
	e.Schedule.Start(ctx)
}

// Stop tears everything down deterministically; no timer fires after it
// returns.
func (e *Engine) Stop() {
	for _, unsub := range e.unsubscribe {
		unsub()
	}
	e.unsubscribe = nil

	e.Schedule.Stop()
	e.Stats.Stop()
	e.Search.Close()
}

func buildFavoritesRepo(cfg config.Config, client *gridiron.Client, logger *logging.Logger) (favorites.Repository, error) {
	if cfg.RemoteFavoritesEnabled {
		return remote.NewFavoritesRepository(client, cfg.UserID), nil
	}

	if cfg.StorageDir == "" {
		logger.Warn("no storage directory configured, favorites will not survive restarts")
		return kvstore.NewFavoritesRepository(storage.NewMemory(), logger), nil
	}

	kv, err := storage.NewFile(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("open favorites storage: %w", err)
	}

	return kvstore.NewFavoritesRepository(kv, logger), nil
}
