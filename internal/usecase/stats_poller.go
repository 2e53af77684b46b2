package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	ants "github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/packers-hub/internal/domain/favorites"
	"github.com/riskibarqy/packers-hub/internal/domain/stats"
	"github.com/riskibarqy/packers-hub/internal/platform/logging"
)

// StatsBackend is the slice of the backend client the poller needs.
type StatsBackend interface {
	PlayerStats(ctx context.Context, playerID int64, name string) (stats.Snapshot, error)
}

// PollerState is the poller's lifecycle phase.
type PollerState string

const (
	PollerIdle     PollerState = "idle"
	PollerFetching PollerState = "fetching"
	PollerPolling  PollerState = "polling"
)

// PlayerStats is one favorited player's normalized view at the last
// successful fetch.
type PlayerStats struct {
	Entry     favorites.Entry
	Snapshot  stats.Snapshot
	Groups    []stats.Group
	FetchedAt time.Time
}

// StatsPoller maintains the playerId -> stats mapping for the favorited set.
// Favorites changes trigger an immediate fetch of the whole set; a recurring
// timer runs only while a game is live. Per-player fetches fan out
// concurrently and are joined before the map is replaced, so readers always
// see a consistent cross-player view.
type StatsPoller struct {
	backend  StatsBackend
	clock    clockwork.Clock
	logger   *logging.Logger
	interval time.Duration
	workers  int

	mu        sync.RWMutex
	state     PollerState
	live      bool
	favs      []favorites.Entry
	snapshots map[int64]PlayerStats
	nextSub   int
	watchers  map[int]func(map[int64]PlayerStats)

	favCh  chan struct{}
	liveCh chan struct{}

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewStatsPoller(backend StatsBackend, clock clockwork.Clock, logger *logging.Logger, interval time.Duration, workers int) *StatsPoller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if workers < 1 {
		workers = 4
	}

	return &StatsPoller{
		backend:   backend,
		clock:     clock,
		logger:    logger,
		interval:  interval,
		workers:   workers,
		state:     PollerIdle,
		snapshots: make(map[int64]PlayerStats),
		watchers:  make(map[int]func(map[int64]PlayerStats)),
		favCh:     make(chan struct{}, 1),
		liveCh:    make(chan struct{}, 1),
	}
}

// Start launches the poller loop. The loop owns all snapshot-map writes.
func (p *StatsPoller) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(runCtx, p.done)
}

// Stop cancels the loop and waits for it to exit; the polling timer is torn
// down before Stop returns.
func (p *StatsPoller) Stop() {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// OnFavoritesChanged feeds the poller the new favorites set. Wired to
// FavoritesService.Subscribe.
func (p *StatsPoller) OnFavoritesChanged(entries []favorites.Entry) {
	favs := make([]favorites.Entry, len(entries))
	copy(favs, entries)

	p.mu.Lock()
	p.favs = favs
	p.mu.Unlock()

	wake(p.favCh)
}

// SetLive feeds the poller the liveness signal. Wired to
// ScheduleMonitor.Subscribe.
func (p *StatsPoller) SetLive(live bool) {
	p.mu.Lock()
	changed := p.live != live
	p.live = live
	p.mu.Unlock()

	if changed {
		wake(p.liveCh)
	}
}

// State returns the current lifecycle phase.
func (p *StatsPoller) State() PollerState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Snapshots returns a copy of the current playerId -> stats mapping.
func (p *StatsPoller) Snapshots() map[int64]PlayerStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[int64]PlayerStats, len(p.snapshots))
	for id, item := range p.snapshots {
		out[id] = item
	}
	return out
}

// Subscribe registers a callback invoked after every snapshot-map replace.
func (p *StatsPoller) Subscribe(fn func(map[int64]PlayerStats)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.watchers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

func (p *StatsPoller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	var ticker clockwork.Ticker
	var tickC <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			p.setState(PollerIdle)
			return
		case <-p.favCh:
		case <-p.liveCh:
			// Liveness turning false only tears the timer down; the
			// one-shot fetch path is reserved for favorites changes and
			// the live transition.
			if !p.isLive() {
				stopTicker()
				p.setState(PollerIdle)
				continue
			}
		case <-tickC:
		}

		favs := p.currentFavorites()
		if len(favs) == 0 {
			stopTicker()
			p.replaceSnapshots(ctx, nil, nil)
			p.setState(PollerIdle)
			continue
		}

		p.setState(PollerFetching)
		p.replaceSnapshots(ctx, favs, p.fetchAll(ctx, favs))

		if p.isLive() {
			if ticker == nil {
				ticker = p.clock.NewTicker(p.interval)
				tickC = ticker.Chan()
			}
			p.setState(PollerPolling)
		} else {
			stopTicker()
			p.setState(PollerIdle)
		}
	}
}

type fetchOutcome struct {
	entry    favorites.Entry
	snapshot stats.Snapshot
	err      error
}

// fetchAll fans out one request per favorited player and joins them all
// before returning, so the caller can replace the map atomically.
func (p *StatsPoller) fetchAll(ctx context.Context, favs []favorites.Entry) []fetchOutcome {
	pool, err := ants.NewPool(min(p.workers, len(favs)))
	if err != nil {
		p.logger.ErrorContext(ctx, "stats worker pool unavailable", "error", err)
		return nil
	}
	defer pool.Release()

	results := make(chan fetchOutcome, len(favs))
	var wg sync.WaitGroup
	for _, entry := range favs {
		entry := entry
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			snapshot, fetchErr := p.backend.PlayerStats(ctx, entry.Player.ID, entry.Player.Name)
			results <- fetchOutcome{entry: entry, snapshot: snapshot, err: fetchErr}
		})
		if submitErr != nil {
			wg.Done()
			results <- fetchOutcome{entry: entry, err: submitErr}
		}
	}

	wg.Wait()
	close(results)

	out := make([]fetchOutcome, 0, len(favs))
	for item := range results {
		out = append(out, item)
	}
	return out
}

// replaceSnapshots rebuilds the map from this cycle's outcomes. A player
// whose fetch failed keeps the previous snapshot if one exists; a player no
// longer favorited is dropped.
func (p *StatsPoller) replaceSnapshots(ctx context.Context, favs []favorites.Entry, outcomes []fetchOutcome) {
	now := p.clock.Now()
	updated := make(map[int64]PlayerStats, len(favs))

	p.mu.Lock()
	previous := p.snapshots
	for _, outcome := range outcomes {
		id := outcome.entry.Player.ID
		if outcome.err != nil {
			if kept, ok := previous[id]; ok {
				updated[id] = kept
			}
			continue
		}

		updated[id] = PlayerStats{
			Entry:     outcome.entry,
			Snapshot:  outcome.snapshot,
			Groups:    stats.Normalize(outcome.snapshot, outcome.entry.Player.Position),
			FetchedAt: now,
		}
	}
	p.snapshots = updated

	snapshot := make(map[int64]PlayerStats, len(updated))
	for id, item := range updated {
		snapshot[id] = item
	}
	watchers := make([]func(map[int64]PlayerStats), 0, len(p.watchers))
	for _, fn := range p.watchers {
		watchers = append(watchers, fn)
	}
	p.mu.Unlock()

	for _, outcome := range outcomes {
		if outcome.err != nil {
			p.logger.WarnContext(ctx, "player stats fetch failed, keeping last snapshot",
				"player_id", outcome.entry.Player.ID, "error", outcome.err)
		}
	}
	for _, fn := range watchers {
		fn(snapshot)
	}
}

func (p *StatsPoller) currentFavorites() []favorites.Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]favorites.Entry, len(p.favs))
	copy(out, p.favs)
	return out
}

func (p *StatsPoller) isLive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.live
}

func (p *StatsPoller) setState(state PollerState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
