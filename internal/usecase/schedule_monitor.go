package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/riskibarqy/packers-hub/internal/domain/game"
	"github.com/riskibarqy/packers-hub/internal/platform/logging"
)

// ScheduleBackend is the slice of the backend client the monitor needs.
type ScheduleBackend interface {
	Games(ctx context.Context, season int) ([]game.Summary, error)
}

// ScheduleState is the view published to subscribers after each refresh or
// navigation change.
type ScheduleState struct {
	Games       []game.Summary
	Live        bool
	CurrentWeek int
}

// ScheduleMonitor polls the season schedule on a fixed cadence and derives
// the liveness signal the stats poller keys its cadence on. A failed refresh
// keeps the previous schedule and liveness value untouched.
type ScheduleMonitor struct {
	backend  ScheduleBackend
	clock    clockwork.Clock
	logger   *logging.Logger
	season   int
	interval time.Duration

	mu          sync.RWMutex
	games       []game.Summary
	live        bool
	currentWeek int
	resolved    bool
	nextSub     int
	watchers    map[int]func(ScheduleState)

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduleMonitor(backend ScheduleBackend, clock clockwork.Clock, logger *logging.Logger, season int, interval time.Duration) *ScheduleMonitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &ScheduleMonitor{
		backend:  backend,
		clock:    clock,
		logger:   logger,
		season:   season,
		interval: interval,
		watchers: make(map[int]func(ScheduleState)),
	}
}

// Start fetches the schedule immediately, then refetches on the configured
// interval until Stop is called or ctx is cancelled.
func (m *ScheduleMonitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	m.refresh(runCtx)

	go func(done chan struct{}) {
		defer close(done)

		ticker := m.clock.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.Chan():
				m.refresh(runCtx)
			}
		}
	}(m.done)
}

// Stop cancels the polling loop and waits for it to exit. After Stop returns
// no further tick can fire.
func (m *ScheduleMonitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// IsLive reports whether any tracked game is currently in progress.
func (m *ScheduleMonitor) IsLive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live
}

// Schedule returns the week-sorted schedule from the last successful fetch.
func (m *ScheduleMonitor) Schedule() []game.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]game.Summary, len(m.games))
	copy(out, m.games)
	return out
}

// CurrentWeek returns the navigation cursor.
func (m *ScheduleMonitor) CurrentWeek() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentWeek
}

// CurrentGame returns the game under the navigation cursor.
func (m *ScheduleMonitor) CurrentGame() (game.Summary, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return game.ByWeek(m.games, m.currentWeek)
}

// NextWeek moves the cursor one week forward; moving past the last fetched
// week is a no-op.
func (m *ScheduleMonitor) NextWeek() {
	m.moveWeek(1)
}

// PrevWeek moves the cursor one week back; moving before the first fetched
// week is a no-op.
func (m *ScheduleMonitor) PrevWeek() {
	m.moveWeek(-1)
}

// Subscribe registers a callback invoked after every successful refresh and
// every cursor move.
func (m *ScheduleMonitor) Subscribe(fn func(ScheduleState)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.watchers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}
}

func (m *ScheduleMonitor) moveWeek(delta int) {
	m.mu.Lock()
	minWeek, maxWeek := game.WeekBounds(m.games)
	target := m.currentWeek + delta
	if len(m.games) == 0 || target < minWeek || target > maxWeek {
		m.mu.Unlock()
		return
	}
	m.currentWeek = target
	state, watchers := m.stateLocked()
	m.mu.Unlock()

	notifySchedule(watchers, state)
}

func (m *ScheduleMonitor) refresh(ctx context.Context) {
	games, err := m.backend.Games(ctx, m.season)
	if err != nil {
		// Keep the previous schedule and liveness value; the next tick
		// retries unconditionally.
		m.logger.WarnContext(ctx, "schedule refresh failed", "season", m.season, "error", err)
		return
	}

	game.SortByWeek(games)
	live := game.AnyLive(games)

	m.mu.Lock()
	m.games = games
	wasLive := m.live
	m.live = live
	if !m.resolved {
		if week, ok := game.CurrentWeek(games, m.clock.Now()); ok {
			m.currentWeek = week
			m.resolved = true
		}
	} else {
		minWeek, maxWeek := game.WeekBounds(games)
		if m.currentWeek < minWeek {
			m.currentWeek = minWeek
		}
		if m.currentWeek > maxWeek {
			m.currentWeek = maxWeek
		}
	}
	state, watchers := m.stateLocked()
	m.mu.Unlock()

	if live != wasLive {
		m.logger.InfoContext(ctx, "game liveness changed", "live", live)
	}
	notifySchedule(watchers, state)
}

func (m *ScheduleMonitor) stateLocked() (ScheduleState, []func(ScheduleState)) {
	games := make([]game.Summary, len(m.games))
	copy(games, m.games)

	watchers := make([]func(ScheduleState), 0, len(m.watchers))
	for _, fn := range m.watchers {
		watchers = append(watchers, fn)
	}

	return ScheduleState{Games: games, Live: m.live, CurrentWeek: m.currentWeek}, watchers
}

func notifySchedule(watchers []func(ScheduleState), state ScheduleState) {
	for _, fn := range watchers {
		fn(state)
	}
}
