package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/riskibarqy/packers-hub/internal/domain/favorites"
	"github.com/riskibarqy/packers-hub/internal/domain/player"
	"github.com/riskibarqy/packers-hub/internal/domain/stats"
)

type statsBackendFake struct {
	mu        sync.Mutex
	snapshots map[int64]stats.Snapshot
	errs      map[int64]error
	calls     map[int64]int
}

func newStatsBackendFake() *statsBackendFake {
	return &statsBackendFake{
		snapshots: make(map[int64]stats.Snapshot),
		errs:      make(map[int64]error),
		calls:     make(map[int64]int),
	}
}

func (b *statsBackendFake) set(playerID int64, snapshot stats.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshots[playerID] = snapshot
	delete(b.errs, playerID)
}

func (b *statsBackendFake) fail(playerID int64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs[playerID] = err
}

func (b *statsBackendFake) callCount(playerID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[playerID]
}

func (b *statsBackendFake) PlayerStats(_ context.Context, playerID int64, _ string) (stats.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls[playerID]++
	if err := b.errs[playerID]; err != nil {
		return stats.Snapshot{}, err
	}
	return b.snapshots[playerID], nil
}

func passingSnapshot(playerID int64, yards int) stats.Snapshot {
	return stats.Snapshot{
		PlayerID: playerID,
		Flat: &stats.FlatCategories{
			Passing: &stats.FlatPassing{Attempts: 30, Completions: 20, Yards: yards, Touchdowns: 2},
		},
	}
}

func favoriteEntries(players ...player.Player) []favorites.Entry {
	entries := make([]favorites.Entry, 0, len(players))
	for _, p := range players {
		entries = append(entries, favorites.Entry{Player: p})
	}
	return entries
}

func waitForSnapshots(t *testing.T, ch <-chan map[int64]PlayerStats) map[int64]PlayerStats {
	t.Helper()

	select {
	case snapshot := <-ch:
		return snapshot
	case <-time.After(5 * time.Second):
		t.Fatalf("no snapshot notification")
		return nil
	}
}

func waitForPollerState(t *testing.T, p *StatsPoller, want PollerState) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if p.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("poller never reached state %q, stuck at %q", want, p.State())
}

func TestStatsPoller_FavoritesChangeTriggersFetch(t *testing.T) {
	t.Parallel()

	backend := newStatsBackendFake()
	backend.set(12, passingSnapshot(12, 210))
	backend.set(85, stats.Snapshot{PlayerID: 85, Flat: &stats.FlatCategories{
		Receiving: &stats.FlatReceiving{Receptions: 5, Targets: 7, Yards: 62, Touchdowns: 1},
	}})

	poller := NewStatsPoller(backend, clockwork.NewFakeClock(), nil, 30*time.Second, 4)
	snapCh := make(chan map[int64]PlayerStats, 8)
	defer poller.Subscribe(func(m map[int64]PlayerStats) { snapCh <- m })()

	poller.Start(context.Background())
	defer poller.Stop()

	poller.OnFavoritesChanged(favoriteEntries(
		player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback},
		player.Player{ID: 85, Name: "Tucker Kraft", Position: player.PositionTightEnd},
	))

	snapshot := waitForSnapshots(t, snapCh)
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshot))
	}
	love := snapshot[12]
	if love.Entry.Player.Name != "Jordan Love" {
		t.Fatalf("snapshot entry mismatch: %+v", love.Entry)
	}
	if len(love.Groups) == 0 || love.Groups[0].Title != stats.TitlePassing {
		t.Fatalf("expected normalized passing group, got %+v", love.Groups)
	}
	waitForPollerState(t, poller, PollerIdle)
}

func TestStatsPoller_FailedFetchKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	backend := newStatsBackendFake()
	backend.set(12, passingSnapshot(12, 210))
	backend.set(85, stats.Snapshot{PlayerID: 85, Flat: &stats.FlatCategories{
		Receiving: &stats.FlatReceiving{Receptions: 5, Targets: 7, Yards: 62},
	}})

	poller := NewStatsPoller(backend, clockwork.NewFakeClock(), nil, 30*time.Second, 4)
	snapCh := make(chan map[int64]PlayerStats, 8)
	defer poller.Subscribe(func(m map[int64]PlayerStats) { snapCh <- m })()

	poller.Start(context.Background())
	defer poller.Stop()

	entries := favoriteEntries(
		player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback},
		player.Player{ID: 85, Name: "Tucker Kraft", Position: player.PositionTightEnd},
	)
	poller.OnFavoritesChanged(entries)
	first := waitForSnapshots(t, snapCh)

	backend.set(12, passingSnapshot(12, 245))
	backend.fail(85, errors.New("upstream timeout"))
	poller.OnFavoritesChanged(entries)
	second := waitForSnapshots(t, snapCh)

	if second[12].Snapshot.Flat.Passing.Yards != 245 {
		t.Fatalf("expected refreshed passing yards, got %d", second[12].Snapshot.Flat.Passing.Yards)
	}
	if second[85].Snapshot.Flat.Receiving.Yards != first[85].Snapshot.Flat.Receiving.Yards {
		t.Fatalf("failed fetch did not keep previous snapshot: %+v", second[85].Snapshot)
	}
}

func TestStatsPoller_NoSnapshotForPlayerThatNeverSucceeded(t *testing.T) {
	t.Parallel()

	backend := newStatsBackendFake()
	backend.set(12, passingSnapshot(12, 210))
	backend.fail(85, errors.New("upstream timeout"))

	poller := NewStatsPoller(backend, clockwork.NewFakeClock(), nil, 30*time.Second, 4)
	snapCh := make(chan map[int64]PlayerStats, 8)
	defer poller.Subscribe(func(m map[int64]PlayerStats) { snapCh <- m })()

	poller.Start(context.Background())
	defer poller.Stop()

	poller.OnFavoritesChanged(favoriteEntries(
		player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback},
		player.Player{ID: 85, Name: "Tucker Kraft", Position: player.PositionTightEnd},
	))

	snapshot := waitForSnapshots(t, snapCh)
	if _, ok := snapshot[85]; ok {
		t.Fatalf("player with no successful fetch should have no snapshot")
	}
	if _, ok := snapshot[12]; !ok {
		t.Fatalf("successful fetch missing from snapshot map")
	}
}

func TestStatsPoller_PollsWhileLive(t *testing.T) {
	t.Parallel()

	backend := newStatsBackendFake()
	backend.set(12, passingSnapshot(12, 210))
	clock := clockwork.NewFakeClock()

	poller := NewStatsPoller(backend, clock, nil, 30*time.Second, 4)
	snapCh := make(chan map[int64]PlayerStats, 8)
	defer poller.Subscribe(func(m map[int64]PlayerStats) { snapCh <- m })()

	poller.Start(context.Background())
	defer poller.Stop()

	poller.OnFavoritesChanged(favoriteEntries(player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback}))
	waitForSnapshots(t, snapCh)

	poller.SetLive(true)
	waitForSnapshots(t, snapCh)
	waitForPollerState(t, poller, PollerPolling)

	clock.BlockUntil(1)
	clock.Advance(30 * time.Second)
	waitForSnapshots(t, snapCh)

	if got := backend.callCount(12); got < 3 {
		t.Fatalf("expected live transition plus tick to refetch, got %d calls", got)
	}
}

func TestStatsPoller_LivenessEndTearsDownWithoutFetch(t *testing.T) {
	t.Parallel()

	backend := newStatsBackendFake()
	backend.set(12, passingSnapshot(12, 210))
	clock := clockwork.NewFakeClock()

	poller := NewStatsPoller(backend, clock, nil, 30*time.Second, 4)
	snapCh := make(chan map[int64]PlayerStats, 8)
	defer poller.Subscribe(func(m map[int64]PlayerStats) { snapCh <- m })()

	poller.Start(context.Background())
	defer poller.Stop()

	poller.OnFavoritesChanged(favoriteEntries(player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback}))
	waitForSnapshots(t, snapCh)

	poller.SetLive(true)
	waitForSnapshots(t, snapCh)
	waitForPollerState(t, poller, PollerPolling)
	calls := backend.callCount(12)

	poller.SetLive(false)
	waitForPollerState(t, poller, PollerIdle)

	if got := backend.callCount(12); got != calls {
		t.Fatalf("liveness ending must not fetch, got %d extra calls", got-calls)
	}
	if got := len(poller.Snapshots()); got != 1 {
		t.Fatalf("snapshots should survive liveness ending, got %d", got)
	}
}

func TestStatsPoller_EmptyFavoritesClearsSnapshots(t *testing.T) {
	t.Parallel()

	backend := newStatsBackendFake()
	backend.set(12, passingSnapshot(12, 210))

	poller := NewStatsPoller(backend, clockwork.NewFakeClock(), nil, 30*time.Second, 4)
	snapCh := make(chan map[int64]PlayerStats, 8)
	defer poller.Subscribe(func(m map[int64]PlayerStats) { snapCh <- m })()

	poller.Start(context.Background())
	defer poller.Stop()

	poller.OnFavoritesChanged(favoriteEntries(player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback}))
	waitForSnapshots(t, snapCh)

	poller.OnFavoritesChanged(nil)
	snapshot := waitForSnapshots(t, snapCh)
	if len(snapshot) != 0 {
		t.Fatalf("expected empty snapshot map, got %d entries", len(snapshot))
	}
	waitForPollerState(t, poller, PollerIdle)
}

func TestStatsPoller_StopHaltsLoop(t *testing.T) {
	t.Parallel()

	backend := newStatsBackendFake()
	backend.set(12, passingSnapshot(12, 210))

	poller := NewStatsPoller(backend, clockwork.NewFakeClock(), nil, 30*time.Second, 4)
	snapCh := make(chan map[int64]PlayerStats, 8)
	defer poller.Subscribe(func(m map[int64]PlayerStats) { snapCh <- m })()

	poller.Start(context.Background())
	poller.OnFavoritesChanged(favoriteEntries(player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback}))
	waitForSnapshots(t, snapCh)

	poller.Stop()
	calls := backend.callCount(12)

	poller.OnFavoritesChanged(favoriteEntries(player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback}))
	time.Sleep(20 * time.Millisecond)
	if got := backend.callCount(12); got != calls {
		t.Fatalf("expected no fetch after Stop, got %d extra calls", got-calls)
	}
}
