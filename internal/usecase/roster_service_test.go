package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/packers-hub/internal/domain/player"
	"github.com/riskibarqy/packers-hub/internal/platform/cache"
)

type rosterBackendFake struct {
	mu     sync.Mutex
	roster []player.Player
	err    error
	calls  int
}

func (b *rosterBackendFake) Roster(context.Context, int) ([]player.Player, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.roster, nil
}

func TestRosterService_CachesRoster(t *testing.T) {
	t.Parallel()

	backend := &rosterBackendFake{roster: []player.Player{
		{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback},
	}}
	svc := NewRosterService(backend, cache.NewStore(10*time.Minute))

	first, err := svc.List(context.Background(), 2025)
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	second, err := svc.List(context.Background(), 2025)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if backend.calls != 1 {
		t.Fatalf("expected one backend fetch within TTL, got %d", backend.calls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("unexpected rosters: %v, %v", first, second)
	}
}

func TestRosterService_RefetchesAfterExpiry(t *testing.T) {
	t.Parallel()

	backend := &rosterBackendFake{roster: []player.Player{
		{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback},
	}}
	svc := NewRosterService(backend, cache.NewStore(10*time.Millisecond))

	if _, err := svc.List(context.Background(), 2025); err != nil {
		t.Fatalf("first list: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := svc.List(context.Background(), 2025); err != nil {
		t.Fatalf("list after expiry: %v", err)
	}
	if backend.calls != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", backend.calls)
	}
}

func TestRosterService_SeasonsCacheIndependently(t *testing.T) {
	t.Parallel()

	backend := &rosterBackendFake{roster: []player.Player{
		{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback},
	}}
	svc := NewRosterService(backend, cache.NewStore(10*time.Minute))

	if _, err := svc.List(context.Background(), 2024); err != nil {
		t.Fatalf("list 2024: %v", err)
	}
	if _, err := svc.List(context.Background(), 2025); err != nil {
		t.Fatalf("list 2025: %v", err)
	}
	if backend.calls != 2 {
		t.Fatalf("expected one fetch per season, got %d", backend.calls)
	}
}

func TestRosterService_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	backend := &rosterBackendFake{err: errors.New("upstream unavailable")}
	svc := NewRosterService(backend, cache.NewStore(10*time.Minute))

	if _, err := svc.List(context.Background(), 2025); err == nil {
		t.Fatalf("expected error")
	}

	backend.mu.Lock()
	backend.err = nil
	backend.roster = []player.Player{{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback}}
	backend.mu.Unlock()

	roster, err := svc.List(context.Background(), 2025)
	if err != nil {
		t.Fatalf("list after recovery: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("unexpected roster: %v", roster)
	}
}

func TestRosterService_RejectsInvalidSeason(t *testing.T) {
	t.Parallel()

	svc := NewRosterService(&rosterBackendFake{}, cache.NewStore(10*time.Minute))
	if _, err := svc.List(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
