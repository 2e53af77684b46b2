package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/packers-hub/internal/domain/player"
	"github.com/riskibarqy/packers-hub/internal/platform/cache"
)

// RosterBackend is the slice of the backend client the roster flow needs.
type RosterBackend interface {
	Roster(ctx context.Context, season int) ([]player.Player, error)
}

// RosterService serves the tracked team's roster with a TTL cache in front;
// the roster changes rarely enough that every view does not need a fetch.
type RosterService struct {
	backend RosterBackend
	cache   *cache.Store
}

func NewRosterService(backend RosterBackend, store *cache.Store) *RosterService {
	return &RosterService{
		backend: backend,
		cache:   store,
	}
}

func (s *RosterService) List(ctx context.Context, season int) ([]player.Player, error) {
	if season <= 0 {
		return nil, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}

	key := fmt.Sprintf("roster:%d", season)
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.backend.Roster(ctx, season)
	})
	if err != nil {
		return nil, fmt.Errorf("list roster season=%d: %w", season, err)
	}

	roster, ok := value.([]player.Player)
	if !ok {
		return nil, fmt.Errorf("unexpected cached roster type %T", value)
	}

	out := make([]player.Player, len(roster))
	copy(out, roster)
	return out, nil
}
