package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/packers-hub/internal/domain/favorites"
	"github.com/riskibarqy/packers-hub/internal/domain/player"
	"github.com/riskibarqy/packers-hub/internal/platform/logging"
)

// FavoritesService owns the favorited-player set and its persisted mirror.
// It is the only writer of both; every mutation completes the persistence
// write before returning, so the two can never drift apart.
type FavoritesService struct {
	repo   favorites.Repository
	logger *logging.Logger

	mu       sync.RWMutex
	entries  []favorites.Entry
	index    map[int64]struct{}
	nextSub  int
	watchers map[int]func([]favorites.Entry)
}

// NewFavoritesService loads the persisted set. A storage failure degrades to
// an empty set with a warning; startup is never blocked on persisted state.
func NewFavoritesService(ctx context.Context, repo favorites.Repository, logger *logging.Logger) *FavoritesService {
	if logger == nil {
		logger = logging.Default()
	}

	entries, err := repo.Load(ctx)
	if err != nil {
		logger.WarnContext(ctx, "loading persisted favorites failed, starting empty", "error", err)
		entries = nil
	}

	svc := &FavoritesService{
		repo:     repo,
		logger:   logger,
		entries:  make([]favorites.Entry, 0, len(entries)),
		index:    make(map[int64]struct{}, len(entries)),
		watchers: make(map[int]func([]favorites.Entry)),
	}
	for _, entry := range entries {
		if _, ok := svc.index[entry.Player.ID]; ok {
			continue
		}
		svc.entries = append(svc.entries, entry)
		svc.index[entry.Player.ID] = struct{}{}
	}

	return svc
}

// Add inserts the player unless already favorited. Adding a player that is
// already in the set is a no-op, not an error.
func (s *FavoritesService) Add(ctx context.Context, p player.Player) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	if _, ok := s.index[p.ID]; ok {
		s.mu.Unlock()
		return nil
	}

	updated := make([]favorites.Entry, len(s.entries), len(s.entries)+1)
	copy(updated, s.entries)
	updated = append(updated, favorites.Entry{Player: p})

	if err := s.repo.Save(ctx, updated); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist favorites: %w", err)
	}

	s.entries = updated
	s.index[p.ID] = struct{}{}
	snapshot, watchers := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "player favorited", "player_id", p.ID, "player_name", p.Name, "count", len(snapshot))
	notifyFavorites(watchers, snapshot)
	return nil
}

// Remove deletes the entry with the matching id if present; removing an
// absent id is a no-op with no persistence write.
func (s *FavoritesService) Remove(ctx context.Context, playerID int64) error {
	s.mu.Lock()
	if _, ok := s.index[playerID]; !ok {
		s.mu.Unlock()
		return nil
	}

	updated := make([]favorites.Entry, 0, len(s.entries)-1)
	for _, entry := range s.entries {
		if entry.Player.ID == playerID {
			continue
		}
		updated = append(updated, entry)
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist favorites: %w", err)
	}

	s.entries = updated
	delete(s.index, playerID)
	snapshot, watchers := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "player unfavorited", "player_id", playerID, "count", len(snapshot))
	notifyFavorites(watchers, snapshot)
	return nil
}

// List returns the favorites in insertion order. The returned slice is a
// copy; callers never see internal state.
func (s *FavoritesService) List() []favorites.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]favorites.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Contains reports membership in O(1).
func (s *FavoritesService) Contains(playerID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[playerID]
	return ok
}

// Subscribe registers a callback invoked with the full set after every
// mutation. The returned function removes the subscription.
func (s *FavoritesService) Subscribe(fn func([]favorites.Entry)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *FavoritesService) snapshotLocked() ([]favorites.Entry, []func([]favorites.Entry)) {
	snapshot := make([]favorites.Entry, len(s.entries))
	copy(snapshot, s.entries)

	watchers := make([]func([]favorites.Entry), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}

	return snapshot, watchers
}

func notifyFavorites(watchers []func([]favorites.Entry), snapshot []favorites.Entry) {
	for _, fn := range watchers {
		fn(snapshot)
	}
}
