package remote

import (
	"context"
	"fmt"

	"github.com/riskibarqy/packers-hub/internal/domain/favorites"
	"github.com/riskibarqy/packers-hub/internal/domain/player"
)

// FavoritesBackend is the slice of the backend client this repository needs.
type FavoritesBackend interface {
	Favorites(ctx context.Context, userID string) ([]favorites.Entry, error)
	AddFavorite(ctx context.Context, userID string, p player.Player) error
	RemoveFavorite(ctx context.Context, userID string, playerID int64) error
}

// FavoritesRepository keeps the favorites set on the backend under one
// anonymous profile id. Save reconciles the stored set against the desired
// one through per-player add/remove calls, since the backend has no bulk
// replace operation.
type FavoritesRepository struct {
	backend FavoritesBackend
	userID  string
}

func NewFavoritesRepository(backend FavoritesBackend, userID string) *FavoritesRepository {
	return &FavoritesRepository{
		backend: backend,
		userID:  userID,
	}
}

func (r *FavoritesRepository) Load(ctx context.Context) ([]favorites.Entry, error) {
	entries, err := r.backend.Favorites(ctx, r.userID)
	if err != nil {
		return nil, fmt.Errorf("load remote favorites: %w", err)
	}

	return entries, nil
}

func (r *FavoritesRepository) Save(ctx context.Context, entries []favorites.Entry) error {
	stored, err := r.backend.Favorites(ctx, r.userID)
	if err != nil {
		return fmt.Errorf("reconcile remote favorites: %w", err)
	}

	desired := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		desired[entry.Player.ID] = struct{}{}
	}
	existing := make(map[int64]struct{}, len(stored))
	for _, entry := range stored {
		existing[entry.Player.ID] = struct{}{}
	}

	for _, entry := range entries {
		if _, ok := existing[entry.Player.ID]; ok {
			continue
		}
		if err := r.backend.AddFavorite(ctx, r.userID, entry.Player); err != nil {
			return fmt.Errorf("add remote favorite player_id=%d: %w", entry.Player.ID, err)
		}
	}

	for _, entry := range stored {
		if _, ok := desired[entry.Player.ID]; ok {
			continue
		}
		if err := r.backend.RemoveFavorite(ctx, r.userID, entry.Player.ID); err != nil {
			return fmt.Errorf("remove remote favorite player_id=%d: %w", entry.Player.ID, err)
		}
	}

	return nil
}
