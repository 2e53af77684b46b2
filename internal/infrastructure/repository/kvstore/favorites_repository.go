package kvstore

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/packers-hub/internal/domain/favorites"
	"github.com/riskibarqy/packers-hub/internal/infrastructure/storage"
	"github.com/riskibarqy/packers-hub/internal/platform/logging"
)

// FavoritesKey is the well-known document key the favorites set persists
// under, matching the dashboard's browser-storage key.
const FavoritesKey = "packers-favorites"

// FavoritesRepository persists the favorites set as one JSON document in a
// KV store. Every Save replaces the whole document.
type FavoritesRepository struct {
	kv     storage.KV
	key    string
	logger *logging.Logger
}

func NewFavoritesRepository(kv storage.KV, logger *logging.Logger) *FavoritesRepository {
	if logger == nil {
		logger = logging.Default()
	}

	return &FavoritesRepository{
		kv:     kv,
		key:    FavoritesKey,
		logger: logger,
	}
}

// Load reads the persisted favorites document. An absent key yields an empty
// set. A document that fails to parse also yields an empty set with a
// warning; a corrupt document must never block startup.
func (r *FavoritesRepository) Load(ctx context.Context) ([]favorites.Entry, error) {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("load favorites document: %w", err)
	}
	if !ok {
		return []favorites.Entry{}, nil
	}

	var entries []favorites.Entry
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		r.logger.WarnContext(ctx, "favorites document is malformed, starting empty", "key", r.key, "error", err)
		return []favorites.Entry{}, nil
	}

	out := make([]favorites.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Validate() != nil {
			r.logger.WarnContext(ctx, "dropping invalid favorites entry", "key", r.key, "player_id", entry.Player.ID)
			continue
		}
		out = append(out, entry)
	}

	return out, nil
}

func (r *FavoritesRepository) Save(ctx context.Context, entries []favorites.Entry) error {
	raw, err := sonic.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode favorites document: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, raw); err != nil {
		return fmt.Errorf("persist favorites document: %w", err)
	}

	return nil
}
