package kvstore

import (
	"context"
	"testing"

	"github.com/riskibarqy/packers-hub/internal/domain/favorites"
	"github.com/riskibarqy/packers-hub/internal/domain/player"
	"github.com/riskibarqy/packers-hub/internal/infrastructure/storage"
)

func TestFavoritesRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	repo := NewFavoritesRepository(storage.NewMemory(), nil)
	entries := []favorites.Entry{
		{Player: player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback, Age: 26}},
		{Player: player.Player{ID: 85, Name: "Tucker Kraft", Position: player.PositionTightEnd, Age: 24}},
	}

	if err := repo.Save(context.Background(), entries); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	for i := range entries {
		if loaded[i] != entries[i] {
			t.Fatalf("entry %d changed across round trip: %+v vs %+v", i, loaded[i], entries[i])
		}
	}
}

func TestFavoritesRepository_AbsentKeyYieldsEmptySet(t *testing.T) {
	t.Parallel()

	repo := NewFavoritesRepository(storage.NewMemory(), nil)
	entries, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty set, got %d entries", len(entries))
	}
}

func TestFavoritesRepository_MalformedDocumentYieldsEmptySet(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	if err := kv.Set(context.Background(), FavoritesKey, []byte(`not json at all`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := NewFavoritesRepository(kv, nil)
	entries, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("malformed document must not fail load: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty set, got %d entries", len(entries))
	}
}

func TestFavoritesRepository_DropsInvalidEntries(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	document := `[
		{"player": {"id": 12, "name": "Jordan Love", "position": "QB", "age": 26}},
		{"player": {"id": 0, "name": ""}}
	]`
	if err := kv.Set(context.Background(), FavoritesKey, []byte(document)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := NewFavoritesRepository(kv, nil)
	entries, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0].Player.ID != 12 {
		t.Fatalf("expected only valid entry, got %+v", entries)
	}
}

func TestFavoritesRepository_SaveReplacesDocument(t *testing.T) {
	t.Parallel()

	repo := NewFavoritesRepository(storage.NewMemory(), nil)

	full := []favorites.Entry{
		{Player: player.Player{ID: 12, Name: "Jordan Love", Position: player.PositionQuarterback}},
		{Player: player.Player{ID: 85, Name: "Tucker Kraft", Position: player.PositionTightEnd}},
	}
	if err := repo.Save(context.Background(), full); err != nil {
		t.Fatalf("save full set: %v", err)
	}
	if err := repo.Save(context.Background(), full[:1]); err != nil {
		t.Fatalf("save reduced set: %v", err)
	}

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Player.ID != 12 {
		t.Fatalf("save did not replace whole document: %+v", loaded)
	}
}
