package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/riskibarqy/packers-hub/internal/domain/player"
	"github.com/riskibarqy/packers-hub/internal/platform/logging"
)

const (
	searchDebounce   = 300 * time.Millisecond
	searchMinTermLen = 2
)

// SearchBackend is the slice of the backend client the search flow needs.
type SearchBackend interface {
	SearchPlayers(ctx context.Context, term string, forceRefresh bool) ([]player.Player, error)
}

// FavoritesIndex answers membership questions at result-apply time.
type FavoritesIndex interface {
	Contains(playerID int64) bool
}

// SearchResult is one search row enriched with the favorited flag. The flag
// is computed when results are applied, never cached with them.
type SearchResult struct {
	Player    player.Player
	Favorited bool
}

// SearchService debounces free-text queries and issues at most one remote
// search per settled term. Responses for anything but the most recently
// dispatched term are discarded.
type SearchService struct {
	backend   SearchBackend
	favorites FavoritesIndex
	clock     clockwork.Clock
	logger    *logging.Logger
	debounce  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	pending    clockwork.Timer
	generation uint64
	results    []SearchResult
	nextSub    int
	watchers   map[int]func([]SearchResult)
}

func NewSearchService(backend SearchBackend, favoritesIdx FavoritesIndex, clock clockwork.Clock, logger *logging.Logger) *SearchService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SearchService{
		backend:   backend,
		favorites: favoritesIdx,
		clock:     clock,
		logger:    logger,
		debounce:  searchDebounce,
		ctx:       ctx,
		cancel:    cancel,
		watchers:  make(map[int]func([]SearchResult)),
	}
}

// Query registers a keystroke-level change of the search term. Terms shorter
// than two characters clear results and suppress any in-flight request; any
// other change restarts the debounce window.
func (s *SearchService) Query(term string) {
	term = strings.TrimSpace(term)

	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}

	if len(term) < searchMinTermLen {
		// Bump the generation so a response still in flight can no longer
		// apply, then clear.
		s.generation++
		s.results = nil
		watchers := s.watchersLocked()
		s.mu.Unlock()

		notifySearch(watchers, nil)
		return
	}

	s.pending = s.clock.AfterFunc(s.debounce, func() {
		s.dispatch(term)
	})
	s.mu.Unlock()
}

// Results returns the most recently applied result rows.
func (s *SearchService) Results() []SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SearchResult, len(s.results))
	copy(out, s.results)
	return out
}

// Subscribe registers a callback invoked whenever applied results change.
func (s *SearchService) Subscribe(fn func([]SearchResult)) func() {
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

// Close tears the controller down: the debounce timer is stopped and any
// in-flight request is cancelled and can no longer mutate state.
func (s *SearchService) Close() {
	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.generation++
	s.mu.Unlock()

	s.cancel()
}

func (s *SearchService) dispatch(term string) {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.pending = nil
	s.mu.Unlock()

	players, err := s.backend.SearchPlayers(s.ctx, term, false)
	if err != nil {
		s.logger.WarnContext(s.ctx, "player search failed", "term", term, "error", err)
		players = nil
	}

	s.apply(generation, players)
}

// apply installs a response only if it belongs to the most recently
// dispatched term. A slow response for an older term arriving out of order
// must not overwrite newer results.
func (s *SearchService) apply(generation uint64, players []player.Player) {
	results := make([]SearchResult, 0, len(players))
	for _, p := range players {
		results = append(results, SearchResult{
			Player:    p,
			Favorited: s.favorites.Contains(p.ID),
		})
	}

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return
	}
	s.results = results
	watchers := s.watchersLocked()
	s.mu.Unlock()

	notifySearch(watchers, results)
}

func (s *SearchService) watchersLocked() []func([]SearchResult) {
	watchers := make([]func([]SearchResult), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}

	return watchers
}

func notifySearch(watchers []func([]SearchResult), results []SearchResult) {
	for _, fn := range watchers {
		fn(results)
	}
}
