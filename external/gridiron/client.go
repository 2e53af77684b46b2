package gridiron

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/packers-hub/internal/domain/favorites"
	"github.com/riskibarqy/packers-hub/internal/domain/game"
	"github.com/riskibarqy/packers-hub/internal/domain/player"
	"github.com/riskibarqy/packers-hub/internal/domain/stats"
	"github.com/riskibarqy/packers-hub/internal/platform/logging"
	"github.com/riskibarqy/packers-hub/internal/platform/resilience"
	"github.com/riskibarqy/packers-hub/internal/usecase"
)

const defaultBaseURL = "http://localhost:8000"

var errGridironTransient = crerr.New("gridiron transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the dashboard backend. All responses are decoded and
// adapted to domain types here so callers never see wire shapes.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// Roster fetches the tracked team's roster for a season.
func (c *Client) Roster(ctx context.Context, season int) ([]player.Player, error) {
	if season <= 0 {
		return nil, fmt.Errorf("%w: season must be greater than zero", usecase.ErrInvalidInput)
	}

	var envelope playerListEnvelope
	if err := c.doJSON(ctx, "/packers/roster", map[string]string{
		"season": strconv.Itoa(season),
	}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch roster season=%d: %w", season, err)
	}

	return envelope.resolve()
}

// SearchPlayers looks players up by name fragment. forceRefresh asks the
// backend to bypass its own cache.
func (c *Client) SearchPlayers(ctx context.Context, term string, forceRefresh bool) ([]player.Player, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", usecase.ErrInvalidInput)
	}

	var envelope playerListEnvelope
	if err := c.doJSON(ctx, "/packers/search", map[string]string{
		"player":        term,
		"force_refresh": strconv.FormatBool(forceRefresh),
	}, &envelope); err != nil {
		return nil, fmt.Errorf("search players term=%q: %w", term, err)
	}

	return envelope.resolve()
}

// PlayerStats fetches one player's current statistics snapshot, in whichever
// wire shape the backend emits.
func (c *Client) PlayerStats(ctx context.Context, playerID int64, name string) (stats.Snapshot, error) {
	if playerID <= 0 {
		return stats.Snapshot{}, fmt.Errorf("%w: player id is required", usecase.ErrInvalidInput)
	}

	query := map[string]string{"player_id": strconv.FormatInt(playerID, 10)}
	if name = strings.TrimSpace(name); name != "" {
		query["player_name"] = name
	}

	raw, err := c.get(ctx, "/packers/stats", query)
	if err != nil {
		return stats.Snapshot{}, fmt.Errorf("fetch stats player_id=%d: %w", playerID, err)
	}

	snapshot, err := stats.ParseSnapshot(raw)
	if err != nil {
		return stats.Snapshot{}, fmt.Errorf("fetch stats player_id=%d: %w", playerID, err)
	}
	if snapshot.PlayerID == 0 {
		snapshot.PlayerID = playerID
	}

	return snapshot, nil
}

// Games fetches the season schedule, week-sorted.
func (c *Client) Games(ctx context.Context, season int) ([]game.Summary, error) {
	if season <= 0 {
		return nil, fmt.Errorf("%w: season must be greater than zero", usecase.ErrInvalidInput)
	}

	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, "/packers/games", map[string]string{
		"season": strconv.Itoa(season),
	}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch games season=%d: %w", season, err)
	}

	games := envelope.resolve()
	game.SortByWeek(games)
	return games, nil
}

// Favorites fetches the server-side favorites list for a user profile.
func (c *Client) Favorites(ctx context.Context, userID string) ([]favorites.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", usecase.ErrInvalidInput)
	}

	var envelope favoritesEnvelope
	if err := c.doJSON(ctx, "/packers/favorites", map[string]string{
		"user_id": userID,
	}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch favorites user_id=%s: %w", userID, err)
	}

	return envelope.resolve(), nil
}

// AddFavorite stores one favorited player server-side.
func (c *Client) AddFavorite(ctx context.Context, userID string, p player.Player) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", usecase.ErrInvalidInput)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	payload, err := sonic.Marshal(addFavoriteRequest{UserID: userID, Player: p})
	if err != nil {
		return fmt.Errorf("encode favorite payload: %w", err)
	}
	_, _ = body.Write(payload)

	if _, err := c.send(ctx, http.MethodPost, "/packers/favorites", nil, body.Bytes()); err != nil {
		return fmt.Errorf("add favorite user_id=%s player_id=%d: %w", userID, p.ID, err)
	}

	return nil
}

// RemoveFavorite deletes one favorited player server-side.
func (c *Client) RemoveFavorite(ctx context.Context, userID string, playerID int64) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", usecase.ErrInvalidInput)
	}
	if playerID <= 0 {
		return fmt.Errorf("%w: player id is required", usecase.ErrInvalidInput)
	}

	query := map[string]string{
		"user_id":   userID,
		"player_id": strconv.FormatInt(playerID, 10),
	}
	if _, err := c.send(ctx, http.MethodDelete, "/packers/favorites", query, nil); err != nil {
		return fmt.Errorf("remove favorite user_id=%s player_id=%d: %w", userID, playerID, err)
	}

	return nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	raw, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode backend payload: %w", err)
	}

	return nil
}

// get issues a GET through the singleflight so concurrent polling cycles for
// the same resource collapse into one request.
func (c *Client) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "gridiron circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: dashboard backend is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	key := path + "?" + encodeQuery(query)
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.send(ctx, http.MethodGet, path, query, nil)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errGridironTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	return raw, nil
}

func (c *Client) send(ctx context.Context, method, path string, query map[string]string, body []byte) ([]byte, error) {
	fullURL := c.baseURL + path
	if encoded := encodeQuery(query); encoded != "" {
		fullURL += "?" + encoded
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var reader io.Reader
		if len(body) > 0 {
			reader = strings.NewReader(string(body))
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if len(body) > 0 {
			req.Header.Set("content-type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errGridironTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errGridironTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: backend status=%d body=%s", errGridironTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("backend status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("backend request failed")
	}
	c.logger.WarnContext(ctx, "gridiron request failed", "method", method, "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func encodeQuery(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	return values.Encode()
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}

	return status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) > limit {
		return text[:limit] + "..."
	}

	return text
}
