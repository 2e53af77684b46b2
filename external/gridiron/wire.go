package gridiron

import (
	"encoding/json"
	"time"

	"github.com/riskibarqy/packers-hub/internal/domain/favorites"
	"github.com/riskibarqy/packers-hub/internal/domain/game"
	"github.com/riskibarqy/packers-hub/internal/domain/player"
)

type playerListEnvelope struct {
	Players json.RawMessage `json:"players"`
}

func (e playerListEnvelope) resolve() ([]player.Player, error) {
	if len(e.Players) == 0 {
		return []player.Player{}, nil
	}

	return player.ListFromWire(e.Players)
}

type addFavoriteRequest struct {
	UserID string        `json:"user_id"`
	Player player.Player `json:"player"`
}

type favoritesEnvelope struct {
	Favorites []favorites.Entry `json:"favorites"`
}

func (e favoritesEnvelope) resolve() []favorites.Entry {
	out := make([]favorites.Entry, 0, len(e.Favorites))
	for _, item := range e.Favorites {
		if item.Validate() != nil {
			continue
		}
		out = append(out, item)
	}

	return out
}

type scheduleEnvelope struct {
	Games []scheduleItem `json:"games"`
}

type scheduleItem struct {
	Game struct {
		Week int `json:"week"`
		Date struct {
			Date string `json:"date"`
			Time string `json:"time"`
		} `json:"date"`
		Status struct {
			Short string `json:"short"`
			Long  string `json:"long"`
			Timer string `json:"timer"`
		} `json:"status"`
		Stage string `json:"stage"`
	} `json:"game"`
	Teams struct {
		Home wireTeam `json:"home"`
		Away wireTeam `json:"away"`
	} `json:"teams"`
	Scores *struct {
		Home wireScore `json:"home"`
		Away wireScore `json:"away"`
	} `json:"scores"`
}

type wireTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wireScore struct {
	Total *int `json:"total"`
}

var kickoffLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (e scheduleEnvelope) resolve() []game.Summary {
	out := make([]game.Summary, 0, len(e.Games))
	for _, item := range e.Games {
		if item.Game.Week <= 0 {
			continue
		}

		summary := game.Summary{
			Week:       item.Game.Week,
			Kickoff:    parseKickoff(item.Game.Date.Date, item.Game.Date.Time),
			Status:     game.Status(item.Game.Status.Short),
			StatusLong: item.Game.Status.Long,
			Timer:      item.Game.Status.Timer,
			Stage:      item.Game.Stage,
			Home:       game.Team(item.Teams.Home),
			Away:       game.Team(item.Teams.Away),
		}
		if scores := item.Scores; scores != nil && scores.Home.Total != nil && scores.Away.Total != nil {
			summary.Score = &game.Score{Home: *scores.Home.Total, Away: *scores.Away.Total}
		}

		out = append(out, summary)
	}

	return out
}

func parseKickoff(date, clock string) time.Time {
	candidate := date
	if clock != "" {
		candidate = date + "T" + clock
	}

	for _, layout := range kickoffLayouts {
		if parsed, err := time.Parse(layout, candidate); err == nil {
			return parsed
		}
	}

	return time.Time{}
}
