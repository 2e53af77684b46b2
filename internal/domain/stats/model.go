package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
)

// FlatCategories is wire shape A: one object per stat category with numeric
// leaf fields. Categories the player has no activity in are simply absent.
type FlatCategories struct {
	Passing   *FlatPassing   `json:"passing"`
	Rushing   *FlatRushing   `json:"rushing"`
	Receiving *FlatReceiving `json:"receiving"`
	Defense   *FlatDefense   `json:"defense"`
	Kicking   *FlatKicking   `json:"kicking"`
	Scoring   *FlatScoring   `json:"scoring"`
}

type FlatPassing struct {
	Attempts      int `json:"attempts"`
	Completions   int `json:"completions"`
	Yards         int `json:"yards"`
	Touchdowns    int `json:"touchdowns"`
	Interceptions int `json:"interceptions"`
}

type FlatRushing struct {
	Carries    int `json:"carries"`
	Yards      int `json:"yards"`
	Touchdowns int `json:"touchdowns"`
}

type FlatReceiving struct {
	Targets    int `json:"targets"`
	Receptions int `json:"receptions"`
	Yards      int `json:"yards"`
	Touchdowns int `json:"touchdowns"`
}

type FlatDefense struct {
	Tackles       int     `json:"tackles"`
	Sacks         float64 `json:"sacks"`
	Interceptions int     `json:"interceptions"`
	ForcedFumbles int     `json:"forced_fumbles"`
}

type FlatKicking struct {
	FieldGoalsMade      int `json:"field_goals_made"`
	FieldGoalsAttempts  int `json:"field_goals_attempts"`
	ExtraPointsMade     int `json:"extra_points_made"`
	ExtraPointsAttempts int `json:"extra_points_attempts"`
}

type FlatScoring struct {
	Touchdowns          int `json:"touchdowns"`
	TwoPointConversions int `json:"two_point_conversions"`
	Points              int `json:"points"`
}

// WireGroup is one category of wire shape B: a named list of string-keyed
// statistic entries, some of which carry pre-formatted ratio strings.
type WireGroup struct {
	Name       string     `json:"name"`
	Statistics []WireStat `json:"statistics"`
}

type WireStat struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Snapshot is one per-player statistics payload at a point in time. Exactly
// one of Flat or Groups is populated depending on which wire shape the
// backend emitted; the normalizer accepts both.
type Snapshot struct {
	PlayerID    int64
	LastUpdated time.Time
	Flat        *FlatCategories
	Groups      []WireGroup
}

type snapshotEnvelope struct {
	PlayerID    int64           `json:"player_id"`
	LastUpdated string          `json:"last_updated"`
	Stats       *FlatCategories `json:"stats"`
	Groups      []WireGroup     `json:"groups"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// ParseSnapshot decodes a stats payload in either wire shape. Unknown or
// missing fields degrade to zero values; only undecodable JSON is an error.
func ParseSnapshot(raw []byte) (Snapshot, error) {
	var envelope snapshotEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return Snapshot{}, fmt.Errorf("decode stats payload: %w", err)
	}

	return Snapshot{
		PlayerID:    envelope.PlayerID,
		LastUpdated: parseTimestamp(envelope.LastUpdated),
		Flat:        envelope.Stats,
		Groups:      envelope.Groups,
	}, nil
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}

	return time.Time{}
}

func (s Snapshot) group(name string) *WireGroup {
	for i := range s.Groups {
		if strings.EqualFold(s.Groups[i].Name, name) {
			return &s.Groups[i]
		}
	}

	return nil
}

// groupStat finds a statistic by any of its known name aliases and returns
// it as a display string. Numeric wire values are formatted without a
// trailing ".0".
func (g *WireGroup) stat(aliases ...string) (string, bool) {
	if g == nil {
		return "", false
	}

	for _, alias := range aliases {
		for _, item := range g.Statistics {
			if strings.EqualFold(item.Name, alias) {
				return formatWireValue(item.Value), true
			}
		}
	}

	return "", false
}

func (g *WireGroup) statInt(aliases ...string) int {
	value, ok := g.stat(aliases...)
	if !ok {
		return 0
	}

	return parseLooseInt(value)
}

func (g *WireGroup) statFloat(aliases ...string) float64 {
	value, ok := g.stat(aliases...)
	if !ok {
		return 0
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}

	return parsed
}

func formatWireValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return formatNumber(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatNumber(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}

	return strconv.FormatFloat(value, 'f', -1, 64)
}

func parseLooseInt(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(value, 64); err == nil {
		return int(parsed)
	}

	return 0
}

// splitRatio breaks a "made/attempted" string into its parts. Anything that
// does not look like a ratio yields zeros.
func splitRatio(value string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(value), "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}

	return parseLooseInt(parts[0]), parseLooseInt(parts[1])
}
