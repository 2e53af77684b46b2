package game

import (
	"sort"
	"time"
)

// TrackedTeamID is the backend identifier of the team this dashboard follows.
const TrackedTeamID = 15

// Status is the short game-state code from the schedule endpoint. The
// vocabulary is fixed; anything else is passed through untouched.
type Status string

const (
	StatusNotStarted    Status = "NS"
	StatusFirstQuarter  Status = "Q1"
	StatusSecondQuarter Status = "Q2"
	StatusThirdQuarter  Status = "Q3"
	StatusFourthQuarter Status = "Q4"
	StatusHalftime      Status = "HT"
	StatusOvertime      Status = "OT"
	StatusFinal         Status = "FT"
	StatusFinalOvertime Status = "AOT"
	StatusPostponed     Status = "PST"
	StatusCancelled     Status = "CANC"
)

var liveStatuses = map[Status]struct{}{
	StatusFirstQuarter:  {},
	StatusSecondQuarter: {},
	StatusThirdQuarter:  {},
	StatusFourthQuarter: {},
	StatusHalftime:      {},
	StatusOvertime:      {},
}

var statusDescriptions = map[Status]string{
	StatusNotStarted:    "Not Started",
	StatusFirstQuarter:  "1st Quarter",
	StatusSecondQuarter: "2nd Quarter",
	StatusThirdQuarter:  "3rd Quarter",
	StatusFourthQuarter: "4th Quarter",
	StatusHalftime:      "Halftime",
	StatusOvertime:      "Overtime",
	StatusFinal:         "Final",
	StatusFinalOvertime: "Final/OT",
	StatusPostponed:     "Postponed",
	StatusCancelled:     "Cancelled",
}

// IsLive reports whether the status means play is in progress right now.
func (s Status) IsLive() bool {
	_, ok := liveStatuses[s]
	return ok
}

// Describe returns the human-readable form of the status, falling back to
// the provided long text for codes outside the fixed vocabulary.
func (s Status) Describe(long string) string {
	if text, ok := statusDescriptions[s]; ok {
		return text
	}

	return long
}

// Team is one side of a scheduled contest.
type Team struct {
	ID   int64
	Name string
}

// Score holds the running or final point totals. Absent before kickoff.
type Score struct {
	Home int
	Away int
}

// Summary is one scheduled contest for the tracked team. Summaries are always
// sourced fresh from the schedule endpoint and never persisted.
type Summary struct {
	Week       int
	Kickoff    time.Time
	Status     Status
	StatusLong string
	Timer      string
	Stage      string
	Home       Team
	Away       Team
	Score      *Score
}

// Opponent returns the non-tracked side of the contest.
func (s Summary) Opponent() Team {
	if s.Home.ID == TrackedTeamID {
		return s.Away
	}

	return s.Home
}

// SortByWeek orders a schedule ascending by week in place.
func SortByWeek(games []Summary) {
	sort.SliceStable(games, func(i, j int) bool { return games[i].Week < games[j].Week })
}

// AnyLive reports whether at least one game in the schedule is in progress.
func AnyLive(games []Summary) bool {
	for _, item := range games {
		if item.Status.IsLive() {
			return true
		}
	}

	return false
}

// CurrentWeek resolves the navigation cursor for a week-sorted schedule: the
// first game whose kickoff is at or after now, or whose status is still NS.
// A fully played-out season falls back to the last game by week order.
func CurrentWeek(games []Summary, now time.Time) (int, bool) {
	if len(games) == 0 {
		return 0, false
	}

	for _, item := range games {
		if !item.Kickoff.Before(now) || item.Status == StatusNotStarted {
			return item.Week, true
		}
	}

	return games[len(games)-1].Week, true
}

// WeekBounds returns the inclusive [min, max] week range of the schedule.
func WeekBounds(games []Summary) (int, int) {
	if len(games) == 0 {
		return 0, 0
	}

	minWeek, maxWeek := games[0].Week, games[0].Week
	for _, item := range games[1:] {
		if item.Week < minWeek {
			minWeek = item.Week
		}
		if item.Week > maxWeek {
			maxWeek = item.Week
		}
	}

	return minWeek, maxWeek
}

// ByWeek finds the game scheduled for the given week.
func ByWeek(games []Summary, week int) (Summary, bool) {
	for _, item := range games {
		if item.Week == week {
			return item, true
		}
	}

	return Summary{}, false
}
