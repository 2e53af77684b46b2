package stats

import (
	"fmt"
	"strconv"

	"github.com/riskibarqy/packers-hub/internal/domain/player"
)

// Group is one canonical stat category after normalization.
type Group struct {
	Title   string
	Entries []Entry
}

// Entry is a single labelled stat line. Values are display strings so ratio
// fields ("18/27") and derived fields ("5.0") share one representation.
type Entry struct {
	Label string
	Value string
}

const (
	TitlePassing   = "Passing"
	TitleRushing   = "Rushing"
	TitleReceiving = "Receiving"
	TitleDefense   = "Defense"
	TitleKicking   = "Kicking"
	TitleScoring   = "Scoring"
)

// categoryView is the shape-independent intermediate both wire forms reduce
// to before the inclusion rules run.
type categoryView struct {
	passAttempts    int
	passCompletions int
	passYards       int
	passTDs         int
	passINTs        int
	passCompAtt     string

	rushCarries int
	rushYards   int
	rushTDs     int

	recvTargets    int
	recvReceptions int
	recvYards      int
	recvTDs        int

	defTackles       int
	defSacks         float64
	defINTs          int
	defForcedFumbles int

	kickFGAttempts int
	kickFG         string
	kickXP         string

	scorTDs    int
	scorTwoPt  int
	scorPoints int
}

// Normalize maps a snapshot in either wire shape into the fixed-order group
// sequence. Pure and deterministic: identical input always yields identical
// output, and nothing here performs I/O or touches shared state.
func Normalize(snapshot Snapshot, position player.Position) []Group {
	view := reduceSnapshot(snapshot)
	groups := make([]Group, 0, 6)

	if view.passAttempts > 0 || position == player.PositionQuarterback {
		groups = append(groups, Group{
			Title: TitlePassing,
			Entries: []Entry{
				{Label: "Yards", Value: strconv.Itoa(view.passYards)},
				{Label: "TDs", Value: strconv.Itoa(view.passTDs)},
				{Label: "INTs", Value: strconv.Itoa(view.passINTs)},
				{Label: "Comp/Att", Value: view.passCompAtt},
			},
		})
	}

	if view.rushCarries > 0 {
		groups = append(groups, Group{
			Title: TitleRushing,
			Entries: []Entry{
				{Label: "Yards", Value: strconv.Itoa(view.rushYards)},
				{Label: "TDs", Value: strconv.Itoa(view.rushTDs)},
				{Label: "Carries", Value: strconv.Itoa(view.rushCarries)},
				{Label: "YPC", Value: yardsPerCarry(view.rushYards, view.rushCarries)},
			},
		})
	}

	if view.recvTargets > 0 || view.recvReceptions > 0 {
		groups = append(groups, Group{
			Title: TitleReceiving,
			Entries: []Entry{
				{Label: "Yards", Value: strconv.Itoa(view.recvYards)},
				{Label: "TDs", Value: strconv.Itoa(view.recvTDs)},
				{Label: "Receptions", Value: strconv.Itoa(view.recvReceptions)},
				{Label: "Targets", Value: strconv.Itoa(view.recvTargets)},
			},
		})
	}

	if view.defTackles > 0 {
		groups = append(groups, Group{
			Title: TitleDefense,
			Entries: []Entry{
				{Label: "Tackles", Value: strconv.Itoa(view.defTackles)},
				{Label: "Sacks", Value: formatNumber(view.defSacks)},
				{Label: "INTs", Value: strconv.Itoa(view.defINTs)},
				{Label: "Forced Fumbles", Value: strconv.Itoa(view.defForcedFumbles)},
			},
		})
	}

	if view.kickFGAttempts > 0 || position == player.PositionKicker {
		groups = append(groups, Group{
			Title: TitleKicking,
			Entries: []Entry{
				{Label: "FG Made/Att", Value: view.kickFG},
				{Label: "XP Made/Att", Value: view.kickXP},
			},
		})
	}

	if view.scorPoints > 0 {
		groups = append(groups, Group{
			Title: TitleScoring,
			Entries: []Entry{
				{Label: "Total TDs", Value: strconv.Itoa(view.scorTDs)},
				{Label: "2PT Conversions", Value: strconv.Itoa(view.scorTwoPt)},
				{Label: "Points", Value: strconv.Itoa(view.scorPoints)},
			},
		})
	}

	return groups
}

func reduceSnapshot(snapshot Snapshot) categoryView {
	if snapshot.Flat != nil {
		return reduceFlat(snapshot.Flat)
	}
	if len(snapshot.Groups) > 0 {
		return reduceGrouped(snapshot)
	}

	return categoryView{passCompAtt: "0/0", kickFG: "0/0", kickXP: "0/0"}
}

func reduceFlat(flat *FlatCategories) categoryView {
	view := categoryView{passCompAtt: "0/0", kickFG: "0/0", kickXP: "0/0"}

	if p := flat.Passing; p != nil {
		view.passAttempts = p.Attempts
		view.passCompletions = p.Completions
		view.passYards = p.Yards
		view.passTDs = p.Touchdowns
		view.passINTs = p.Interceptions
		view.passCompAtt = fmt.Sprintf("%d/%d", p.Completions, p.Attempts)
	}
	if r := flat.Rushing; r != nil {
		view.rushCarries = r.Carries
		view.rushYards = r.Yards
		view.rushTDs = r.Touchdowns
	}
	if r := flat.Receiving; r != nil {
		view.recvTargets = r.Targets
		view.recvReceptions = r.Receptions
		view.recvYards = r.Yards
		view.recvTDs = r.Touchdowns
	}
	if d := flat.Defense; d != nil {
		view.defTackles = d.Tackles
		view.defSacks = d.Sacks
		view.defINTs = d.Interceptions
		view.defForcedFumbles = d.ForcedFumbles
	}
	if k := flat.Kicking; k != nil {
		view.kickFGAttempts = k.FieldGoalsAttempts
		view.kickFG = fmt.Sprintf("%d/%d", k.FieldGoalsMade, k.FieldGoalsAttempts)
		view.kickXP = fmt.Sprintf("%d/%d", k.ExtraPointsMade, k.ExtraPointsAttempts)
	}
	if s := flat.Scoring; s != nil {
		view.scorTDs = s.Touchdowns
		view.scorTwoPt = s.TwoPointConversions
		view.scorPoints = s.Points
	}

	return view
}

func reduceGrouped(snapshot Snapshot) categoryView {
	view := categoryView{passCompAtt: "0/0", kickFG: "0/0", kickXP: "0/0"}

	if g := snapshot.group("Passing"); g != nil {
		view.passYards = g.statInt("yards")
		view.passTDs = g.statInt("passing touch downs", "touchdowns")
		view.passINTs = g.statInt("interceptions")
		if compAtt, ok := g.stat("comp att", "comp/att"); ok && compAtt != "" {
			view.passCompAtt = compAtt
			view.passCompletions, view.passAttempts = splitRatio(compAtt)
		}
	}
	if g := snapshot.group("Rushing"); g != nil {
		view.rushCarries = g.statInt("total rushes", "carries", "attempts")
		view.rushYards = g.statInt("yards")
		view.rushTDs = g.statInt("rushing touch downs", "touchdowns")
	}
	if g := snapshot.group("Receiving"); g != nil {
		view.recvTargets = g.statInt("targets")
		view.recvReceptions = g.statInt("total receptions", "receptions")
		view.recvYards = g.statInt("yards")
		view.recvTDs = g.statInt("receiving touch downs", "touchdowns")
	}
	if g := snapshot.group("Defensive"); g != nil {
		applyDefense(&view, g)
	} else {
		applyDefense(&view, snapshot.group("Defense"))
	}
	if g := snapshot.group("Kicking"); g != nil {
		if fg, ok := g.stat("field goals", "fg"); ok && fg != "" {
			view.kickFG = fg
			_, view.kickFGAttempts = splitRatio(fg)
		}
		if xp, ok := g.stat("extra point", "extra points", "xp"); ok && xp != "" {
			view.kickXP = xp
		}
	}
	if g := snapshot.group("Scoring"); g != nil {
		view.scorTDs = g.statInt("touchdowns", "total td")
		view.scorTwoPt = g.statInt("two point conversions", "two pt")
		view.scorPoints = g.statInt("points", "total points")
	}

	return view
}

func applyDefense(view *categoryView, g *WireGroup) {
	if g == nil {
		return
	}

	view.defTackles = g.statInt("tackles")
	view.defSacks = g.statFloat("sacks")
	view.defINTs = g.statInt("interceptions")
	view.defForcedFumbles = g.statInt("ff", "forced fumbles")
}

// yardsPerCarry formats yards/carries to one decimal, returning "0.0" for a
// zero carry count instead of dividing.
func yardsPerCarry(yards, carries int) string {
	if carries == 0 {
		return "0.0"
	}

	return strconv.FormatFloat(float64(yards)/float64(carries), 'f', 1, 64)
}
