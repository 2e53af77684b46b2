package player

import "fmt"

// Position is the short roster position code used by the stats backend.
type Position string

const (
	PositionQuarterback  Position = "QB"
	PositionRunningBack  Position = "RB"
	PositionFullback     Position = "FB"
	PositionWideReceiver Position = "WR"
	PositionTightEnd     Position = "TE"
	PositionKicker       Position = "K"
	PositionPunter       Position = "P"
)

// Player identifies one roster athlete. Identity records are immutable once
// fetched; the engine never mutates them locally.
type Player struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position,omitempty"`
	Age      int      `json:"age,omitempty"`
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
