package favorites

import (
	"fmt"

	"github.com/riskibarqy/packers-hub/internal/domain/player"
)

// Entry wraps one favorited player. Insertion order of entries defines
// display order; at most one entry exists per player id.
type Entry struct {
	Player player.Player `json:"player"`
}

func (e Entry) Validate() error {
	if err := e.Player.Validate(); err != nil {
		return fmt.Errorf("favorite entry: %w", err)
	}

	return nil
}
