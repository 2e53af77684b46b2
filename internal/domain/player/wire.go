package player

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
)

// wireEnvelope covers both payload forms the backend emits for a player row:
// a flat player object, or the same object nested under a "player" key.
type wireEnvelope struct {
	Nested *Player `json:"player"`

	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Age      int      `json:"age"`
}

func (w wireEnvelope) resolve() Player {
	if w.Nested != nil && w.Nested.ID > 0 {
		return *w.Nested
	}

	return Player{
		ID:       w.ID,
		Name:     w.Name,
		Position: w.Position,
		Age:      w.Age,
	}
}

// FromWire decodes one player row, accepting both the nested and the flat
// form. Every consumer goes through this adapter so shape handling lives in
// exactly one place.
func FromWire(raw []byte) (Player, error) {
	var envelope wireEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return Player{}, fmt.Errorf("decode player payload: %w", err)
	}

	resolved := envelope.resolve()
	if err := resolved.Validate(); err != nil {
		return Player{}, fmt.Errorf("invalid player payload: %w", err)
	}

	return resolved, nil
}

// ListFromWire decodes an array of player rows, skipping rows that fail to
// resolve to a valid identity rather than failing the whole list.
func ListFromWire(raw []byte) ([]Player, error) {
	var envelopes []wireEnvelope
	if err := sonic.Unmarshal(raw, &envelopes); err != nil {
		return nil, fmt.Errorf("decode player list payload: %w", err)
	}

	out := make([]Player, 0, len(envelopes))
	for _, envelope := range envelopes {
		resolved := envelope.resolve()
		if resolved.Validate() != nil {
			continue
		}
		out = append(out, resolved)
	}

	return out, nil
}
