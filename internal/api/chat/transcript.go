package chat

import (
	"slices"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// Transcript is the ordered turn history of one conversation. The first turn
// is the persona instruction and survives every trim.
type Transcript struct {
	turns []types.Turn
	max   int
}

func NewTranscript(persona string, max int) *Transcript {
	t := &Transcript{max: max}
	t.Reset(persona)
	return t
}

// Reset drops all history and keeps only a fresh persona turn.
func (t *Transcript) Reset(persona string) {
	t.turns = []types.Turn{{Role: types.RoleSystem, Text: persona}}
}

// Append adds turns in order and trims the result to the configured bound.
func (t *Transcript) Append(turns ...types.Turn) {
	t.turns = Trim(append(t.turns, turns...), t.max)
}

// Turns returns a copy of the history.
func (t *Transcript) Turns() []types.Turn {
	return slices.Clone(t.turns)
}

func (t *Transcript) Len() int {
	return len(t.turns)
}

// Trim keeps turns[0] and the most recent max-1 turns when len(turns) > max.
// A max below 1 disables trimming.
func Trim(turns []types.Turn, max int) []types.Turn {
	if max < 1 || len(turns) <= max {
		return turns
	}
	out := make([]types.Turn, 0, max)
	out = append(out, turns[0])
	return append(out, turns[len(turns)-(max-1):]...)
}
