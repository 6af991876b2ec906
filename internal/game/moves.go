package game

import "fmt"

// MoveEntry describes one entry of the history browser.
type MoveEntry struct {
	Move    int    `json:"move"`
	Label   string `json:"label"`
	Winner  Mark   `json:"winner,omitempty"`
	Current bool   `json:"current"`
}

// Moves - lists every history entry with the label the history browser shows.
func (that *Engine) Moves() []MoveEntry {
	moves := make([]MoveEntry, 0, len(that.history))

	for move, squares := range that.history {
		entry := MoveEntry{
			Move:    move,
			Winner:  CalculateWinner(squares),
			Current: move == that.currentMove,
		}

		switch {
		case entry.Winner != Empty:
			entry.Label = fmt.Sprintf("Winner: %s (move %d)", entry.Winner, move)
		case move > 0:
			entry.Label = fmt.Sprintf("Go to move #%d", move)
		default:
			entry.Label = "Go to game start"
		}

		moves = append(moves, entry)
	}

	return moves
}
