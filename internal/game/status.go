package game

import (
	"encoding/json"
	"fmt"
)

// Outcome classifies a board.
type Outcome int

const (
	InProgress Outcome = iota
	Won
	Draw
)

func (that Outcome) String() string {
	switch that {
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

func (that Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.String())
}

func (that *Outcome) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	switch name {
	case "won":
		*that = Won
	case "draw":
		*that = Draw
	case "in_progress":
		*that = InProgress
	default:
		return fmt.Errorf("unknown outcome %q", name)
	}

	return nil
}

// Status is the result of evaluating the displayed board.
// Winner is set only for Won, Next only for InProgress.
type Status struct {
	Outcome Outcome
	Winner  Mark
	Next    Mark
}

// StatusOf - evaluates a board with the given mark to move.
func StatusOf(board Board, next Mark) Status {
	if winner := CalculateWinner(board); winner != Empty {
		return Status{Outcome: Won, Winner: winner}
	}

	if board.IsFull() {
		return Status{Outcome: Draw}
	}

	return Status{Outcome: InProgress, Next: next}
}

// IsTerminal reports whether the board is won or drawn.
func (that Status) IsTerminal() bool {
	return that.Outcome == Won || that.Outcome == Draw
}

func (that Status) String() string {
	switch that.Outcome {
	case Won:
		return "Winner: " + string(that.Winner)
	case Draw:
		return "Draw: nobody won"
	default:
		return "Next player: " + string(that.Next)
	}
}
