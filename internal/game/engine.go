package game

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

// EventKind names the operation that changed the engine.
type EventKind string

const (
	EventPlayed    EventKind = "played"
	EventJumped    EventKind = "jumped"
	EventRestarted EventKind = "restarted"
)

// Event is emitted to observers after every state change.
type Event struct {
	Kind        EventKind
	CurrentMove int
	HistoryLen  int
}

type observer struct {
	id int
	fn func(Event)
}

// Engine keeps the full move history of one game and the position being displayed.
//
// The player to move is derived from the parity of the current move and is never stored.
// An Engine is not safe for concurrent use.
type Engine struct {
	history     []Board
	currentMove int

	observers []observer
	nextID    int
}

// New returns an engine holding only the empty starting board.
func New() *Engine {
	return &Engine{
		history: []Board{{}},
	}
}

// Restore - rebuilds an engine from a stored history and validates it.
func Restore(history []Board, currentMove int) (*Engine, error) {
	if err := validateHistory(history); err != nil {
		return nil, err
	}

	if currentMove < 0 || currentMove >= len(history) {
		return nil, fmt.Errorf("%w: current move %d of %d", apperror.ErrCorruptHistory, currentMove, len(history))
	}

	restored := make([]Board, len(history))
	copy(restored, history)

	return &Engine{
		history:     restored,
		currentMove: currentMove,
	}, nil
}

// CurrentSquares returns a copy of the displayed board.
func (that *Engine) CurrentSquares() Board {
	return that.history[that.currentMove]
}

func (that *Engine) CurrentMove() int {
	return that.currentMove
}

// Len returns the number of history entries, the starting board included.
func (that *Engine) Len() int {
	return len(that.history)
}

// History returns a copy of every snapshot.
func (that *Engine) History() []Board {
	history := make([]Board, len(that.history))
	copy(history, that.history)

	return history
}

func (that *Engine) XIsNext() bool {
	return that.currentMove%2 == 0
}

// Next returns the mark of the player to move.
func (that *Engine) Next() Mark {
	if that.XIsNext() {
		return X
	}

	return O
}

// Status evaluates the displayed board.
func (that *Engine) Status() Status {
	return StatusOf(that.CurrentSquares(), that.Next())
}

// Play - places the next mark on cell.
// Playing an occupied cell or playing after a win is ignored and reports false.
// Any entries after the current move are discarded before the new board is appended.
func (that *Engine) Play(cell int) (bool, error) {
	if !validCell(cell) {
		return false, fmt.Errorf("%w: %d", apperror.ErrInvalidCell, cell)
	}

	squares := that.CurrentSquares()
	if CalculateWinner(squares) != Empty || squares[cell] != Empty {
		return false, nil
	}

	squares[cell] = that.Next()

	that.history = append(that.history[:that.currentMove+1:that.currentMove+1], squares)
	that.currentMove = len(that.history) - 1

	that.emit(EventPlayed)

	return true, nil
}

// JumpTo - displays an earlier (or later) move without touching the history.
func (that *Engine) JumpTo(move int) error {
	if move < 0 || move >= len(that.history) {
		return fmt.Errorf("%w: %d not in [0, %d)", apperror.ErrOutOfRange, move, len(that.history))
	}

	if move == that.currentMove {
		return nil
	}

	that.currentMove = move
	that.emit(EventJumped)

	return nil
}

// Restart - drops the whole history and returns to the empty board.
func (that *Engine) Restart() {
	that.history = []Board{{}}
	that.currentMove = 0

	that.emit(EventRestarted)
}

// Subscribe registers fn to be called synchronously after every change.
func (that *Engine) Subscribe(fn func(Event)) func() {
	id := that.nextID
	that.nextID++
	that.observers = append(that.observers, observer{id: id, fn: fn})

	return func() {
		for i, o := range that.observers {
			if o.id == id {
				that.observers = append(that.observers[:i], that.observers[i+1:]...)
				return
			}
		}
	}
}

func (that *Engine) emit(kind EventKind) {
	ev := Event{
		Kind:        kind,
		CurrentMove: that.currentMove,
		HistoryLen:  len(that.history),
	}

	for _, o := range append([]observer(nil), that.observers...) {
		o.fn(ev)
	}
}

func validateHistory(history []Board) error {
	if len(history) == 0 {
		return fmt.Errorf("%w: empty history", apperror.ErrCorruptHistory)
	}

	if history[0] != (Board{}) {
		return fmt.Errorf("%w: first entry is not the empty board", apperror.ErrCorruptHistory)
	}

	for i := 1; i < len(history); i++ {
		if err := validateStep(history[i-1], history[i], i); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that next is prev with exactly one mark added by the player whose turn it was.
func validateStep(prev, next Board, move int) error {
	if CalculateWinner(prev) != Empty {
		return fmt.Errorf("%w: move %d played after a win", apperror.ErrCorruptHistory, move)
	}

	expected := X
	if (move-1)%2 == 1 {
		expected = O
	}

	placed := -1
	for cell := range next {
		if !next[cell].valid() {
			return fmt.Errorf("%w: move %d has unknown mark %q", apperror.ErrCorruptHistory, move, next[cell])
		}

		if prev[cell] == next[cell] {
			continue
		}

		if prev[cell] != Empty || placed != -1 {
			return fmt.Errorf("%w: move %d changes more than one empty cell", apperror.ErrCorruptHistory, move)
		}
		placed = cell
	}

	if placed == -1 || next[placed] != expected {
		return fmt.Errorf("%w: move %d must place %s", apperror.ErrCorruptHistory, move, expected)
	}

	return nil
}
