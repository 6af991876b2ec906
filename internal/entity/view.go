package entity

import "github.com/rocketscienceinc/tictactoe-timetravel/internal/game"

// GameView is what the presentation layer renders after every call.
type GameView struct {
	SessionID   string           `json:"session_id"`
	Board       game.Board       `json:"board"`
	Status      string           `json:"status"`
	Outcome     game.Outcome     `json:"outcome"`
	Winner      game.Mark        `json:"winner,omitempty"`
	Next        game.Mark        `json:"next,omitempty"`
	XIsNext     bool             `json:"x_is_next"`
	CurrentMove int              `json:"current_move"`
	HistoryLen  int              `json:"history_len"`
	WinningLine []int            `json:"winning_line,omitempty"`
	CanRestart  bool             `json:"can_restart"`
	Moves       []game.MoveEntry `json:"moves"`
}

func NewGameView(sessionID string, engine *game.Engine) *GameView {
	squares := engine.CurrentSquares()
	status := engine.Status()

	view := &GameView{
		SessionID:   sessionID,
		Board:       squares,
		Status:      status.String(),
		Outcome:     status.Outcome,
		Winner:      status.Winner,
		Next:        status.Next,
		XIsNext:     engine.XIsNext(),
		CurrentMove: engine.CurrentMove(),
		HistoryLen:  engine.Len(),
		CanRestart:  status.IsTerminal(),
		Moves:       engine.Moves(),
	}

	if line, ok := game.WinningLine(squares); ok {
		view.WinningLine = line[:]
	}

	return view
}
