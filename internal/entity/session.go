package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/game"
)

// Session is the stored form of one game page.
type Session struct {
	ID          string       `json:"id"`
	History     []game.Board `json:"history"`
	CurrentMove int          `json:"current_move"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewSession - snapshots the engine under the given session ID.
func NewSession(id string, engine *game.Engine) *Session {
	return &Session{
		ID:          id,
		History:     engine.History(),
		CurrentMove: engine.CurrentMove(),
		UpdatedAt:   time.Now().UTC(),
	}
}

// Engine - restores a playable engine from the snapshot.
func (that *Session) Engine() (*game.Engine, error) {
	engine, err := game.Restore(that.History, that.CurrentMove)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", that.ID, err)
	}

	return engine, nil
}
