package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/game"
)

const (
	ActionState   = "game:state"
	ActionPlay    = "game:play"
	ActionJump    = "game:jump"
	ActionRestart = "game:restart"

	ActionHistoryDismiss = "history:dismiss"

	// pushed by the server
	ActionUpdate      = "game:update"
	ActionHistoryShow = "history:show"
	ActionHistoryHide = "history:hide"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Cell    *int             `json:"cell,omitempty"`
	Move    *int             `json:"move,omitempty"`
	Game    *entity.GameView `json:"game,omitempty"`
	Applied *bool            `json:"applied,omitempty"`
	Moves   []game.MoveEntry `json:"moves,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func encode(action string, payload Payload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: raw})
}
