package websocket

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/game"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/notify"
)

const (
	sendBuffer   = 16
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

var errSlowClient = errors.New("client send buffer is full")

// client is one websocket connection bound to one session.
type client struct {
	conn      *websocket.Conn
	sessionID string
	toast     *notify.Toast

	mu     sync.Mutex
	send   chan []byte
	closed bool
	// moves of the last state pushed to the client, shown by the history toast.
	moves []game.MoveEntry
}

func newClient(conn *websocket.Conn, sessionID string) *client {
	return &client{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

func (that *client) sendMessage(action string, payload Payload) error {
	data, err := encode(action, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", action, err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return nil
	}

	select {
	case that.send <- data:
		return nil
	default:
		return errSlowClient
	}
}

func (that *client) sendError(action, message string) error {
	return that.sendMessage(action, Payload{Error: message})
}

func (that *client) setMoves(moves []game.MoveEntry) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.moves = moves
}

func (that *client) lastMoves() []game.MoveEntry {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.moves
}

func (that *client) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.closed {
		that.closed = true
		close(that.send)
	}
}

// writeLoop - the only writer of the connection. The peer is pinged on every tick,
// its pongs keep the read deadline of readLoop alive.
func (that *client) writeLoop(interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-that.send:
			if !ok {
				_ = that.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return nil
			}

			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}
