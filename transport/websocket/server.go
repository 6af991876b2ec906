package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/events"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/game"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/notify"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
)

const maxMessageSize = 4096

type eventSource interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan events.Event, func())
}

type Server struct {
	logger *slog.Logger

	game     service.GameService
	source   eventSource
	display  time.Duration
	upgrader websocket.Upgrader

	// pingInterval is how often the peer is pinged, pongWait how long it may stay silent.
	pingInterval time.Duration
	pongWait     time.Duration

	handlers map[string]func(ctx context.Context, c *client, msg *Message) error
}

// New - creates the websocket endpoint. display is how long the history toast stays visible.
func New(logger *slog.Logger, game service.GameService, source eventSource, display time.Duration) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		game:    game,
		source:  source,
		display: display,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		pingInterval: pingInterval,
		pongWait:     pingInterval + writeWait,

		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers[ActionState] = server.handleState
	server.handlers[ActionPlay] = server.handlePlay
	server.handlers[ActionJump] = server.handleJump
	server.handlers[ActionRestart] = server.handleRestart
	server.handlers[ActionHistoryDismiss] = server.handleDismiss

	return server
}

// ServeHTTP - upgrades the connection and serves one session until the socket closes.
// Without a session query parameter a new session is created.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	view, err := that.resolveSession(ctx, r.URL.Query().Get("session"))
	if errors.Is(err, apperror.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	if err != nil {
		that.logger.Error("failed to resolve session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		that.logger.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log := that.logger.With("sessionID", view.SessionID)
	log.Info("WebSocket connection established")

	c := newClient(conn, view.SessionID)
	c.setMoves(view.Moves)

	c.toast = notify.NewToast(that.display, func(visible bool) {
		action, payload := ActionHistoryHide, Payload{}
		if visible {
			action, payload = ActionHistoryShow, Payload{Moves: c.lastMoves()}
		}

		if err := c.sendMessage(action, payload); err != nil {
			log.Error("failed to send history notification", "error", err)
		}
	})

	updates, unsubscribe := that.source.Subscribe(ctx, view.SessionID)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		that.pushUpdates(ctx, c, updates, unsubscribe)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := c.writeLoop(that.pingInterval); err != nil {
			log.Debug("write loop stopped", "error", err)
			conn.Close()
		}
	}()

	if err = c.sendMessage(ActionState, Payload{Game: view}); err != nil {
		log.Error("failed to send initial state", "error", err)
	}

	that.readLoop(ctx, c)

	// cancel ends the subscription and with it pushUpdates.
	cancel()
	c.toast.Close()
	c.close()
	wg.Wait()

	log.Info("WebSocket connection closed")
}

func (that *Server) resolveSession(ctx context.Context, sessionID string) (*entity.GameView, error) {
	if sessionID == "" {
		return that.game.CreateSession(ctx)
	}

	return that.game.GetState(ctx, sessionID)
}

// readLoop - processes messages from the client until the connection fails.
// A peer that answers no ping within pongWait is considered gone.
func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop", "sessionID", c.sessionID)

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(that.pongWait)); err != nil {
		log.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(that.pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			log.Warn("unknown action", "action", msg.Action)
			if err = c.sendError(msg.Action, "unknown action"); err != nil {
				log.Error("failed to send error response", "error", err)
			}
			continue
		}

		if err = handler(ctx, c, &msg); err != nil {
			log.Error("error processing message", "action", msg.Action, "error", err)
		}
	}
}

// pushUpdates - forwards session events to the client and drives its history toast.
// The hub drops subscribers that fall behind. While the connection lives the subscription
// is renewed and a fresh update is pushed, since events were lost in between.
func (that *Server) pushUpdates(ctx context.Context, c *client, updates <-chan events.Event, unsubscribe func()) {
	log := that.logger.With("method", "pushUpdates", "sessionID", c.sessionID)

	for {
		for ev := range updates {
			if that.pushState(ctx, c) != nil {
				c.toast.Notify(ev.Engine())
			}
		}

		unsubscribe()

		if ctx.Err() != nil {
			return
		}

		log.Warn("event stream dropped, resubscribing")

		updates, unsubscribe = that.source.Subscribe(ctx, c.sessionID)

		if view := that.pushState(ctx, c); view != nil {
			c.toast.Notify(game.Event{CurrentMove: view.CurrentMove, HistoryLen: view.HistoryLen})
		}
	}
}

// pushState - sends the current state as game:update, nil is returned when it could not be loaded.
func (that *Server) pushState(ctx context.Context, c *client) *entity.GameView {
	log := that.logger.With("method", "pushState", "sessionID", c.sessionID)

	view, err := that.game.GetState(ctx, c.sessionID)
	if err != nil {
		log.Error("failed to get state", "error", err)
		return nil
	}

	c.setMoves(view.Moves)

	if err = c.sendMessage(ActionUpdate, Payload{Game: view}); err != nil {
		log.Error("failed to send update", "error", err)
	}

	return view
}
