package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/game"
)

// Event tells listeners that the history of a session changed.
type Event struct {
	SessionID   string         `json:"session_id"`
	Kind        game.EventKind `json:"kind"`
	CurrentMove int            `json:"current_move"`
	HistoryLen  int            `json:"history_len"`
	Status      string         `json:"status"`
	At          time.Time      `json:"at"`
}

// GameEvent converts an engine event for the given session.
func GameEvent(sessionID string, ev game.Event, status game.Status) Event {
	return Event{
		SessionID:   sessionID,
		Kind:        ev.Kind,
		CurrentMove: ev.CurrentMove,
		HistoryLen:  ev.HistoryLen,
		Status:      status.String(),
		At:          time.Now().UTC(),
	}
}

// Engine returns the engine event carried by ev.
func (that Event) Engine() game.Event {
	return game.Event{
		Kind:        that.Kind,
		CurrentMove: that.CurrentMove,
		HistoryLen:  that.HistoryLen,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout publishes every event to all of its publishers.
type Fanout []Publisher

func (that Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, publisher := range that {
		if err := publisher.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

const subscriberBuffer = 8

type subscriber struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func (that *subscriber) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.closed {
		that.closed = true
		close(that.ch)
	}
}

// send reports false when the buffer is full.
func (that *subscriber) send(ev Event) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return true
	}

	select {
	case that.ch <- ev:
		return true
	default:
		return false
	}
}

// Hub delivers session events to in-process subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers a listener for one session. The channel is closed on unsubscribe,
// when ctx is done, or when the listener falls too far behind.
func (that *Hub) Subscribe(ctx context.Context, sessionID string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	that.mu.Lock()
	set := that.subs[sessionID]
	if set == nil {
		set = make(map[*subscriber]struct{})
		that.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	that.mu.Unlock()

	unsubOnce := &sync.Once{}
	done := make(chan struct{})
	unsub := func() {
		unsubOnce.Do(func() {
			that.remove(sessionID, sub)
			sub.close()
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-done:
		}
	}()

	return sub.ch, unsub
}

// Publish never blocks: slow subscribers are dropped and their channel closed.
func (that *Hub) Publish(_ context.Context, ev Event) error {
	that.mu.Lock()
	subs := make([]*subscriber, 0, len(that.subs[ev.SessionID]))
	for sub := range that.subs[ev.SessionID] {
		subs = append(subs, sub)
	}
	that.mu.Unlock()

	for _, sub := range subs {
		if !sub.send(ev) {
			that.remove(ev.SessionID, sub)
			sub.close()
		}
	}

	return nil
}

// Subscribers returns the number of listeners of a session.
func (that *Hub) Subscribers(sessionID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.subs[sessionID])
}

func (that *Hub) remove(sessionID string, sub *subscriber) {
	that.mu.Lock()
	defer that.mu.Unlock()

	set, ok := that.subs[sessionID]
	if !ok {
		return
	}

	delete(set, sub)
	if len(set) == 0 {
		delete(that.subs, sessionID)
	}
}
