package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const DefaultSubjectPrefix = "tictactoe.history"

// NATSPublisher forwards session events to a NATS subject per session.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	return &NATSPublisher{
		conn:   conn,
		prefix: prefix,
	}
}

// Connect - dials the broker with the reconnect policy used by the game servers.
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return conn, nil
}

// Subject returns the subject events of a session are published on.
func (that *NATSPublisher) Subject(sessionID string) string {
	return that.prefix + "." + sessionID
}

func (that *NATSPublisher) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	if err = that.conn.Publish(that.Subject(ev.SessionID), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
