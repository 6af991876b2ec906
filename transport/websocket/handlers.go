package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

func (that *Server) handleState(ctx context.Context, c *client, msg *Message) error {
	view, err := that.game.GetState(ctx, c.sessionID)
	if err != nil {
		return that.replyError(c, msg.Action, err)
	}

	return c.sendMessage(msg.Action, Payload{Game: view})
}

func (that *Server) handlePlay(ctx context.Context, c *client, msg *Message) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil || payloadReq.Cell == nil {
		return c.sendError(msg.Action, "cell is required")
	}

	view, applied, err := that.game.Play(ctx, c.sessionID, *payloadReq.Cell)
	if err != nil {
		return that.replyError(c, msg.Action, err)
	}

	return c.sendMessage(msg.Action, Payload{Game: view, Applied: &applied})
}

func (that *Server) handleJump(ctx context.Context, c *client, msg *Message) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil || payloadReq.Move == nil {
		return c.sendError(msg.Action, "move is required")
	}

	view, err := that.game.JumpTo(ctx, c.sessionID, *payloadReq.Move)
	if err != nil {
		return that.replyError(c, msg.Action, err)
	}

	return c.sendMessage(msg.Action, Payload{Game: view})
}

func (that *Server) handleRestart(ctx context.Context, c *client, msg *Message) error {
	view, err := that.game.Restart(ctx, c.sessionID)
	if err != nil {
		return that.replyError(c, msg.Action, err)
	}

	return c.sendMessage(msg.Action, Payload{Game: view})
}

// handleDismiss - hides the history toast, the toast itself reports history:hide.
func (that *Server) handleDismiss(_ context.Context, c *client, _ *Message) error {
	c.toast.Dismiss()
	return nil
}

// replyError - rejected requests are reported to the client, anything else is also returned to be logged.
func (that *Server) replyError(c *client, action string, err error) error {
	if isClientError(err) {
		return c.sendError(action, err.Error())
	}

	if sendErr := c.sendError(action, "internal error"); sendErr != nil {
		return fmt.Errorf("failed to send error response: %w", sendErr)
	}

	return err
}

func isClientError(err error) bool {
	return errors.Is(err, apperror.ErrInvalidCell) ||
		errors.Is(err, apperror.ErrOutOfRange) ||
		errors.Is(err, apperror.ErrSessionNotFound)
}
