// Package ws adapts WebSocket connections to the room's connection contract.
package ws

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Conn is one participant's WebSocket. Envelopes are written as JSON text messages.
type Conn struct {
	conn *websocket.Conn
}

func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

func (c *Conn) Send(ctx context.Context, envelope domain.Envelope) error {
	return wsjson.Write(ctx, c.conn, envelope.Wire())
}

// Receive blocks until the next frame. A message that is not a JSON frame yields
// ErrInvalidFrame and leaves the connection open.
func (c *Conn) Receive(ctx context.Context) (domain.InboundFrame, error) {
	var frame domain.InboundFrame
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return frame, err
	}
	if typ != websocket.MessageText {
		return frame, fmt.Errorf("%w: binary message", errors.ErrInvalidFrame)
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return frame, fmt.Errorf("%w: %v", errors.ErrInvalidFrame, err)
	}
	return frame, nil
}

func (c *Conn) Close(reason string) error {
	return c.conn.Close(websocket.StatusGoingAway, reason)
}
