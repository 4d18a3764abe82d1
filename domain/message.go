// Package domain contains core concepts of the chat relay.
// This file defines chat Messages and the inbound frames they are built from.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat turn.
type Message struct {
	ID     uuid.UUID // unique identifier
	Sender string
	Body   string
	At     time.Time
}

// NewMessage stamps a message with a fresh id and the given creation time.
func NewMessage(sender, body string, at time.Time) Message {
	return Message{
		ID:     uuid.New(),
		Sender: sender,
		Body:   body,
		At:     at.UTC(),
	}
}

// InboundFrame is what a participant sends over its connection.
type InboundFrame struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// Bodies extracts message bodies, preserving order.
func Bodies(messages []Message) []string {
	bodies := make([]string, 0, len(messages))
	for _, m := range messages {
		bodies = append(bodies, m.Body)
	}
	return bodies
}
