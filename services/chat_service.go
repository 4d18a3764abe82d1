package services

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	errs "chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/runtime"
	"context"
	"errors"
	"log/slog"
)

type IChatService interface {
	Join(ctx context.Context, conn contract.Conn, participantID string) error
	Status(ctx context.Context) (observability.RelayStats, error)
}

// ChatService is the entry point of the transport layers into the room.
type ChatService struct {
	log              *slog.Logger
	manager          *runtime.BroadcastManager
	monitoring       *observability.MonitoringManager
	moderator        *moderation.Moderator
	maxMessageLength int
}

// NewChatService wires the room. moderator may be nil when no word is censored.
func NewChatService(log *slog.Logger, manager *runtime.BroadcastManager, monitoring *observability.MonitoringManager,
	moderator *moderation.Moderator, maxMessageLength int) *ChatService {
	return &ChatService{
		log:              log,
		manager:          manager,
		monitoring:       monitoring,
		moderator:        moderator,
		maxMessageLength: maxMessageLength,
	}
}

// Join serves conn until it disconnects. Inbound frames are validated and censored
// before they reach the room.
func (s *ChatService) Join(ctx context.Context, conn contract.Conn, participantID string) error {
	return s.manager.Serve(ctx, &moderatedConn{
		Conn:      conn,
		log:       s.log.With("participant", participantID),
		moderator: s.moderator,
		maxLength: s.maxMessageLength,
	}, participantID)
}

func (s *ChatService) Status(ctx context.Context) (observability.RelayStats, error) {
	return s.monitoring.Collect(ctx)
}

// moderatedConn drops invalid frames instead of ending the connection.
type moderatedConn struct {
	contract.Conn
	log       *slog.Logger
	moderator *moderation.Moderator
	maxLength int
}

func (c *moderatedConn) Receive(ctx context.Context) (domain.InboundFrame, error) {
	for {
		frame, err := c.Conn.Receive(ctx)
		if errors.Is(err, errs.ErrInvalidFrame) {
			c.log.Debug("Dropping undecodable frame", "error", err)
			continue
		}
		if err != nil {
			return frame, err
		}
		if err := auth.ValidateFrame(frame, c.maxLength); err != nil {
			c.log.Debug("Dropping invalid frame", "error", err)
			continue
		}
		if c.moderator != nil {
			if censored, words := c.moderator.Censor(frame.Message); len(words) > 0 {
				c.log.Info("Message censored", "words", len(words))
				frame.Message = censored
			}
		}
		return frame, nil
	}
}
