// Package runtime owns the live room: connections, fan-out and the summary trigger.
// It coordinates collaborators without knowing how they are implemented.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Settings tunes the summary trigger and the system broadcasts.
type Settings struct {
	LowThreshold    int
	HighThreshold   int
	Cooldown        time.Duration
	MaxSources      int
	IndexName       string
	SystemSender    string
	DefaultLanguage string
	SendTimeout     time.Duration
	Clock           func() time.Time
}

func DefaultSettings() Settings {
	return Settings{
		LowThreshold:    30,
		HighThreshold:   50,
		Cooldown:        5 * time.Minute,
		MaxSources:      3,
		IndexName:       "final_data",
		SystemSender:    "Golden Retriever",
		DefaultLanguage: "ko",
		Clock:           time.Now,
	}
}

// BroadcastManager serves every participant of the single room.
// Each connection is served by its own goroutine calling Serve; the registry
// and the cooldown are the only state shared between them.
type BroadcastManager struct {
	log         *slog.Logger
	registry    contract.IRegistry
	store       contract.MessageStore
	summarizer  contract.Summarizer
	recommender contract.Recommender
	cooldown    *Cooldown
	settings    Settings
	cycling     atomic.Bool
	// persist keeps each append+broadcast pair on one side of a cycle's clear.
	persist sync.RWMutex
}

func NewBroadcastManager(log *slog.Logger, registry contract.IRegistry, store contract.MessageStore,
	summarizer contract.Summarizer, recommender contract.Recommender, settings Settings) *BroadcastManager {
	if settings.Clock == nil {
		settings.Clock = time.Now
	}
	return &BroadcastManager{
		log:         log,
		registry:    registry,
		store:       store,
		summarizer:  summarizer,
		recommender: recommender,
		cooldown:    NewCooldown(settings.Cooldown, settings.Clock()),
		settings:    settings,
	}
}

// Serve runs one connection from join to leave and blocks until it disconnects.
// An empty participant id is rejected before anything is registered or broadcast.
func (m *BroadcastManager) Serve(ctx context.Context, conn contract.Conn, participantID string) error {
	if err := domain.CheckParticipant(participantID); err != nil {
		return err
	}
	if !m.registry.Add(conn, participantID) {
		return errors.ErrAlreadyRegistered
	}
	m.log.Info("Participant joined", "participant", participantID, "connections", m.registry.Len())
	m.Broadcast(ctx, domain.NewPresenceEnvelope(participantID, domain.Joined))
	defer m.leave(ctx, conn, participantID)

	for {
		frame, err := conn.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				m.log.Debug("Context done, closing connection", "participant", participantID)
			} else {
				m.log.Debug("Connection closed", "participant", participantID, "error", err)
			}
			return nil
		}
		message := domain.NewMessage(participantID, frame.Message, m.settings.Clock())
		if err := m.HandleMessage(ctx, message); err != nil {
			m.log.Warn("Summary cycle aborted", "participant", participantID, "error", err)
		}
	}
}

// leave runs even when ctx is already cancelled, hence the detached context.
func (m *BroadcastManager) leave(ctx context.Context, conn contract.Conn, participantID string) {
	m.registry.Remove(conn, participantID)
	m.log.Info("Participant left", "participant", participantID, "connections", m.registry.Len())
	m.Broadcast(context.WithoutCancel(ctx), domain.NewPresenceEnvelope(participantID, domain.Left))
}

// HandleMessage persists, fans out and evaluates the summary trigger for one message.
// A persistence failure is logged and never prevents the broadcast.
// The returned error only describes a failed read or summary cycle; the caller keeps serving.
func (m *BroadcastManager) HandleMessage(ctx context.Context, message domain.Message) error {
	m.persist.RLock()
	if err := m.store.Append(ctx, message); err != nil {
		m.log.Error("Failed to persist message", "sender", message.Sender, "error", err)
	}
	m.Broadcast(ctx, domain.NewChatEnvelope(message))
	m.persist.RUnlock()

	// The snapshot is read under the guard so a cycle never works on messages
	// another cycle already cleared.
	if !m.cycling.CompareAndSwap(false, true) {
		m.log.Debug("Evaluation already running, deferring")
		return nil
	}
	defer m.cycling.Store(false)

	messages, err := m.store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	if !m.shouldSummarize(domain.CountTokens(domain.Bodies(messages))) {
		return nil
	}
	return m.summarize(ctx, messages)
}

// shouldSummarize always probes the cooldown, so every evaluation moves its baseline
// even when the low threshold alone already decides.
func (m *BroadcastManager) shouldSummarize(tokenCount int) bool {
	now := m.settings.Clock()
	cooled := m.cooldown.Probe(now)
	return tokenCount >= m.settings.LowThreshold || (cooled && tokenCount >= m.settings.HighThreshold)
}

// summarize runs the trigger cycle. Any failing step aborts the remaining ones,
// leaving the store untouched so the next message re-evaluates.
func (m *BroadcastManager) summarize(ctx context.Context, messages []domain.Message) error {
	bodies := domain.Bodies(messages)
	summary, err := m.summarizer.Summarize(ctx, domain.BuildContext(bodies))
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrSummarizer, err)
	}

	phrases := domain.PhrasesFor(summary, m.settings.DefaultLanguage)
	m.Broadcast(ctx, domain.NewSummaryEnvelope(m.settings.SystemSender, phrases.SummaryMessage(summary)))

	results, err := m.recommender.Search(ctx, m.settings.IndexName, summary)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrSearch, err)
	}
	sources := lo.Slice(results, 0, m.settings.MaxSources)
	m.Broadcast(ctx, domain.NewRecommendEnvelope(m.settings.SystemSender, phrases.RecommendPrompt, sources))

	if err := m.clear(ctx, messages); err != nil {
		return err
	}
	m.log.Info("Conversation summarized", "messages", len(bodies), "sources", len(sources))
	return nil
}

// clear drains the store once no append+broadcast pair is in flight.
// Messages persisted after the summarized snapshot are appended back, in order,
// so they stay pending for the next cycle.
func (m *BroadcastManager) clear(ctx context.Context, summarized []domain.Message) error {
	m.persist.Lock()
	defer m.persist.Unlock()

	current, err := m.store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	done := lo.SliceToMap(summarized, func(message domain.Message) (uuid.UUID, struct{}) {
		return message.ID, struct{}{}
	})
	late := lo.Filter(current, func(message domain.Message, _ int) bool {
		_, ok := done[message.ID]
		return !ok
	})

	if err := m.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	for _, message := range late {
		if err := m.store.Append(ctx, message); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrStore, err)
		}
	}
	if len(late) > 0 {
		m.log.Debug("Messages kept for the next cycle", "messages", len(late))
	}
	return nil
}

// Broadcast delivers envelope to every registered connection and returns how many got it.
// A failing recipient is closed and unregistered; the others still receive the envelope.
func (m *BroadcastManager) Broadcast(ctx context.Context, envelope domain.Envelope) int {
	delivered := 0
	m.registry.ForEach(func(conn contract.Conn, participantID string) {
		if err := m.send(ctx, conn, envelope); err != nil {
			m.log.Warn("Dropping unreachable participant",
				"participant", participantID,
				"location", envelope.Location(),
				"error", err)
			m.registry.Remove(conn, participantID)
			_ = conn.Close("send failed")
			return
		}
		delivered++
	})
	return delivered
}

func (m *BroadcastManager) send(ctx context.Context, conn contract.Conn, envelope domain.Envelope) error {
	if m.settings.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.settings.SendTimeout)
		defer cancel()
	}
	if err := conn.Send(ctx, envelope); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConnection, err)
	}
	return nil
}

// Participants returns the number of live connections.
func (m *BroadcastManager) Participants() int {
	return m.registry.Len()
}

// PendingTokens measures the conversation accumulated since the last summary.
func (m *BroadcastManager) PendingTokens(ctx context.Context) (int, error) {
	messages, err := m.store.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	return domain.CountTokens(domain.Bodies(messages)), nil
}

func (m *BroadcastManager) CooldownBaseline() time.Time {
	return m.cooldown.Baseline()
}
