package runtime

import (
	"chat-relay/domain"
	"context"
	"io"
	"sync"
	"time"
)

// fakeConn records what it is sent and replays inbound frames pushed by the test.
type fakeConn struct {
	mu       sync.Mutex
	sent     []domain.Envelope
	inbound  chan domain.InboundFrame
	sendErr  error
	closed   bool
	closedBy string
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan domain.InboundFrame, 64)}
}

func (c *fakeConn) Send(_ context.Context, envelope domain.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, envelope)
	return nil
}

func (c *fakeConn) Receive(ctx context.Context) (domain.InboundFrame, error) {
	select {
	case <-ctx.Done():
		return domain.InboundFrame{}, ctx.Err()
	case frame, ok := <-c.inbound:
		if !ok {
			return domain.InboundFrame{}, io.EOF
		}
		return frame, nil
	}
}

func (c *fakeConn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.closedBy = reason
	return nil
}

func (c *fakeConn) Envelopes() []domain.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Envelope, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *fakeConn) Locations() []domain.Location {
	var locations []domain.Location
	for _, e := range c.Envelopes() {
		locations = append(locations, e.Location())
	}
	return locations
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// memStore is an ordered in-memory message store.
type memStore struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (s *memStore) Append(_ context.Context, message domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return nil
}

func (s *memStore) ReadAll(_ context.Context) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (s *memStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	return nil
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// eventStore wraps memStore and records the order of store writes and gated broadcasts.
type eventStore struct {
	memStore
	eventsMu sync.Mutex
	events   []string
}

func (s *eventStore) record(event string) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	s.events = append(s.events, event)
}

func (s *eventStore) Events() []string {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

func (s *eventStore) Append(ctx context.Context, message domain.Message) error {
	s.record("append:" + message.Sender)
	return s.memStore.Append(ctx, message)
}

func (s *eventStore) ClearAll(ctx context.Context) error {
	s.record("clear")
	return s.memStore.ClearAll(ctx)
}

// gatedConn holds the chat broadcast of one sender until released.
type gatedConn struct {
	*fakeConn
	sender  string
	events  *eventStore
	reached chan struct{}
	release chan struct{}
}

func newGatedConn(sender string, events *eventStore) *gatedConn {
	return &gatedConn{
		fakeConn: newFakeConn(),
		sender:   sender,
		events:   events,
		reached:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (c *gatedConn) Send(ctx context.Context, envelope domain.Envelope) error {
	wire := envelope.Wire()
	if wire.Location == domain.LocationChat && wire.Sender == c.sender {
		close(c.reached)
		select {
		case <-c.release:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.events.record("broadcast:" + c.sender)
	}
	return c.fakeConn.Send(ctx, envelope)
}
