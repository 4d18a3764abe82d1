package runtime

import (
	"chat-relay/contract"
	"sync"
)

type entry struct {
	conn          contract.Conn
	participantID string
}

// Registry tracks the live connections of the room.
// A participant may hold several connections; entries are keyed by handle only.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a connection. It returns false when the handle is already present.
func (r *Registry) Add(conn contract.Conn, participantID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.conn == conn {
			return false
		}
	}
	r.entries = append(r.entries, entry{conn: conn, participantID: participantID})
	return true
}

// Remove drops the exact (conn, participantID) entry.
// Removing an unknown entry is a no-op so racing disconnects stay harmless.
func (r *Registry) Remove(conn contract.Conn, participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.conn == conn && e.participantID == participantID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// ForEach applies fn to the entries registered when the call started.
// fn runs without the lock held, so it may call Add or Remove.
func (r *Registry) ForEach(fn func(conn contract.Conn, participantID string)) {
	for _, e := range r.snapshot() {
		fn(e.conn, e.participantID)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) snapshot() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]entry, len(r.entries))
	copy(snapshot, r.entries)
	return snapshot
}
