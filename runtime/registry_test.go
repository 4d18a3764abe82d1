package runtime

import (
	"chat-relay/contract"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Add_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn1, conn2 := newFakeConn(), newFakeConn()

	// Given no connection is registered
	req.Zero(registry.Len())

	// When two participants connect
	req.True(registry.Add(conn1, uuid.NewString()))
	req.True(registry.Add(conn2, uuid.NewString()))

	// Then both are registered
	req.Equal(2, registry.Len())
}

func TestRegistry_Add_Same_Handle_Twice_Is_Rejected(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newFakeConn()

	req.True(registry.Add(conn, "alice"))
	req.False(registry.Add(conn, "alice"))
	req.Equal(1, registry.Len())
}

func TestRegistry_Same_Participant_Multiple_Devices(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	phone, laptop := newFakeConn(), newFakeConn()

	// When the same participant connects twice
	req.True(registry.Add(phone, "alice"))
	req.True(registry.Add(laptop, "alice"))

	// Then both connections are kept
	req.Equal(2, registry.Len())

	// When one of them leaves
	registry.Remove(phone, "alice")

	// Then the other one is still registered
	var remaining []contract.Conn
	registry.ForEach(func(conn contract.Conn, participantID string) {
		req.Equal("alice", participantID)
		remaining = append(remaining, conn)
	})
	req.Equal([]contract.Conn{laptop}, remaining)
}

func TestRegistry_Remove_Unknown_Entry_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newFakeConn()
	registry.Add(conn, "alice")

	// When removing an entry that does not exist
	registry.Remove(newFakeConn(), "alice")
	registry.Remove(conn, "bob")

	// Then nothing changed
	req.Equal(1, registry.Len())

	// When removing it twice
	registry.Remove(conn, "alice")
	registry.Remove(conn, "alice")

	// Then the registry is simply empty
	req.Zero(registry.Len())
}

func TestRegistry_ForEach_Iterates_A_Snapshot(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn1, conn2, late := newFakeConn(), newFakeConn(), newFakeConn()
	registry.Add(conn1, "alice")
	registry.Add(conn2, "bob")

	// When the callback mutates the registry while iterating
	visited := 0
	registry.ForEach(func(conn contract.Conn, participantID string) {
		visited++
		registry.Remove(conn, participantID)
		registry.Add(late, "carol")
	})

	// Then only the entries present at the start were visited
	req.Equal(2, visited)
	req.Equal(1, registry.Len())
}
