package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketcall/signaling/internal/core"
	"github.com/marketcall/signaling/internal/domain"
)

func TestRoomTable_JoinLeave(t *testing.T) {
	rt := NewRoomTable()
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")

	assert.True(t, rt.Join("r", c1))
	assert.True(t, rt.Join("r", c2))
	assert.False(t, rt.Join("r", c1), "second join is idempotent")

	assert.Len(t, rt.Members("r"), 2)

	assert.True(t, rt.Leave("r", "c1"))
	assert.False(t, rt.Leave("r", "c1"), "second leave is idempotent")
	assert.False(t, rt.Leave("never-joined", "c2"))

	members := rt.Members("r")
	require.Len(t, members, 1)
	assert.Equal(t, core.ConnID("c2"), members[0].ID())
}

func TestRoomTable_RemovedWhenEmpty(t *testing.T) {
	rt := NewRoomTable()
	rt.Join("r", newFakeConn("c1"))

	rooms, members := rt.Counts()
	require.Equal(t, 1, rooms)
	require.Equal(t, 1, members)

	rt.Leave("r", "c1")
	rooms, members = rt.Counts()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, members)
	assert.Nil(t, rt.Members("r"))
}

func TestRoomTable_SweepConn(t *testing.T) {
	rt := NewRoomTable()
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	rt.Join("a", c1)
	rt.Join("b", c1)
	rt.Join("b", c2)

	swept := rt.SweepConn("c1")
	require.Len(t, swept, 2)
	assert.ElementsMatch(t, []domain.RoomID{"a", "b"}, swept)

	assert.Nil(t, rt.Members("a"))
	require.Len(t, rt.Members("b"), 1)

	// Sweeping a connection with no memberships is a no-op.
	assert.Empty(t, rt.SweepConn("c1"))
}
