package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketcall/signaling/internal/core"
)

var errSendFailed = errors.New("send failed")

// fakeConn records every frame the dispatcher tries to deliver.
// Setting sendErr makes delivery fail, simulating a full peer buffer.
type fakeConn struct {
	id      core.ConnID
	mu      sync.Mutex
	sent    []core.Frame
	sendErr error
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: core.ConnID(id)}
}

func (f *fakeConn) ID() core.ConnID { return f.id }

func (f *fakeConn) TrySend(frame core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, frame)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) frames() []core.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Frame(nil), f.sent...)
}

// eventTypes decodes the type field of every recorded frame.
func (f *fakeConn) eventTypes(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, fr := range f.frames() {
		var env struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(fr, &env))
		out = append(out, env.Type)
	}
	return out
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

func TestRegistry_RegisterResolve(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn("c1")

	r.Register("alice", conn)

	got, ok := r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, core.ConnID("c1"), got.ID())

	uid, ok := r.UserOf("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", string(uid))

	_, ok = r.Resolve("bob")
	assert.False(t, ok)
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", newFakeConn("c1"))

	uid, ok := r.Unregister("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", string(uid))

	_, ok = r.Resolve("alice")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())

	// Never-registered handle is a no-op.
	_, ok = r.Unregister("ghost")
	assert.False(t, ok)
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := NewRegistry()
	first := newFakeConn("c1")
	second := newFakeConn("c2")

	r.Register("alice", first)
	r.Register("alice", second)

	got, ok := r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, core.ConnID("c2"), got.ID())

	// The superseded connection lost its reverse entry...
	_, ok = r.UserOf("c1")
	assert.False(t, ok)

	// ...so its late disconnect cannot evict the new mapping.
	_, ok = r.Unregister("c1")
	assert.False(t, ok)
	got, ok = r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, core.ConnID("c2"), got.ID())
}
