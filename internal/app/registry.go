package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/marketcall/signaling/internal/core"
	"github.com/marketcall/signaling/internal/domain"
)

// Registry is the authoritative user identity -> live connection table.
// Registration is last-write-wins: a user joining from a second
// connection silently replaces the first one, which stays open but is
// no longer reachable by identity lookup.
type Registry struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]core.SignalConnection
	byConn map[core.ConnID]domain.UserID
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[domain.UserID]core.SignalConnection),
		byConn: make(map[core.ConnID]domain.UserID),
	}
}

func (r *Registry) Register(uid domain.UserID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byUser[uid]; ok {
		delete(r.byConn, old.ID())
	}
	r.byUser[uid] = conn
	r.byConn[conn.ID()] = uid
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(conn.ID())).Msg("registered identity")
}

// Resolve looks up the current connection for an identity. A miss is a
// normal result: the user is simply offline.
func (r *Registry) Resolve(uid domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byUser[uid]
	return conn, ok
}

// UserOf returns the identity registered on a connection, if any.
func (r *Registry) UserOf(id core.ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uid, ok := r.byConn[id]
	return uid, ok
}

// Unregister removes the entry whose stored handle equals id. A
// connection that closed before ever registering is a no-op, and a
// superseded connection cannot evict the newer mapping because its
// reverse entry was dropped on re-register.
func (r *Registry) Unregister(id core.ConnID) (domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.byConn[id]
	if !ok {
		return "", false
	}
	delete(r.byConn, id)
	if cur, ok := r.byUser[uid]; ok && cur.ID() == id {
		delete(r.byUser, uid)
	}
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(id)).Msg("unregistered identity")
	return uid, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
