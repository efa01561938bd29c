package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/marketcall/signaling/internal/core"
	"github.com/marketcall/signaling/internal/domain"
)

// RoomTable is the chat room membership relation. Rooms are never
// created or destroyed explicitly: a room exists while it has members
// and the map entry is dropped when the last one leaves.
type RoomTable struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]map[core.ConnID]core.SignalConnection
	byConn map[core.ConnID]map[domain.RoomID]struct{}
}

func NewRoomTable() *RoomTable {
	return &RoomTable{
		rooms:  make(map[domain.RoomID]map[core.ConnID]core.SignalConnection),
		byConn: make(map[core.ConnID]map[domain.RoomID]struct{}),
	}
}

// Join adds conn to room. Idempotent: returns false when conn was
// already a member, so the caller can skip the join notice.
func (t *RoomTable) Join(room domain.RoomID, conn core.SignalConnection) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	members, ok := t.rooms[room]
	if !ok {
		members = make(map[core.ConnID]core.SignalConnection)
		t.rooms[room] = members
	}
	if _, ok := members[conn.ID()]; ok {
		return false
	}
	members[conn.ID()] = conn
	joined, ok := t.byConn[conn.ID()]
	if !ok {
		joined = make(map[domain.RoomID]struct{})
		t.byConn[conn.ID()] = joined
	}
	joined[room] = struct{}{}
	log.Info().Str("module", "app.rooms").Str("room", string(room)).Str("conn", string(conn.ID())).Int("members", len(members)).Msg("joined room")
	return true
}

// Leave removes conn from room. Idempotent: returns false when conn
// was not a member.
func (t *RoomTable) Leave(room domain.RoomID, id core.ConnID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaveLocked(room, id)
}

func (t *RoomTable) leaveLocked(room domain.RoomID, id core.ConnID) bool {
	members, ok := t.rooms[room]
	if !ok {
		return false
	}
	if _, ok := members[id]; !ok {
		return false
	}
	delete(members, id)
	if len(members) == 0 {
		delete(t.rooms, room)
		log.Info().Str("module", "app.rooms").Str("room", string(room)).Msg("room empty, removed")
	}
	if joined, ok := t.byConn[id]; ok {
		delete(joined, room)
		if len(joined) == 0 {
			delete(t.byConn, id)
		}
	}
	log.Info().Str("module", "app.rooms").Str("room", string(room)).Str("conn", string(id)).Msg("left room")
	return true
}

// Members returns a snapshot of the room's current connections.
// An unknown or empty room yields nil.
func (t *RoomTable) Members(room domain.RoomID) []core.SignalConnection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	members, ok := t.rooms[room]
	if !ok {
		return nil
	}
	out := make([]core.SignalConnection, 0, len(members))
	for _, conn := range members {
		out = append(out, conn)
	}
	return out
}

// SweepConn removes id from every room it belongs to and returns those
// rooms so the dispatcher can broadcast the leave notices.
func (t *RoomTable) SweepConn(id core.ConnID) []domain.RoomID {
	t.mu.Lock()
	defer t.mu.Unlock()
	joined, ok := t.byConn[id]
	if !ok {
		return nil
	}
	out := make([]domain.RoomID, 0, len(joined))
	for room := range joined {
		out = append(out, room)
	}
	for _, room := range out {
		t.leaveLocked(room, id)
	}
	return out
}

// Counts reports distinct rooms and total memberships.
func (t *RoomTable) Counts() (rooms, members int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rooms = len(t.rooms)
	for _, m := range t.rooms {
		members += len(m)
	}
	return rooms, members
}
