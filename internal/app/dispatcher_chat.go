package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/marketcall/signaling/internal/core"
	"github.com/marketcall/signaling/internal/domain"
	"github.com/marketcall/signaling/internal/protocol"
)

func (d *Dispatcher) handleJoinRoom(conn core.SignalConnection, data core.Frame) {
	var p protocol.RoomRef
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad chat:join-room payload")
		return
	}
	room := domain.RoomID(p.RoomID)
	if !d.rooms.Join(room, conn) {
		return
	}
	uid, _ := d.registry.UserOf(conn.ID())
	notice := protocol.RoomNotice{
		Type:   protocol.EventChatUserJoined,
		RoomID: p.RoomID,
		UserID: string(uid),
	}
	// The joining connection does not get its own join notice.
	for _, m := range d.rooms.Members(room) {
		if m.ID() == conn.ID() {
			continue
		}
		d.send(m, notice)
	}
}

func (d *Dispatcher) handleLeaveRoom(conn core.SignalConnection, data core.Frame) {
	var p protocol.RoomRef
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad chat:leave-room payload")
		return
	}
	room := domain.RoomID(p.RoomID)
	if !d.rooms.Leave(room, conn.ID()) {
		return
	}
	uid, _ := d.registry.UserOf(conn.ID())
	d.broadcast(room, protocol.RoomNotice{
		Type:   protocol.EventChatUserLeft,
		RoomID: p.RoomID,
		UserID: string(uid),
	})
}

// handleChatMessage fans the payload out to every member of the room,
// sender included (local echo). Publishing to an unknown room is a
// harmless no-op.
func (d *Dispatcher) handleChatMessage(conn core.SignalConnection, data core.Frame) {
	var p protocol.ChatMessage
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad chat:message payload")
		return
	}
	d.broadcast(domain.RoomID(p.RoomID), protocol.ChatMessage{
		Type:    protocol.EventChatMessage,
		RoomID:  p.RoomID,
		Message: p.Message,
	})
}
