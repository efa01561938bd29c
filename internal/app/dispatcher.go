package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/marketcall/signaling/internal/core"
	"github.com/marketcall/signaling/internal/domain"
	"github.com/marketcall/signaling/internal/protocol"
)

// Dispatcher is the single control point of the relay. It decodes
// inbound frames, mutates the three tables and emits outbound frames
// to the connections resolved through them.
//
// One mutex serializes every handler. Read pumps run one goroutine per
// connection, so this is what makes compound lookup-then-act sequences
// across registry and call table atomic. Handlers never block: TrySend
// drops on backpressure and no handler performs I/O beyond that.
type Dispatcher struct {
	mu       sync.Mutex
	registry *Registry
	calls    *CallTable
	rooms    *RoomTable
}

func NewDispatcher(registry *Registry, calls *CallTable, rooms *RoomTable) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		calls:    calls,
		rooms:    rooms,
	}
}

// HandleFrame routes one inbound frame from conn. Malformed JSON and
// unknown event names are logged and dropped; invalid input never
// closes a connection.
func (d *Dispatcher) HandleFrame(conn core.SignalConnection, data core.Frame) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Str("conn", string(conn.ID())).Msg("bad json")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch env.Type {
	case protocol.EventUserJoin:
		d.handleUserJoin(conn, data)
	case protocol.EventCallInitiate:
		d.handleCallInitiate(conn, data)
	case protocol.EventCallAccept:
		d.handleCallAccept(conn, data)
	case protocol.EventCallReject:
		d.handleCallReject(conn, data)
	case protocol.EventCallEnd:
		d.handleCallEnd(conn, data)
	case protocol.EventSignalOffer:
		d.handleOffer(conn, data)
	case protocol.EventSignalAnswer:
		d.handleAnswer(conn, data)
	case protocol.EventSignalICE:
		d.handleICECandidate(conn, data)
	case protocol.EventChatJoinRoom:
		d.handleJoinRoom(conn, data)
	case protocol.EventChatLeaveRoom:
		d.handleLeaveRoom(conn, data)
	case protocol.EventChatMessage:
		d.handleChatMessage(conn, data)
	default:
		log.Warn().Str("module", "app.dispatch").Str("type", env.Type).Msg("unknown event")
	}
}

// Disconnect runs the full cleanup for a closed connection: identity
// unregistered, call sessions swept with the surviving peer notified,
// room memberships swept with leave notices broadcast. The adapter
// calls it exactly once, from the read pump teardown.
func (d *Dispatcher) Disconnect(conn core.SignalConnection) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := conn.ID()
	uid, _ := d.registry.UserOf(id)

	d.registry.Unregister(id)

	for _, s := range d.calls.SweepConn(id) {
		d.send(s.PeerOf(id), protocol.CallEnded{
			Type:   protocol.EventCallEnded,
			DealID: string(s.Deal),
			Reason: protocol.ReasonDisconnect,
		})
	}

	for _, room := range d.rooms.SweepConn(id) {
		d.broadcast(room, protocol.RoomNotice{
			Type:   protocol.EventChatUserLeft,
			RoomID: string(room),
			UserID: string(uid),
		})
	}

	log.Info().Str("module", "app.dispatch").Str("conn", string(id)).Str("user", string(uid)).Msg("disconnect cleanup done")
}

// Stats reports table sizes for the stats endpoint.
func (d *Dispatcher) Stats() (users, calls, rooms int) {
	users = d.registry.Count()
	calls = d.calls.Count()
	rooms, _ = d.rooms.Counts()
	return users, calls, rooms
}

func (d *Dispatcher) handleUserJoin(conn core.SignalConnection, data core.Frame) {
	var p protocol.UserJoin
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad user:join payload")
		return
	}
	d.registry.Register(domain.UserID(p.UserID), conn)
	d.send(conn, protocol.UserJoined{
		Type:   protocol.EventUserJoined,
		UserID: p.UserID,
		ConnID: string(conn.ID()),
	})
}

// send marshals and delivers one frame, logging delivery failures.
// A full peer buffer drops the frame; nothing retries.
func (d *Dispatcher) send(conn core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Msg("marshal outbound frame")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Str("conn", string(conn.ID())).Msg("drop outbound frame")
	}
}

func (d *Dispatcher) broadcast(room domain.RoomID, v any) {
	for _, m := range d.rooms.Members(room) {
		d.send(m, v)
	}
}
