package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/marketcall/signaling/internal/core"
	"github.com/marketcall/signaling/internal/domain"
	"github.com/marketcall/signaling/internal/protocol"
)

// Call handshake handlers. Unknown deal ids and wrong-state frames are
// stale references and drop silently; only initiate surfaces an error,
// and only when the receiver is offline.

func (d *Dispatcher) handleCallInitiate(conn core.SignalConnection, data core.Frame) {
	var p protocol.CallInitiate
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad call:initiate payload")
		return
	}

	receiver, ok := d.registry.Resolve(domain.UserID(p.ReceiverID))
	if !ok {
		log.Info().Str("module", "app.dispatch").Str("deal", p.DealID).Str("receiver", p.ReceiverID).Msg("initiate to offline receiver")
		d.send(conn, protocol.CallError{
			Type:    protocol.EventCallError,
			Message: "receiver is offline",
		})
		return
	}

	d.calls.Put(&CallSession{
		Deal:       domain.DealID(p.DealID),
		CallerID:   domain.UserID(p.CallerID),
		ReceiverID: domain.UserID(p.ReceiverID),
		Caller:     conn,
		Receiver:   receiver,
		State:      domain.CallRinging,
	})

	d.send(receiver, protocol.CallIncoming{
		Type:         protocol.EventCallIncoming,
		DealID:       p.DealID,
		CallerID:     p.CallerID,
		CallerConnID: string(conn.ID()),
	})
}

func (d *Dispatcher) handleCallAccept(conn core.SignalConnection, data core.Frame) {
	var p protocol.CallRef
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad call:accept payload")
		return
	}
	s, ok := d.calls.Accept(domain.DealID(p.DealID))
	if !ok {
		return
	}
	d.send(s.Caller, protocol.CallRef{Type: protocol.EventCallAccepted, DealID: p.DealID})
}

func (d *Dispatcher) handleCallReject(conn core.SignalConnection, data core.Frame) {
	var p protocol.CallRef
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad call:reject payload")
		return
	}
	s, ok := d.calls.RemoveInState(domain.DealID(p.DealID), domain.CallRinging)
	if !ok {
		return
	}
	d.send(s.Caller, protocol.CallRef{Type: protocol.EventCallRejected, DealID: p.DealID})
}

func (d *Dispatcher) handleCallEnd(conn core.SignalConnection, data core.Frame) {
	var p protocol.CallRef
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad call:end payload")
		return
	}
	// End tears the call down in either state: a caller cancels an
	// unanswered ring the same way either party hangs up an active call.
	s, ok := d.calls.Remove(domain.DealID(p.DealID))
	if !ok {
		return
	}
	ended := protocol.CallEnded{Type: protocol.EventCallEnded, DealID: p.DealID}
	d.send(s.Caller, ended)
	d.send(s.Receiver, ended)
}

func (d *Dispatcher) handleOffer(conn core.SignalConnection, data core.Frame) {
	var p protocol.SignalOffer
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad signal:offer payload")
		return
	}
	s, ok := d.calls.Get(domain.DealID(p.DealID))
	if !ok || s.State != domain.CallActive {
		return
	}
	d.send(s.PeerOf(conn.ID()), protocol.SignalOffer{
		Type:   protocol.EventSignalOffer,
		DealID: p.DealID,
		Offer:  p.Offer,
	})
}

func (d *Dispatcher) handleAnswer(conn core.SignalConnection, data core.Frame) {
	var p protocol.SignalAnswer
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad signal:answer payload")
		return
	}
	s, ok := d.calls.Get(domain.DealID(p.DealID))
	if !ok || s.State != domain.CallActive {
		return
	}
	target := s.PeerOf(conn.ID())
	if !s.Involves(conn.ID()) {
		// Answers flow receiver-to-caller when the sender is not a
		// recorded endpoint.
		target = s.Caller
	}
	d.send(target, protocol.SignalAnswer{
		Type:   protocol.EventSignalAnswer,
		DealID: p.DealID,
		Answer: p.Answer,
	})
}

// ICE candidates are addressed by explicit target identity and resolved
// through the registry, not the session: they survive identity churn
// and need no session entry. Unknown targets drop silently.
func (d *Dispatcher) handleICECandidate(conn core.SignalConnection, data core.Frame) {
	var p protocol.SignalICE
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Msg("bad signal:ice-candidate payload")
		return
	}
	target, ok := d.registry.Resolve(domain.UserID(p.TargetUserID))
	if !ok {
		return
	}
	d.send(target, protocol.SignalICE{
		Type:      protocol.EventSignalICE,
		DealID:    p.DealID,
		Candidate: p.Candidate,
	})
}
