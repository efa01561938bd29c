package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/marketcall/signaling/internal/core"
	"github.com/marketcall/signaling/internal/domain"
)

// CallSession is one in-progress call handshake. The two connections
// are captured at creation and never replaced: a participant that
// reconnects mid-call cannot rejoin the same session.
type CallSession struct {
	Deal       domain.DealID
	CallerID   domain.UserID
	ReceiverID domain.UserID
	Caller     core.SignalConnection
	Receiver   core.SignalConnection
	State      domain.CallState
}

// Involves reports whether id is one of the session's two endpoints.
func (s *CallSession) Involves(id core.ConnID) bool {
	return s.Caller.ID() == id || s.Receiver.ID() == id
}

// PeerOf returns the opposite endpoint relative to id. An id that is
// neither endpoint gets the receiver, matching the fixed
// caller-to-receiver direction of the original handshake.
func (s *CallSession) PeerOf(id core.ConnID) core.SignalConnection {
	if s.Receiver.ID() == id {
		return s.Caller
	}
	return s.Receiver
}

// CallTable holds at most one session per deal id. A second initiate
// for a live deal id silently overwrites the old entry; its endpoints
// are not notified.
type CallTable struct {
	mu       sync.RWMutex
	sessions map[domain.DealID]*CallSession
}

func NewCallTable() *CallTable {
	return &CallTable{sessions: make(map[domain.DealID]*CallSession)}
}

func (t *CallTable) Put(s *CallSession) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[s.Deal]; ok {
		log.Warn().Str("module", "app.calls").Str("deal", string(s.Deal)).Msg("overwriting live session")
	}
	t.sessions[s.Deal] = s
	log.Info().Str("module", "app.calls").Str("deal", string(s.Deal)).Str("caller", string(s.CallerID)).Str("receiver", string(s.ReceiverID)).Msg("session created")
}

func (t *CallTable) Get(deal domain.DealID) (*CallSession, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[deal]
	return s, ok
}

// Accept moves a ringing session to active. Unknown deal ids and
// sessions already active are stale references and return false.
func (t *CallTable) Accept(deal domain.DealID) (*CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[deal]
	if !ok || s.State != domain.CallRinging {
		return nil, false
	}
	s.State = domain.CallActive
	log.Info().Str("module", "app.calls").Str("deal", string(deal)).Msg("session active")
	return s, true
}

// Remove destroys the session for deal in whatever state it is in.
// An explicit end tears the call down even while still ringing.
func (t *CallTable) Remove(deal domain.DealID) (*CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[deal]
	if !ok {
		return nil, false
	}
	delete(t.sessions, deal)
	log.Info().Str("module", "app.calls").Str("deal", string(deal)).Msg("session removed")
	return s, true
}

// RemoveInState destroys the session for deal only if it is in want.
func (t *CallTable) RemoveInState(deal domain.DealID, want domain.CallState) (*CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[deal]
	if !ok || s.State != want {
		return nil, false
	}
	delete(t.sessions, deal)
	log.Info().Str("module", "app.calls").Str("deal", string(deal)).Msg("session removed")
	return s, true
}

// SweepConn destroys every session with id as an endpoint and returns
// them so the dispatcher can notify the surviving peers.
func (t *CallTable) SweepConn(id core.ConnID) []*CallSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	var swept []*CallSession
	for deal, s := range t.sessions {
		if s.Involves(id) {
			delete(t.sessions, deal)
			swept = append(swept, s)
		}
	}
	if len(swept) > 0 {
		log.Info().Str("module", "app.calls").Str("conn", string(id)).Int("sessions", len(swept)).Msg("swept sessions on disconnect")
	}
	return swept
}

func (t *CallTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
