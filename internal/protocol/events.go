// Package protocol defines the wire frames exchanged with clients.
// Frames are flat JSON objects; the "type" field carries the event name.
// SDP, ICE and chat payloads stay json.RawMessage end to end: the relay
// never inspects media-layer contents.
package protocol

import "encoding/json"

const (
	EventUserJoin   = "user:join"
	EventUserJoined = "user:joined"

	EventCallInitiate = "call:initiate"
	EventCallIncoming = "call:incoming"
	EventCallAccept   = "call:accept"
	EventCallAccepted = "call:accepted"
	EventCallReject   = "call:reject"
	EventCallRejected = "call:rejected"
	EventCallEnd      = "call:end"
	EventCallEnded    = "call:ended"
	EventCallError    = "call:error"

	EventSignalOffer  = "signal:offer"
	EventSignalAnswer = "signal:answer"
	EventSignalICE    = "signal:ice-candidate"

	EventChatJoinRoom   = "chat:join-room"
	EventChatLeaveRoom  = "chat:leave-room"
	EventChatUserJoined = "chat:user-joined"
	EventChatUserLeft   = "chat:user-left"
	EventChatMessage    = "chat:message"
)

// ReasonDisconnect marks a call:ended caused by a peer's transport loss.
const ReasonDisconnect = "disconnect"

// Envelope carries only the event name; payloads are decoded per event.
type Envelope struct {
	Type string `json:"type"`
}

type UserJoin struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type UserJoined struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	ConnID string `json:"connId"`
}

type CallInitiate struct {
	Type       string `json:"type"`
	DealID     string `json:"dealId"`
	CallerID   string `json:"callerId"`
	ReceiverID string `json:"receiverId"`
}

type CallIncoming struct {
	Type         string `json:"type"`
	DealID       string `json:"dealId"`
	CallerID     string `json:"callerId"`
	CallerConnID string `json:"callerConnId"`
}

// CallRef is the shape shared by call:accept, call:reject and call:end
// inbound as well as call:accepted and call:rejected outbound.
type CallRef struct {
	Type   string `json:"type"`
	DealID string `json:"dealId"`
}

type CallEnded struct {
	Type   string `json:"type"`
	DealID string `json:"dealId"`
	Reason string `json:"reason,omitempty"`
}

type CallError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type SignalOffer struct {
	Type   string          `json:"type"`
	DealID string          `json:"dealId"`
	Offer  json.RawMessage `json:"offer"`
}

type SignalAnswer struct {
	Type   string          `json:"type"`
	DealID string          `json:"dealId"`
	Answer json.RawMessage `json:"answer"`
}

type SignalICE struct {
	Type         string          `json:"type"`
	DealID       string          `json:"dealId"`
	Candidate    json.RawMessage `json:"candidate"`
	TargetUserID string          `json:"targetUserId,omitempty"`
}

// RoomRef is the shape of chat:join-room and chat:leave-room.
type RoomRef struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// RoomNotice is the shape of chat:user-joined and chat:user-left.
// UserID may be empty when the connection never announced an identity.
type RoomNotice struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	UserID string `json:"userId,omitempty"`
}

type ChatMessage struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId"`
	Message json.RawMessage `json:"message"`
}
