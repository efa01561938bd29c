// Package domain contains entities without logic, just meta-data.
package domain

type (
	// UserID is the application-level identity a client announces via user:join.
	UserID string
	// DealID is the caller-supplied token identifying one call handshake.
	DealID string
	// RoomID is a chat room identifier. No authoritative room list exists;
	// rooms live implicitly for as long as they have members.
	RoomID string
)
