package core

// Frame is a raw JSON-encoded signal frame.
type Frame []byte

// ConnID identifies one live transport connection.
// It is invalidated when the transport closes and never reused.
type ConnID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	ID() ConnID
	TrySend(Frame) error
	Close()
}
