package domain

// CallState tracks where a call handshake is between initiate and teardown.
type CallState string

const (
	// CallRinging: the receiver was notified but has not accepted or rejected.
	CallRinging CallState = "ringing"
	// CallActive: the receiver accepted; offer/answer/end are relayed.
	CallActive CallState = "active"
)
