package client

// State is the client side session state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected // transport open, join sent, no ack yet
	Joined
	Reconnecting // disconnected with a retry pending
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Joined:
		return "joined"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
