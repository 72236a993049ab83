package sign

// State is the session state of a Sign.
type State uint32

const (
	// StateDisconnected indicates that the transport is closed.
	StateDisconnected State = iota
	// StateConnected indicates an open transport with no memory allocated.
	StateConnected
	// StateAllocated indicates that a memory configuration has been sent.
	StateAllocated
)

// IsConnected reports whether the transport is open.
func (st State) IsConnected() bool { return st != StateDisconnected }

// IsAllocated reports whether memory has been allocated.
func (st State) IsAllocated() bool { return st == StateAllocated }

func (st State) String() string {
	switch st {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateAllocated:
		return "allocated"
	default:
		return "unknown"
	}
}
