package sign

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol is the category of errors caused by invoking an operation
	// the session cannot perform.
	ErrProtocol = errors.New("sign: protocol error")
	// ErrNotAllocated indicates a write or run sequence before memory was allocated.
	ErrNotAllocated = fmt.Errorf("%w: memory not allocated", ErrProtocol)
	// ErrUnsupportedCommand indicates a command disabled for this sign, or a
	// query sent to a broadcast address.
	ErrUnsupportedCommand = fmt.Errorf("%w: unsupported command", ErrProtocol)
)
