package electrical

import "errors"

// Configuration errors returned while assembling a network.
var (
	// ErrUnknownNode indicates a handle that was not issued by this network.
	ErrUnknownNode = errors.New("electrical: unknown node")

	// ErrCycle indicates an edge that would close a directed cycle.
	ErrCycle = errors.New("electrical: connection would create a cycle")

	// ErrNegativeResistance indicates a wire resistance below zero.
	ErrNegativeResistance = errors.New("electrical: negative wire resistance")

	// ErrInvalidParams indicates malformed component parameters.
	ErrInvalidParams = errors.New("electrical: invalid component parameters")
)
