// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract interface for the single-threaded readiness reactor
// that multiplexes the listener and all peer connections.

package api

import "context"

// Descriptor is anything that exposes a raw OS file descriptor.
type Descriptor interface {
	Fd() int
}

// EventFlags is a readiness interest / result bit set.
type EventFlags uint32

const (
	// EventReadable reports bytes (or a pending connection) to read.
	EventReadable EventFlags = 1 << iota
	// EventPeerClosed reports that the peer hung up or half-closed.
	EventPeerClosed
	// EventError reports an error condition on the descriptor.
	EventError
)

// Has reports whether all bits of f are set.
func (e EventFlags) Has(f EventFlags) bool {
	return e&f == f
}

// HungUp reports whether the descriptor should be treated as closed.
func (e EventFlags) HungUp() bool {
	return e&(EventPeerClosed|EventError) != 0
}

// Event encapsulates one OS-level readiness notification.
type Event struct {
	Fd    int        // ready descriptor, or -1 for NoEvent
	Flags EventFlags // observed readiness
}

// NoEvent is returned by Reactor.Wait when the wait was interrupted.
// Its descriptor is negative so it never aliases a real one, including 0.
var NoEvent = Event{Fd: -1}

// IsZero reports whether e carries no descriptor.
func (e Event) IsZero() bool {
	return e.Fd < 0
}

// Reactor blocks until one registered descriptor is ready.
type Reactor interface {
	// Register adds d to the interest set with the given flags.
	Register(d Descriptor, interest EventFlags) error

	// Unregister removes d. Removing an unknown descriptor is not an error.
	Unregister(d Descriptor) error

	// Wait blocks until exactly one descriptor is ready, a signal
	// interrupts the call, or ctx is cancelled. The last two return NoEvent.
	Wait(ctx context.Context) (Event, error)

	// Close releases the poller backend.
	Close() error
}
