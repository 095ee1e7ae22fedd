// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral constructor for the readiness reactor.

package reactor

import "github.com/momentics/hioload-counter/api"

// DefaultConnInterest is the static interest set of every peer connection.
// It is never re-armed or modified after registration.
const DefaultConnInterest = api.EventReadable | api.EventPeerClosed

// New constructs the platform-specific reactor.
func New() (api.Reactor, error) {
	return newReactor()
}
