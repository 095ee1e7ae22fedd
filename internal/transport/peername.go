// File: internal/transport/peername.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Best-effort peer naming for diagnostics. Never fails.

package transport

import (
	"context"
	"strings"
	"time"
)

// PeerPlaceholder is used when the peer address cannot be determined.
const PeerPlaceholder = "peer"

// Resolver performs reverse lookups. *net.Resolver satisfies it.
type Resolver interface {
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// PeerNamer renders a connection's peer as text.
type PeerNamer struct {
	Resolver Resolver      // nil disables reverse lookups
	Timeout  time.Duration // bound on one lookup; 0 means no bound
}

// Name returns the reverse-resolved host name of fd's peer, falling back to
// its numeric address and then to PeerPlaceholder.
func (n PeerNamer) Name(fd int) string {
	ap, err := peerAddr(fd)
	if err != nil {
		handleLog.WithError(err).Debugf("failed to get peer address of <%d>", fd)
		return PeerPlaceholder
	}
	numeric := ap.Addr().String()
	if n.Resolver == nil {
		return numeric
	}

	ctx := context.Background()
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}
	names, err := n.Resolver.LookupAddr(ctx, numeric)
	if err != nil || len(names) == 0 {
		if err != nil {
			handleLog.WithError(err).Debugf("failed to resolve peer name of %s", numeric)
		}
		return numeric
	}
	return strings.TrimSuffix(names[0], ".")
}
