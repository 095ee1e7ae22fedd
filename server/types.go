// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"time"

	"github.com/momentics/hioload-counter/internal/framing"
	"github.com/momentics/hioload-counter/internal/transport"
)

// Config holds all server-side configuration parameters.
type Config struct {
	Port               uint16        // TCP port on the dual-stack wildcard address
	Backlog            int           // listen(2) backlog
	ReadBufferSize     int           // bytes per non-blocking read
	MaxLineLength      int           // unterminated bytes tolerated per connection
	InitialConnections int           // connection table capacity reserved up front
	ResolvePeerNames   bool          // reverse-resolve peers for diagnostics
	ResolveTimeout     time.Duration // bound on one reverse lookup
}

// DefaultPort is the reference listening port.
const DefaultPort = 8089

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:               DefaultPort,
		Backlog:            transport.DefaultBacklog,
		ReadBufferSize:     framing.DefaultReadSize,
		MaxLineLength:      framing.DefaultMaxLineLength,
		InitialConnections: 1024,
		ResolvePeerNames:   false,
		ResolveTimeout:     250 * time.Millisecond,
	}
}
