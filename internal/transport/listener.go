// File: internal/transport/listener.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-independent listener types; socket setup lives in the
// build-tagged files.

package transport

import (
	"fmt"
	"net/netip"
)

// Stage names one step of listening-socket setup.
type Stage string

const (
	StageSocket  Stage = "socket"
	StageSockopt Stage = "sockopt"
	StageBind    Stage = "bind"
	StageListen  Stage = "listen"
)

// SetupError reports which setup step failed.
type SetupError struct {
	Stage Stage
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("listener %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// ListenConfig configures the dual-stack listening socket.
type ListenConfig struct {
	Port    uint16 // 0 picks an ephemeral port
	Backlog int    // listen(2) backlog; <= 0 uses DefaultBacklog
}

// DefaultBacklog is the pending-connection queue length.
const DefaultBacklog = 64

// Listener owns the bound, listening, non-blocking socket.
type Listener struct {
	handle *Handle
	addr   netip.AddrPort
}

// Listen opens a dual-stack TCP socket bound to [::]:cfg.Port.
// Errors are always *SetupError.
func Listen(cfg ListenConfig) (*Listener, error) {
	if cfg.Backlog <= 0 {
		cfg.Backlog = DefaultBacklog
	}
	return listen(cfg)
}

// Fd returns the listening descriptor.
func (l *Listener) Fd() int {
	return l.handle.Fd()
}

// Addr returns the bound local address.
func (l *Listener) Addr() netip.AddrPort {
	return l.addr
}

// Close releases the listening socket.
func (l *Listener) Close() {
	l.handle.Close()
}
