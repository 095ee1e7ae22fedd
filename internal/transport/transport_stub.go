//go:build !linux
// +build !linux

// internal/transport/transport_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package transport

import (
	"net/netip"

	"github.com/momentics/hioload-counter/api"
)

func closeFD(int) error { return api.ErrNotSupported }

// Read is unsupported on this platform.
func (h *Handle) Read([]byte) (int, error) { return 0, api.ErrNotSupported }

// Write is unsupported on this platform.
func (h *Handle) Write([]byte) (int, error) { return 0, api.ErrNotSupported }

func listen(ListenConfig) (*Listener, error) {
	return nil, &SetupError{Stage: StageSocket, Err: api.ErrNotSupported}
}

// AcceptOne never yields a connection on this platform.
func (l *Listener) AcceptOne() (*Handle, bool) { return nil, false }

func peerAddr(int) (netip.AddrPort, error) { return netip.AddrPort{}, api.ErrNotSupported }
