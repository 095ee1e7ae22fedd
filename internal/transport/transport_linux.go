//go:build linux
// +build linux

// internal/transport/transport_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux socket primitives: non-blocking read/send on owned descriptors,
// dual-stack listen and accept4.

package transport

import (
	"errors"
	"io"
	"net/netip"

	"github.com/momentics/hioload-counter/api"
	"github.com/momentics/hioload-counter/internal/log"
	"golang.org/x/sys/unix"
)

var listenerLog = log.NewLogger("listener")

func closeFD(fd int) error {
	return unix.Close(fd)
}

// Read performs one non-blocking read. It returns api.ErrWouldBlock when
// nothing is available and io.EOF when the peer closed the stream.
func (h *Handle) Read(p []byte) (int, error) {
	if !h.Valid() {
		return 0, api.ErrClosed
	}
	for {
		n, err := unix.Read(h.fd, p)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, api.ErrWouldBlock
		case err != nil:
			return 0, err
		case n == 0 && len(p) > 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

// Write sends all of p without blocking. A full socket buffer stops the
// write early with api.ErrWouldBlock; the unsent tail is dropped by callers.
func (h *Handle) Write(p []byte) (int, error) {
	if !h.Valid() {
		return 0, api.ErrClosed
	}
	sent := 0
	for sent < len(p) {
		n, err := unix.SendmsgN(h.fd, p[sent:], nil, nil, unix.MSG_NOSIGNAL|unix.MSG_DONTWAIT)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return sent, api.ErrWouldBlock
		case err != nil:
			return sent, err
		}
		sent += n
	}
	return sent, nil
}

func listen(cfg ListenConfig) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, &SetupError{Stage: StageSocket, Err: err}
	}
	h := Acquire(fd)

	// The platform default varies, so opt into IPv4-mapped peers explicitly.
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err != nil {
		h.Close()
		return nil, &SetupError{Stage: StageSockopt, Err: err}
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		h.Close()
		return nil, &SetupError{Stage: StageSockopt, Err: err}
	}

	if err := unix.Bind(fd, &unix.SockaddrInet6{Port: int(cfg.Port)}); err != nil {
		h.Close()
		return nil, &SetupError{Stage: StageBind, Err: err}
	}
	if err := unix.Listen(fd, cfg.Backlog); err != nil {
		h.Close()
		return nil, &SetupError{Stage: StageListen, Err: err}
	}

	l := &Listener{handle: h}
	if sa, err := unix.Getsockname(fd); err == nil {
		l.addr, _ = sockaddrToAddrPort(sa)
	}
	return l, nil
}

// AcceptOne accepts at most one pending connection. It returns false when
// nothing is pending or accept failed; failures are logged, never fatal.
func (l *Listener) AcceptOne() (*Handle, bool) {
	for {
		nfd, _, err := unix.Accept4(l.handle.Fd(), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		switch {
		case err == nil:
			return Acquire(nfd), true
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return nil, false
		default:
			listenerLog.WithError(err).Warn("failed to accept connection")
			return nil, false
		}
	}
}

func sockaddrToAddrPort(sa unix.Sockaddr) (netip.AddrPort, bool) {
	switch a := sa.(type) {
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr).Unmap(), uint16(a.Port)), true
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)), true
	}
	return netip.AddrPort{}, false
}

func peerAddr(fd int) (netip.AddrPort, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return netip.AddrPort{}, err
	}
	ap, ok := sockaddrToAddrPort(sa)
	if !ok {
		return netip.AddrPort{}, api.ErrNotSupported
	}
	return ap, nil
}
