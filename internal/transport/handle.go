// File: internal/transport/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Exclusive ownership of one OS file descriptor.

package transport

import (
	"cmp"

	"github.com/momentics/hioload-counter/internal/log"
)

// InvalidFD is the sentinel held by a handle that owns nothing.
const InvalidFD = -1

var handleLog = log.NewLogger("handle")

// noCopy makes `go vet` flag accidental copies of a Handle.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Handle owns exactly one descriptor and closes it at most once.
// Pass it by pointer; use Move to transfer ownership.
type Handle struct {
	_  noCopy
	fd int
}

// Acquire takes ownership of fd. A negative fd yields an empty handle.
func Acquire(fd int) *Handle {
	if fd < 0 {
		fd = InvalidFD
	}
	return &Handle{fd: fd}
}

// Fd returns the raw descriptor, or InvalidFD.
func (h *Handle) Fd() int {
	if h == nil {
		return InvalidFD
	}
	return h.fd
}

// Valid reports whether h currently owns a descriptor.
func (h *Handle) Valid() bool {
	return h != nil && h.fd != InvalidFD
}

// Release relinquishes ownership without closing and returns the raw value.
func (h *Handle) Release() int {
	if h == nil {
		return InvalidFD
	}
	fd := h.fd
	h.fd = InvalidFD
	return fd
}

// Move returns a new handle owning h's descriptor; h is left empty.
func (h *Handle) Move() *Handle {
	return &Handle{fd: h.Release()}
}

// Compare orders handles by raw descriptor value.
func (h *Handle) Compare(other *Handle) int {
	return cmp.Compare(h.Fd(), other.Fd())
}

// Close closes the owned descriptor once. Failures are logged, never returned.
func (h *Handle) Close() {
	fd := h.Release()
	if fd == InvalidFD {
		return
	}
	if err := closeFD(fd); err != nil {
		handleLog.WithError(err).Warnf("failed to close file descriptor <%d>", fd)
	}
}
