//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor. Level-triggered, one event per wait, with an
// eventfd registered alongside the caller's descriptors so that context
// cancellation interrupts a blocked epoll_wait.

package reactor

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/momentics/hioload-counter/api"
	"github.com/momentics/hioload-counter/internal/transport"
	"golang.org/x/sys/unix"
)

// linuxReactor is an epoll-based event reactor.
type linuxReactor struct {
	epfd   *transport.Handle
	events [1]unix.EpollEvent

	wakeMu sync.Mutex // guards wakefd against Wakeup racing Close
	wakefd *transport.Handle
}

func newReactor() (api.Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	r := &linuxReactor{epfd: transport.Acquire(epfd)}

	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		r.epfd.Close()
		return nil, fmt.Errorf("eventfd create: %w", err)
	}
	r.wakefd = transport.Acquire(wakefd)

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		r.wakefd.Close()
		r.epfd.Close()
		return nil, fmt.Errorf("epoll ctl add wakeup: %w", err)
	}
	return r, nil
}

// Register adds a descriptor to the epoll watch list.
func (r *linuxReactor) Register(d api.Descriptor, interest api.EventFlags) error {
	fd := d.Fd()
	if fd < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "epoll ctl add").
			WithContext("fd", fd).
			Wrap(api.ErrInvalidArgument)
	}
	ev := unix.EpollEvent{Events: toEpoll(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd.Fd(), unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return api.NewError(api.ErrCodeInternal, "epoll ctl add").
			WithContext("fd", fd).
			Wrap(err)
	}
	return nil
}

// Unregister removes a descriptor. Unknown or already closed descriptors
// are ignored.
func (r *linuxReactor) Unregister(d api.Descriptor) error {
	fd := d.Fd()
	if fd < 0 {
		return nil
	}
	err := unix.EpollCtl(r.epfd.Fd(), unix.EPOLL_CTL_DEL, fd, nil)
	if err == nil || errors.Is(err, unix.ENOENT) || errors.Is(err, unix.EBADF) {
		return nil
	}
	return fmt.Errorf("epoll ctl del fd=%d: %w", fd, err)
}

// Wait blocks for exactly one ready descriptor.
func (r *linuxReactor) Wait(ctx context.Context) (api.Event, error) {
	if err := ctx.Err(); err != nil {
		return api.NoEvent, err
	}
	stop := context.AfterFunc(ctx, r.Wakeup)
	defer stop()

	n, err := unix.EpollWait(r.epfd.Fd(), r.events[:], -1)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return api.NoEvent, nil // interrupted by signal: normal
		}
		return api.NoEvent, fmt.Errorf("epoll wait: %w", err)
	}
	if n == 0 {
		return api.NoEvent, nil
	}

	raw := r.events[0]
	if int(raw.Fd) == r.wakeFd() {
		r.drainWakeup()
		return api.NoEvent, nil
	}
	return api.Event{Fd: int(raw.Fd), Flags: fromEpoll(raw.Events)}, nil
}

// Wakeup interrupts a blocked Wait. Safe from any goroutine.
func (r *linuxReactor) Wakeup() {
	r.wakeMu.Lock()
	defer r.wakeMu.Unlock()
	if !r.wakefd.Valid() {
		return
	}
	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)
	_, _ = unix.Write(r.wakefd.Fd(), one[:])
}

func (r *linuxReactor) wakeFd() int {
	r.wakeMu.Lock()
	defer r.wakeMu.Unlock()
	return r.wakefd.Fd()
}

func (r *linuxReactor) drainWakeup() {
	r.wakeMu.Lock()
	defer r.wakeMu.Unlock()
	var buf [8]byte
	_, _ = unix.Read(r.wakefd.Fd(), buf[:])
}

// Close releases the epoll instance and the wakeup descriptor.
func (r *linuxReactor) Close() error {
	r.wakeMu.Lock()
	r.wakefd.Close()
	r.wakeMu.Unlock()
	r.epfd.Close()
	return nil
}

func toEpoll(interest api.EventFlags) uint32 {
	var events uint32
	if interest&api.EventReadable != 0 {
		events |= unix.EPOLLIN
	}
	if interest&api.EventPeerClosed != 0 {
		events |= unix.EPOLLRDHUP
	}
	return events
}

func fromEpoll(events uint32) api.EventFlags {
	var flags api.EventFlags
	if events&unix.EPOLLIN != 0 {
		flags |= api.EventReadable
	}
	if events&(unix.EPOLLRDHUP|unix.EPOLLHUP) != 0 {
		flags |= api.EventPeerClosed
	}
	if events&unix.EPOLLERR != 0 {
		flags |= api.EventError
	}
	return flags
}
