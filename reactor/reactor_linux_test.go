//go:build linux

package reactor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-counter/api"
	"github.com/momentics/hioload-counter/internal/transport"
	"github.com/momentics/hioload-counter/reactor"
)

func newReactor(t *testing.T) api.Reactor {
	t.Helper()
	r, err := reactor.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func socketPair(t *testing.T) (*transport.Handle, *transport.Handle) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	a, b := transport.Acquire(fds[0]), transport.Acquire(fds[1])
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestWaitReportsReadable(t *testing.T) {
	r := newReactor(t)
	a, b := socketPair(t)
	require.NoError(t, r.Register(b, reactor.DefaultConnInterest))

	_, err := a.Write([]byte("OUTPUT\r\n"))
	require.NoError(t, err)

	ev, err := r.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, ev.IsZero())
	assert.Equal(t, b.Fd(), ev.Fd)
	assert.True(t, ev.Flags.Has(api.EventReadable))
	assert.False(t, ev.Flags.HungUp())
}

func TestWaitReportsPeerClosed(t *testing.T) {
	r := newReactor(t)
	a, b := socketPair(t)
	require.NoError(t, r.Register(b, reactor.DefaultConnInterest))

	a.Close()

	ev, err := r.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, b.Fd(), ev.Fd)
	assert.True(t, ev.Flags.HungUp())
}

func TestWaitInterruptedByCancel(t *testing.T) {
	r := newReactor(t)
	_, b := socketPair(t)
	require.NoError(t, r.Register(b, reactor.DefaultConnInterest))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan api.Event, 1)
	go func() {
		ev, err := r.Wait(ctx)
		assert.NoError(t, err)
		done <- ev
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case ev := <-done:
		assert.True(t, ev.IsZero())
		assert.Equal(t, api.NoEvent, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("wait was not interrupted by cancellation")
	}

	ev, err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, ev.IsZero())
}

func TestNoEventNeverAliasesDescriptorZero(t *testing.T) {
	assert.True(t, api.NoEvent.IsZero())
	assert.False(t, api.Event{Fd: 0, Flags: api.EventReadable}.IsZero())
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := newReactor(t)
	a, b := socketPair(t)
	require.NoError(t, r.Register(b, reactor.DefaultConnInterest))

	require.NoError(t, r.Unregister(b))
	require.NoError(t, r.Unregister(b))

	_, err := a.Write([]byte("x"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	ev, err := r.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, ev.IsZero(), "unregistered descriptor must not be reported")
}

func TestRegisterRejectsInvalidDescriptor(t *testing.T) {
	r := newReactor(t)
	err := r.Register(transport.Acquire(transport.InvalidFD), api.EventReadable)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrCodeInvalidArgument, apiErr.Code)
	assert.Equal(t, transport.InvalidFD, apiErr.Context["fd"])
}

func TestRegisterClosedDescriptorCarriesFd(t *testing.T) {
	r := newReactor(t)
	a, _ := socketPair(t)
	fd := a.Fd()
	// an unowned handle on a descriptor that is already closed
	stale := transport.Acquire(fd)
	a.Close()

	err := r.Register(stale, api.EventReadable)
	stale.Release()

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrCodeInternal, apiErr.Code)
	assert.Equal(t, fd, apiErr.Context["fd"])
	assert.ErrorIs(t, err, unix.EBADF)
}
