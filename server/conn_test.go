//go:build linux

package server_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-counter/api"
	"github.com/momentics/hioload-counter/internal/log"
	"github.com/momentics/hioload-counter/internal/transport"
	"github.com/momentics/hioload-counter/server"
)

// pair returns a server-side Conn and the raw peer handle.
func pair(t *testing.T, peer string) (*server.Conn, *transport.Handle) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	c := server.NewConn(transport.Acquire(fds[0]), peer, nil)
	remote := transport.Acquire(fds[1])
	t.Cleanup(func() {
		c.Close()
		remote.Close()
	})
	return c, remote
}

func readAll(t *testing.T, h *transport.Handle) string {
	t.Helper()
	buf := make([]byte, 256)
	n, err := h.Read(buf)
	if err != nil {
		return ""
	}
	return string(buf[:n])
}

func TestConnTableAddGetRemove(t *testing.T) {
	table := server.NewConnTable(4, log.NewLogger("test"))
	a, _ := pair(t, "a")
	b, _ := pair(t, "b")

	require.NoError(t, table.Add(a))
	require.NoError(t, table.Add(b))
	assert.Equal(t, 2, table.Len())
	err := table.Add(a)
	assert.ErrorIs(t, err, api.ErrAlreadyExists)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrCodeAlreadyExists, apiErr.Code)
	assert.Equal(t, a.Fd(), apiErr.Context["fd"])
	assert.Equal(t, "a", apiErr.Context["peer"])

	assert.Same(t, b, table.Get(b.Fd()))
	assert.Nil(t, table.Get(-5))

	assert.Same(t, a, table.Remove(a.Fd()))
	assert.Nil(t, table.Remove(a.Fd()), "removal is idempotent")
	assert.Equal(t, 1, table.Len())
}

func TestConnTableBroadcast(t *testing.T) {
	table := server.NewConnTable(0, log.NewLogger("test"))
	a, ra := pair(t, "a")
	b, rb := pair(t, "b")
	require.NoError(t, table.Add(a))
	require.NoError(t, table.Add(b))

	assert.Equal(t, 2, table.Broadcast([]byte("3")))
	assert.Equal(t, "3", readAll(t, ra))
	assert.Equal(t, "3", readAll(t, rb))
}

func TestConnTableBroadcastToleratesFailures(t *testing.T) {
	table := server.NewConnTable(0, log.NewLogger("test"))
	a, ra := pair(t, "a")
	b, rb := pair(t, "b")
	require.NoError(t, table.Add(a))
	require.NoError(t, table.Add(b))

	ra.Close() // a's peer is gone; sending to a fails with EPIPE

	assert.Equal(t, 1, table.Broadcast([]byte("-10")))
	assert.Equal(t, 2, table.Len(), "send failure alone never removes a connection")
	assert.Equal(t, "-10", readAll(t, rb))
}

func TestConnTableCloseAll(t *testing.T) {
	table := server.NewConnTable(0, log.NewLogger("test"))
	a, ra := pair(t, "a")
	require.NoError(t, table.Add(a))

	table.CloseAll()
	assert.Zero(t, table.Len())
	assert.Equal(t, transport.InvalidFD, a.Fd())

	_, err := ra.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}
