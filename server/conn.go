// File: server/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Peer connections and the connection table. Both are owned by the reactor
// loop goroutine and are not synchronized.

package server

import (
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-counter/api"
	"github.com/momentics/hioload-counter/internal/framing"
	"github.com/momentics/hioload-counter/internal/transport"
)

// Conn is one accepted peer: its descriptor, its framing state and the peer
// name captured at accept time.
type Conn struct {
	handle   *transport.Handle
	reader   *framing.LineReader
	peer     string
	accepted time.Time
}

// NewConn takes ownership of h.
func NewConn(h *transport.Handle, peer string, reader *framing.LineReader) *Conn {
	if reader == nil {
		reader = framing.NewLineReader(0, 0)
	}
	return &Conn{
		handle:   h,
		reader:   reader,
		peer:     peer,
		accepted: time.Now(),
	}
}

// Fd returns the connection identity.
func (c *Conn) Fd() int {
	return c.handle.Fd()
}

// Peer returns the diagnostic peer name.
func (c *Conn) Peer() string {
	return c.peer
}

// Age returns how long the connection has been open.
func (c *Conn) Age() time.Duration {
	return time.Since(c.accepted)
}

// Send writes p without blocking. A short write is an error; the unsent
// tail is dropped.
func (c *Conn) Send(p []byte) error {
	n, err := c.handle.Write(p)
	if err != nil {
		return fmt.Errorf("send %d/%d bytes: %w", n, len(p), err)
	}
	return nil
}

// Close releases the descriptor.
func (c *Conn) Close() {
	c.handle.Close()
}

// ConnTable is the insertion-ordered set of live connections.
// No two entries share a descriptor.
type ConnTable struct {
	conns []*Conn
	log   *logrus.Entry
}

// NewConnTable reserves room for capacity connections.
func NewConnTable(capacity int, log *logrus.Entry) *ConnTable {
	if capacity < 0 {
		capacity = 0
	}
	return &ConnTable{
		conns: make([]*Conn, 0, capacity),
		log:   log,
	}
}

func (t *ConnTable) index(fd int) int {
	return slices.IndexFunc(t.conns, func(c *Conn) bool { return c.Fd() == fd })
}

// Add appends c. A descriptor already present is rejected.
func (t *ConnTable) Add(c *Conn) error {
	if t.index(c.Fd()) >= 0 {
		return api.NewError(api.ErrCodeAlreadyExists, "connection").
			WithContext("fd", c.Fd()).
			WithContext("peer", c.Peer()).
			Wrap(api.ErrAlreadyExists)
	}
	t.conns = append(t.conns, c)
	return nil
}

// Get returns the connection with descriptor fd, or nil.
func (t *ConnTable) Get(fd int) *Conn {
	if i := t.index(fd); i >= 0 {
		return t.conns[i]
	}
	return nil
}

// Remove drops at most one entry and hands it back to the caller, who then
// owns closing it. Removing an absent descriptor returns nil.
func (t *ConnTable) Remove(fd int) *Conn {
	i := t.index(fd)
	if i < 0 {
		return nil
	}
	c := t.conns[i]
	t.conns = slices.Delete(t.conns, i, i+1)
	return c
}

// Len returns the number of live connections.
func (t *ConnTable) Len() int {
	return len(t.conns)
}

// Broadcast writes payload to every connection and returns how many writes
// succeeded. Failures are logged; the connection stays until it hangs up.
func (t *ConnTable) Broadcast(payload []byte) int {
	sent := 0
	for _, c := range t.conns {
		if err := c.Send(payload); err != nil {
			t.log.WithError(err).Warnf("failed to send output to %s (fd %d)", c.Peer(), c.Fd())
			continue
		}
		sent++
	}
	return sent
}

// CloseAll closes and forgets every connection.
func (t *ConnTable) CloseAll() {
	for _, c := range t.conns {
		c.Close()
	}
	clear(t.conns)
	t.conns = t.conns[:0]
}
