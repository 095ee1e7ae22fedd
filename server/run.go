// File: server/run.go
// Package server implements the reactor loop, connection acceptor, line
// dispatch and graceful shutdown.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"runtime"
	"time"

	"github.com/momentics/hioload-counter/api"
	"github.com/momentics/hioload-counter/internal/framing"
	"github.com/momentics/hioload-counter/protocol"
	"github.com/momentics/hioload-counter/reactor"
)

// Run drives the reactor loop on the calling goroutine until ctx is
// cancelled, then releases every descriptor. It returns nil on graceful
// shutdown and a *StageError when registration or waiting fails.
func (s *Server) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer s.Close()

	s.log.Infof("starting up on %s... count initialized to %d", s.listener.Addr(), s.counter.Value())

	for ctx.Err() == nil {
		ev, err := s.reactor.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return &StageError{Stage: StageWait, Err: err}
		}
		if ev.IsZero() {
			// woken by a signal or by cancellation
			continue
		}
		if err := s.handleEvent(ev); err != nil {
			return err
		}
	}

	s.log.Info("shutting down...")
	return nil
}

func (s *Server) handleEvent(ev api.Event) error {
	// new incoming connection
	if ev.Fd == s.listener.Fd() {
		return s.accept()
	}

	// event from one of our connections
	conn := s.conns.Get(ev.Fd)
	if conn == nil {
		return nil
	}
	closed := false
	if ev.Flags.Has(api.EventReadable) {
		closed = s.readFrom(conn)
	}
	if closed || ev.Flags.HungUp() {
		s.drop(ev.Fd)
	}
	return nil
}

func (s *Server) accept() error {
	h, ok := s.listener.AcceptOne()
	if !ok {
		return nil
	}
	conn := NewConn(h, s.namer.Name(h.Fd()), framing.NewLineReader(s.cfg.ReadBufferSize, s.cfg.MaxLineLength))

	if err := s.reactor.Register(conn, reactor.DefaultConnInterest); err != nil {
		conn.Close()
		return &StageError{Stage: StageRegister, Err: api.NewError(api.ErrCodeInternal, "register connection").
			WithContext("peer", conn.Peer()).
			Wrap(err)}
	}
	if err := s.conns.Add(conn); err != nil {
		s.log.WithError(err).Error("rejecting connection")
		_ = s.reactor.Unregister(conn)
		conn.Close()
		return nil
	}

	s.metrics.Add(MetricConnectionsAccepted, 1)
	s.metrics.Set(MetricConnectionsActive, int64(s.conns.Len()))
	s.log.Infof("new connection from %s", conn.Peer())
	return nil
}

// readFrom drains the connection and dispatches every complete line. It
// reports whether the connection must be dropped.
func (s *Server) readFrom(conn *Conn) bool {
	eof, err := conn.reader.Fill(conn.handle)
	for line := range conn.reader.Lines() {
		s.dispatch(conn, line)
	}
	if err != nil {
		s.log.WithError(err).Warnf("dropping %s", conn.Peer())
		return true
	}
	return eof
}

func (s *Server) dispatch(conn *Conn, line string) {
	cmd, res := s.counter.Handle(line)
	value := s.counter.Value()

	switch cmd.Kind {
	case protocol.Output:
		s.log.Infof("%s requests the count; it is %d", conn.Peer(), value)
	case protocol.Increment:
		s.log.Infof("%s increments the count by %d to %d", conn.Peer(), cmd.Delta, value)
	case protocol.Decrement:
		s.log.Infof("%s decrements the count by %d to %d", conn.Peer(), cmd.Delta, value)
	default:
		s.metrics.Add(MetricCommandsIgnored, 1)
		s.log.Tracef("%s sent an unrecognized line", conn.Peer())
		return
	}
	s.metrics.Add(MetricCommandsProcessed, 1)
	s.metrics.Set(MetricCounterValue, value)

	if res.Reply != nil {
		if err := conn.Send(res.Reply); err != nil {
			s.metrics.Add(MetricSendFailures, 1)
			s.log.WithError(err).Warnf("failed to send output to %s (fd %d)", conn.Peer(), conn.Fd())
		}
	}
	if res.Broadcast != nil {
		sent := s.conns.Broadcast(res.Broadcast)
		s.metrics.Add(MetricBroadcastsSent, int64(sent))
		s.metrics.Add(MetricSendFailures, int64(s.conns.Len()-sent))
	}
}

// drop removes, deregisters and closes the connection. Dropping an fd that
// is no longer tracked is a no-op.
func (s *Server) drop(fd int) {
	conn := s.conns.Remove(fd)
	if conn == nil {
		return
	}
	if err := s.reactor.Unregister(conn); err != nil {
		s.log.WithError(err).Warnf("failed to deregister %s", conn.Peer())
	}
	s.log.Infof("%s hung up after %s", conn.Peer(), conn.Age().Round(time.Millisecond))
	conn.Close()

	s.metrics.Add(MetricConnectionsClosed, 1)
	s.metrics.Set(MetricConnectionsActive, int64(s.conns.Len()))
}
