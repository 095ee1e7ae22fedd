// File: server/server.go
// Package server implements the single-threaded counter server: one
// listening socket, one reactor, one connection table and one counter, all
// driven from a single goroutine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"net"
	"net/netip"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-counter/api"
	"github.com/momentics/hioload-counter/control"
	"github.com/momentics/hioload-counter/internal/log"
	"github.com/momentics/hioload-counter/internal/transport"
	"github.com/momentics/hioload-counter/protocol"
	"github.com/momentics/hioload-counter/reactor"
)

// Metric keys recorded by the server.
const (
	MetricConnectionsActive   = "connections.active"
	MetricConnectionsAccepted = "connections.accepted"
	MetricConnectionsClosed   = "connections.closed"
	MetricCommandsProcessed   = "commands.processed"
	MetricCommandsIgnored     = "commands.ignored"
	MetricBroadcastsSent      = "broadcasts.sent"
	MetricSendFailures        = "send.failures"
	MetricCounterValue        = "counter.value"
)

// Server owns the listener, the reactor and every accepted connection.
type Server struct {
	cfg       *Config
	log       *logrus.Entry
	listener  *transport.Listener
	reactor   api.Reactor
	conns     *ConnTable
	counter   protocol.Counter
	namer     transport.PeerNamer
	metrics   *control.MetricsRegistry
	probes    *control.DebugProbes
	closeOnce sync.Once
}

// New binds the listening socket, creates the reactor and registers the
// listener with it. Failures are *StageError.
func New(cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:     cfg,
		log:     log.NewLogger("server"),
		metrics: control.NewMetricsRegistry(),
		probes:  control.NewDebugProbes(),
		namer:   transport.PeerNamer{Timeout: cfg.ResolveTimeout},
	}
	if cfg.ResolvePeerNames {
		s.namer.Resolver = net.DefaultResolver
	}
	for _, opt := range opts {
		opt(s)
	}
	s.conns = NewConnTable(cfg.InitialConnections, s.log)

	ln, err := transport.Listen(transport.ListenConfig{Port: cfg.Port, Backlog: cfg.Backlog})
	if err != nil {
		return nil, listenStageError(err)
	}

	r, err := reactor.New()
	if err != nil {
		ln.Close()
		return nil, &StageError{Stage: StageReactor, Err: err}
	}
	if err := r.Register(ln, api.EventReadable); err != nil {
		_ = r.Close()
		ln.Close()
		return nil, &StageError{Stage: StageRegister, Err: err}
	}
	s.listener = ln
	s.reactor = r

	s.registerProbes()
	s.metrics.Set(MetricConnectionsActive, int64(0))
	s.metrics.Set(MetricCounterValue, int64(0))
	return s, nil
}

func (s *Server) registerProbes() {
	control.RegisterPlatformProbes(s.probes)
	s.probes.RegisterProbe("server.addr", func() any { return s.listener.Addr().String() })
	s.probes.RegisterProbe("server.connections", func() any { return s.conns.Len() })
	s.probes.RegisterProbe("server.counter", func() any { return s.counter.Value() })
}

// Addr returns the bound listening address.
func (s *Server) Addr() netip.AddrPort {
	return s.listener.Addr()
}

// Metrics returns a snapshot of the runtime metrics. Safe from any goroutine.
func (s *Server) Metrics() map[string]any {
	return s.metrics.GetSnapshot()
}

// Debug exposes the server's debug probes.
func (s *Server) Debug() api.Debug {
	return s.probes
}

// Close releases every connection, the listener and the reactor, once.
// Run calls it on exit; calling it without Run is also valid.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.log.WithFields(logrus.Fields(s.probes.DumpState())).Debug("final state")
		n := s.conns.Len()
		s.conns.CloseAll()
		s.metrics.Add(MetricConnectionsClosed, int64(n))
		s.metrics.Set(MetricConnectionsActive, int64(0))
		s.listener.Close()
		if err := s.reactor.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close reactor")
		}
		s.log.WithFields(logrus.Fields(s.metrics.GetSnapshot())).Debug("final metrics")
	})
}
