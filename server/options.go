// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-counter/control"
	"github.com/momentics/hioload-counter/internal/transport"
)

// Option customizes server initialization.
type Option func(*Server)

// WithLogger replaces the diagnostic logger.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithResolver sets the reverse resolver used for peer names, overriding
// Config.ResolvePeerNames. A nil resolver disables lookups.
func WithResolver(r transport.Resolver) Option {
	return func(s *Server) {
		s.namer.Resolver = r
	}
}

// WithMetrics shares an external metrics registry.
func WithMetrics(m *control.MetricsRegistry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}
