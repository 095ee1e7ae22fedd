// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection for hioload-counter.
//
// Provides:
//   - a metrics registry of counters and gauges recorded by the reactor loop
//   - named debug probes evaluated on demand (state dumps on shutdown)
//
// Both are safe for concurrent readers even though the server itself writes
// from a single goroutine.
package control
