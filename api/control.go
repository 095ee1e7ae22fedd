// File: api/control.go
// Package api defines the metrics contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Metrics records runtime counters and gauges.
type Metrics interface {
	// Set stores an absolute value under key.
	Set(key string, value any)
	// Add increments an integer counter under key.
	Add(key string, delta int64)
	// GetSnapshot returns a copy of all recorded values.
	GetSnapshot() map[string]any
}
