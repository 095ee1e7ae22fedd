// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Command dispatch against the shared counter.

package protocol

import "strconv"

// Result tells the caller what to send after applying a command.
// Nil slices mean nothing to send. Payloads carry no terminator.
type Result struct {
	Reply     []byte // to the issuing connection only
	Broadcast []byte // to every connection
}

// Apply is the pure transition function of the protocol.
// Arithmetic wraps on int64 overflow; there is no clamping.
func Apply(value int64, cmd Command) (int64, Result) {
	switch cmd.Kind {
	case Output:
		return value, Result{Reply: Render(value)}
	case Increment:
		value += cmd.Delta
		return value, Result{Broadcast: Render(value)}
	case Decrement:
		value -= cmd.Delta
		return value, Result{Broadcast: Render(value)}
	}
	return value, Result{}
}

// Render formats a counter value as ASCII decimal digits.
func Render(value int64) []byte {
	return strconv.AppendInt(nil, value, 10)
}

// Counter is the process-wide shared state. It is not synchronized and must
// only be touched from the reactor loop.
type Counter struct {
	value int64
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	return c.value
}

// Handle parses and applies one line.
func (c *Counter) Handle(line string) (Command, Result) {
	cmd := Parse(line)
	var res Result
	c.value, res = Apply(c.value, cmd)
	return cmd, res
}
