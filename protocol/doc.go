// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Counter line protocol: parsing of CRLF-stripped lines into typed commands
// and the pure transition from (counter, command) to (counter, result).
//
// Client to server: OUTPUT, INCR <int64>, DECR <int64>.
// Server to client: unframed ASCII decimal digits of the counter.
package protocol
