// File: internal/framing/linereader.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package framing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-counter/api"
)

// Terminator ends every line.
var Terminator = []byte("\r\n")

const (
	DefaultReadSize      = 4096
	DefaultMaxLineLength = 64 * 1024
)

// ErrLineTooLong is returned when an unterminated line outgrows the limit.
var ErrLineTooLong = errors.New("line exceeds maximum length")

// LineReader accumulates bytes from a non-blocking source and queues the
// complete lines. It belongs to exactly one connection.
type LineReader struct {
	buf     []byte       // unterminated remainder
	scratch []byte       // per-read destination
	lines   *queue.Queue // complete lines, terminator stripped
	maxLine int
}

// NewLineReader creates a reader; non-positive sizes take the defaults.
func NewLineReader(readSize, maxLine int) *LineReader {
	if readSize <= 0 {
		readSize = DefaultReadSize
	}
	if maxLine <= 0 {
		maxLine = DefaultMaxLineLength
	}
	return &LineReader{
		scratch: make([]byte, readSize),
		lines:   queue.New(),
		maxLine: maxLine,
	}
}

// Fill drains src until it would block, queueing every complete line.
// eof is true once src reported end-of-stream; the caller should then treat
// the connection as closed after consuming Lines.
func (r *LineReader) Fill(src io.Reader) (eof bool, err error) {
	for {
		n, err := src.Read(r.scratch)
		if n > 0 {
			r.buf = append(r.buf, r.scratch[:n]...)
			r.split()
			if len(r.buf) > r.maxLine {
				size := len(r.buf)
				r.buf = r.buf[:0]
				return false, fmt.Errorf("%w: %d bytes buffered", ErrLineTooLong, size)
			}
		}
		switch {
		case err == nil:
			if n == 0 {
				return false, nil
			}
		case errors.Is(err, api.ErrWouldBlock):
			return false, nil
		case errors.Is(err, io.EOF):
			return true, nil
		default:
			return false, err
		}
	}
}

// split moves every complete line from buf into the queue.
func (r *LineReader) split() {
	off := 0
	for {
		i := bytes.Index(r.buf[off:], Terminator)
		if i < 0 {
			break
		}
		r.lines.Add(string(r.buf[off : off+i]))
		off += i + len(Terminator)
	}
	if off > 0 {
		r.buf = append(r.buf[:0], r.buf[off:]...)
	}
}

// Lines lazily yields and consumes the queued lines in arrival order.
func (r *LineReader) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for r.lines.Length() > 0 {
			line, _ := r.lines.Remove().(string)
			if !yield(line) {
				return
			}
		}
	}
}

// Pending returns the number of complete lines not yet consumed.
func (r *LineReader) Pending() int {
	return r.lines.Length()
}

// Buffered returns the size of the unterminated remainder.
func (r *LineReader) Buffered() int {
	return len(r.buf)
}
