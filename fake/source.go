// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides test doubles for the socket layer.
package fake

import "github.com/momentics/hioload-counter/api"

// Source replays scripted non-blocking reads. Each chunk is delivered by at
// most one Read call (split further if the caller's buffer is smaller);
// once exhausted, Read returns End, or api.ErrWouldBlock when End is nil.
type Source struct {
	Chunks []string
	End    error
	Reads  int
}

// NewSource scripts chunks followed by "would block".
func NewSource(chunks ...string) *Source {
	return &Source{Chunks: chunks}
}

func (s *Source) Read(p []byte) (int, error) {
	s.Reads++
	if len(s.Chunks) == 0 {
		if s.End == nil {
			return 0, api.ErrWouldBlock
		}
		return 0, s.End
	}
	n := copy(p, s.Chunks[0])
	if n < len(s.Chunks[0]) {
		s.Chunks[0] = s.Chunks[0][n:]
	} else {
		s.Chunks = s.Chunks[1:]
	}
	return n, nil
}
