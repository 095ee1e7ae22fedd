// File: internal/framing/doc.go
// Package framing
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CRLF line framing over non-blocking stream reads. A logical line may
// arrive split across any number of reads; only complete lines are yielded.

package framing
