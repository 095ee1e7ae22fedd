// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw non-blocking socket layer for hioload-counter: exclusive descriptor
// ownership (Handle), the dual-stack listening socket, and best-effort peer
// naming. Linux is the supported platform; other builds compile against
// stubs that report api.ErrNotSupported.

package transport
