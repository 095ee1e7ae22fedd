// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import "context"

// Resolver answers reverse lookups from a fixed table.
type Resolver struct {
	Names map[string][]string
	Err   error
	Calls int
}

func (r *Resolver) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	r.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Names[addr], nil
}
