// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"fmt"
	"sync/atomic"
)

// Handle identifies a resource slot inside the Pool that issued it.
//
// Handles are small comparable values: they can be copied freely, compared
// with ==, and embedded in other descriptors as map keys. The type parameter
// ties a handle to the resource type of its pool, so a shader handle cannot
// be passed where a pipeline layout handle is expected.
//
// The zero Handle is never issued by any pool.
type Handle[R any] struct {
	pool  uint32
	index uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle[R]) IsZero() bool {
	return h.pool == 0
}

// Index returns the arena slot of the handle. Slots are assigned in
// creation order starting at zero.
func (h Handle[R]) Index() int {
	return int(h.index)
}

// String implements fmt.Stringer.
func (h Handle[R]) String() string {
	if h.IsZero() {
		return "handle(zero)"
	}
	return fmt.Sprintf("handle(%d:%d)", h.pool, h.index)
}

// poolIDs hands out pool identities. Zero is reserved for the zero handle.
var poolIDs atomic.Uint32

func nextPoolID() uint32 {
	return poolIDs.Add(1)
}
