// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidHandle matches every *InvalidHandleError.
var ErrInvalidHandle = errors.New("cache: invalid handle")

// InvalidHandleError describes a handle presented to a pool that did not
// issue it. Pools raise it with panic.
type InvalidHandleError struct {
	// Pool is the name of the pool the handle was presented to.
	Pool string

	// Handle is the offending handle, formatted.
	Handle string

	// Reason says which check failed.
	Reason string
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("cache: %s: invalid handle %s: %s", e.Pool, e.Handle, e.Reason)
}

// Is reports whether target is ErrInvalidHandle.
func (e *InvalidHandleError) Is(target error) bool {
	return target == ErrInvalidHandle
}
