// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"errors"
	"fmt"
)

// Package errors.
var (
	// ErrCreation matches every *CreationError.
	ErrCreation = errors.New("device: resource creation failed")

	// ErrNilDevice is returned when a HAL device is required but nil.
	ErrNilDevice = errors.New("device: HAL device is nil")
)

// Kind names the kind of object a device was asked to create.
type Kind uint8

const (
	KindShader Kind = iota + 1
	KindPipelineLayout
	KindRenderPipeline
)

func (k Kind) String() string {
	switch k {
	case KindShader:
		return "shader module"
	case KindPipelineLayout:
		return "pipeline layout"
	case KindRenderPipeline:
		return "render pipeline"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// CreationError reports a backend failure while creating an object: bad
// shader code, a malformed layout or an incompatible pipeline state.
// It is not retried; callers may retry with a corrected descriptor.
type CreationError struct {
	Kind  Kind
	Label string
	Err   error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("device: create %s %q: %v", e.Kind, e.Label, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCreation.
func (e *CreationError) Is(target error) bool {
	return target == ErrCreation
}

func creationError(kind Kind, label string, err error) error {
	return &CreationError{Kind: kind, Label: label, Err: err}
}
