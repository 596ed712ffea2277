// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"sync"

	"github.com/gogpu/wgpu/hal"
)

// Backend names.
const (
	// BackendNoop is the headless backend that creates placeholder objects.
	BackendNoop = "noop"
)

// Package errors.
var (
	// ErrBackendNotAvailable is returned when no backend can be opened.
	ErrBackendNotAvailable = errors.New("backend: no backend available")

	// ErrUnknownBackend is returned by Open for unregistered names.
	ErrUnknownBackend = errors.New("backend: unknown backend")

	// ErrNoAdapter is returned when a backend exposes no adapters.
	ErrNoAdapter = errors.New("backend: no adapter available")
)

// Opened is an open HAL device with its queue.
type Opened struct {
	// Name is the backend name the device was opened with.
	Name string

	Device hal.Device
	Queue  hal.Queue

	closeOnce sync.Once
	release   func()
}

// NewOpened wraps a device and queue. release is called once by Close and
// should destroy the device and whatever instance it came from.
func NewOpened(name string, device hal.Device, queue hal.Queue, release func()) *Opened {
	return &Opened{Name: name, Device: device, Queue: queue, release: release}
}

// Close releases the device. It is safe to call more than once.
func (o *Opened) Close() {
	o.closeOnce.Do(func() {
		if o.release != nil {
			o.release()
		}
	})
}
