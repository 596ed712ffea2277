// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package noop registers the headless "noop" backend.
//
// The noop HAL accepts every object description and creates placeholders
// without touching a GPU. It is used by tests and by the demo command on
// machines without a graphics driver.
package noop

import (
	"fmt"

	"github.com/gogpu/gputypes"
	halnoop "github.com/gogpu/wgpu/hal/noop"

	"github.com/halli2/playground/backend"
)

func init() {
	backend.Register(backend.BackendNoop, Open)
}

// Open opens a noop device and queue.
func Open() (*backend.Opened, error) {
	api := halnoop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("noop: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, backend.ErrNoAdapter
	}

	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("noop: open adapter: %w", err)
	}

	release := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return backend.NewOpened(backend.BackendNoop, openDev.Device, openDev.Queue, release), nil
}
