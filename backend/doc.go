// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend opens HAL devices by name.
//
// Backends are registered via init() functions and selected at runtime.
// The headless noop backend registers itself on import:
//
//	import _ "github.com/halli2/playground/backend/noop"
//
// # Backend Selection
//
// Use Default() to open the best available backend, or Open() to request
// a specific backend by name:
//
//	opened, err := backend.Open("noop")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer opened.Close()
//
//	dev, err := device.NewHAL(opened.Device)
//
// Host applications that already own a device (for example a gogpu window)
// do not need this package; they pass their device to playground.NewContext
// or playground.NewContextFromProvider directly.
package backend
