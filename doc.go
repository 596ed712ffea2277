// Package playground manages the GPU objects renderers draw with.
//
// # Overview
//
// Shader modules, pipeline layouts and render pipelines are expensive to
// create and never change once built. playground keeps one of each per
// distinct descriptor in append-only pools, so renderers that ask for the
// same shader or pipeline share a single object.
//
// # Quick Start
//
//	import (
//	    "github.com/halli2/playground"
//	    "github.com/halli2/playground/backend"
//	    _ "github.com/halli2/playground/backend/noop"
//	    "github.com/halli2/playground/renderers"
//	)
//
//	opened, err := backend.Default()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx, err := playground.NewContextFromHAL(opened.Device,
//	    playground.WithQueue(opened.Queue),
//	    playground.WithOnClose(opened.Close),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	tri, err := renderers.NewTriangle(ctx, ctx.Format())
//
// # Architecture
//
// The module is organized into:
//   - cache: the generic descriptor-keyed pool and typed handles
//   - device: the device contract and its wgpu HAL implementation
//   - resources: shader, pipeline layout and render pipeline pools
//   - assets: shader source lookup (asset directory, fs.FS, built-ins)
//   - manifest: TOML pipeline manifests
//   - renderers: renderers built on the pools
//   - backend: named HAL backends
//
// # Logging
//
// Nothing is logged by default. Call SetLogger with a *slog.Logger to
// enable logging in playground and all sub-packages.
package playground
