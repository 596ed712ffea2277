// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package renderers contains renderers built on the resource pools.
//
// A renderer obtains its pipelines when it is constructed and only reads
// them back while drawing, so drawing never compiles or creates anything.
package renderers

import (
	"errors"

	"github.com/gogpu/wgpu/hal"

	"github.com/halli2/playground/resources"
)

// ErrNilPass is returned by Draw when no render pass is given.
var ErrNilPass = errors.New("renderers: nil render pass")

// RenderPass is the part of hal.RenderPassEncoder renderers record into.
type RenderPass interface {
	SetPipeline(pipeline hal.RenderPipeline)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// Renderer records draw commands into a render pass.
type Renderer interface {
	// Draw records the renderer's commands. It only reads from pools.
	Draw(pass RenderPass, pools *resources.Pools) error
}

// Static draws a fixed number of vertices with one pipeline and no
// vertex buffers.
type Static struct {
	pipeline resources.RenderPipelineHandle
	vertices uint32
}

// NewStatic returns a renderer drawing vertices vertices with pipeline.
func NewStatic(pipeline resources.RenderPipelineHandle, vertices uint32) *Static {
	return &Static{pipeline: pipeline, vertices: vertices}
}

// Pipeline returns the pipeline handle.
func (s *Static) Pipeline() resources.RenderPipelineHandle { return s.pipeline }

// Draw implements Renderer.
func (s *Static) Draw(pass RenderPass, pools *resources.Pools) error {
	if pass == nil {
		return ErrNilPass
	}
	pass.SetPipeline(pools.RenderPipeline().Get(s.pipeline).Raw)
	pass.Draw(s.vertices, 1, 0, 0)
	return nil
}

var _ Renderer = (*Static)(nil)
