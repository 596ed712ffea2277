// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package device defines the backend contract used by the resource pools and
// a gogpu/wgpu HAL implementation of it.
//
// The pools never talk to a GPU API directly. They ask a Device to build
// objects and store whatever it returns. HALDevice is the production Device;
// it compiles WGSL with naga and creates objects on a hal.Device, which may
// come from any wgpu HAL backend (Vulkan, Metal, DX12, GLES or noop).
package device

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Default shader entry points.
const (
	DefaultVertexEntryPoint   = "vs_main"
	DefaultFragmentEntryPoint = "fs_main"
)

// Device builds immutable GPU objects. It is shared and must not be mutated
// by its callers; implementations report failures as *CreationError.
type Device interface {
	// CompileShader builds a shader module from WGSL source text.
	CompileShader(label, source string) (hal.ShaderModule, error)

	// CreatePipelineLayout builds a pipeline layout, and the bind group
	// layouts it refers to, from a shape.
	CreatePipelineLayout(label string, shape LayoutShape) (*PipelineLayout, error)

	// CreateRenderPipeline builds a render pipeline from already created
	// shader modules and layout.
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (hal.RenderPipeline, error)
}

// Releaser is implemented by devices that can destroy the objects they built.
type Releaser interface {
	ReleaseShader(hal.ShaderModule)
	ReleasePipelineLayout(*PipelineLayout)
	ReleaseRenderPipeline(hal.RenderPipeline)
}

// PipelineLayout is a created pipeline layout together with the bind group
// layouts it was built from, one per group of its shape.
type PipelineLayout struct {
	Label            string
	Shape            LayoutShape
	Raw              hal.PipelineLayout
	BindGroupLayouts []hal.BindGroupLayout
}

// RenderPipelineDescriptor describes a render pipeline over existing objects.
type RenderPipelineDescriptor struct {
	Label string

	VertexShader     hal.ShaderModule
	VertexEntryPoint string

	FragmentShader     hal.ShaderModule
	FragmentEntryPoint string

	Layout *PipelineLayout

	// Format is the color target format.
	Format gputypes.TextureFormat
}
