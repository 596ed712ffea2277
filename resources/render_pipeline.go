// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resources

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/halli2/playground/cache"
	"github.com/halli2/playground/device"
)

// RenderPipelineDesc identifies a render pipeline by the handles of its
// dependencies. The handles must come from the ShaderPool and
// PipelineLayoutPool passed to RenderPipelinePool.GetOrCreate.
type RenderPipelineDesc struct {
	Label string

	VertexShader     ShaderHandle
	VertexEntryPoint string

	FragmentShader     ShaderHandle
	FragmentEntryPoint string

	Layout PipelineLayoutHandle

	// Format is the color target format.
	Format gputypes.TextureFormat
}

// normalized fills in default entry points so that a descriptor with empty
// entry points and one naming the defaults share a pipeline.
func (d RenderPipelineDesc) normalized() RenderPipelineDesc {
	if d.VertexEntryPoint == "" {
		d.VertexEntryPoint = device.DefaultVertexEntryPoint
	}
	if d.FragmentEntryPoint == "" {
		d.FragmentEntryPoint = device.DefaultFragmentEntryPoint
	}
	return d
}

// RenderPipeline is a created render pipeline.
type RenderPipeline struct {
	Label string

	// Desc is the normalized descriptor the pipeline was created from.
	Desc RenderPipelineDesc

	Raw hal.RenderPipeline
}

// RenderPipelineHandle refers to a pipeline in a RenderPipelinePool.
type RenderPipelineHandle = cache.Handle[*RenderPipeline]

// ShaderSource gives read access to created shaders.
// *ShaderPool implements it.
type ShaderSource interface {
	Get(ShaderHandle) *Shader
}

// LayoutSource gives read access to created pipeline layouts.
// *PipelineLayoutPool implements it.
type LayoutSource interface {
	Get(PipelineLayoutHandle) *device.PipelineLayout
}

// RenderPipelinePool deduplicates render pipelines by RenderPipelineDesc.
type RenderPipelinePool struct {
	pool *cache.Pool[RenderPipelineDesc, *RenderPipeline]
}

// NewRenderPipelinePool creates an empty render pipeline pool.
func NewRenderPipelinePool() *RenderPipelinePool {
	return &RenderPipelinePool{pool: cache.New[RenderPipelineDesc, *RenderPipeline]("render pipelines")}
}

// GetOrCreate returns the handle for desc, creating the pipeline on first
// use. Dependencies are only dereferenced through shaders and layouts; they
// must already exist. A dependency handle that neither view issued panics
// with *cache.InvalidHandleError.
func (p *RenderPipelinePool) GetOrCreate(
	dev device.Device,
	desc RenderPipelineDesc,
	shaders ShaderSource,
	layouts LayoutSource,
) (RenderPipelineHandle, error) {
	return p.pool.GetOrCreate(desc.normalized(), func(d RenderPipelineDesc) (*RenderPipeline, error) {
		vs := shaders.Get(d.VertexShader)
		fs := shaders.Get(d.FragmentShader)
		layout := layouts.Get(d.Layout)

		raw, err := dev.CreateRenderPipeline(&device.RenderPipelineDescriptor{
			Label:              d.Label,
			VertexShader:       vs.Module,
			VertexEntryPoint:   d.VertexEntryPoint,
			FragmentShader:     fs.Module,
			FragmentEntryPoint: d.FragmentEntryPoint,
			Layout:             layout,
			Format:             d.Format,
		})
		if err != nil {
			return nil, err
		}
		return &RenderPipeline{Label: d.Label, Desc: d, Raw: raw}, nil
	})
}

// Get returns the pipeline for h. It panics if h was not issued by p.
func (p *RenderPipelinePool) Get(h RenderPipelineHandle) *RenderPipeline {
	return p.pool.Get(h)
}

// Lookup returns the handle for desc if the pipeline already exists.
func (p *RenderPipelinePool) Lookup(desc RenderPipelineDesc) (RenderPipelineHandle, bool) {
	return p.pool.Lookup(desc.normalized())
}

// Len returns the number of pipelines.
func (p *RenderPipelinePool) Len() int { return p.pool.Len() }

// Stats returns the pool counters.
func (p *RenderPipelinePool) Stats() cache.Stats { return p.pool.Stats() }

var (
	_ ShaderSource = (*ShaderPool)(nil)
	_ LayoutSource = (*PipelineLayoutPool)(nil)
)
