// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resources provides the GPU resource pools shared by renderers.
//
// Three pools deduplicate the objects a render pipeline is built from:
// ShaderPool and PipelineLayoutPool are keyed by self-contained descriptors,
// RenderPipelinePool is keyed by the handles those two pools return. A
// pipeline is obtained in two steps: resolve the shader and layout handles
// through the leaf pools, then compose a RenderPipelineDesc from them.
//
//	vs, err := pools.Shader().GetOrCreate(dev, src, resources.ShaderDesc{Label: "tri", Source: "shaders/triangle.wgsl"})
//	layout, err := pools.PipelineLayout().GetOrCreate(dev, resources.PipelineLayoutDesc{Label: "empty"})
//	p, err := pools.RenderPipeline().GetOrCreate(dev, resources.RenderPipelineDesc{
//	    Label:          "tri",
//	    VertexShader:   vs,
//	    FragmentShader: vs,
//	    Layout:         layout,
//	    Format:         gputypes.TextureFormatBGRA8Unorm,
//	}, pools.Shader(), pools.PipelineLayout())
//
// Pools.ResolveRenderPipeline runs both steps for callers that hold raw
// descriptors.
package resources

import (
	"github.com/gogpu/gputypes"

	"github.com/halli2/playground/assets"
	"github.com/halli2/playground/cache"
	"github.com/halli2/playground/device"
)

// Pools is the registry of every resource pool. Renderers receive it when
// they are built and when they draw.
//
// The pools are safe for concurrent use. Release is not, and must not run
// while other goroutines use the registry.
type Pools struct {
	shaders   *ShaderPool
	layouts   *PipelineLayoutPool
	pipelines *RenderPipelinePool
}

// NewPools creates a registry with empty pools.
func NewPools() *Pools {
	return &Pools{
		shaders:   NewShaderPool(),
		layouts:   NewPipelineLayoutPool(),
		pipelines: NewRenderPipelinePool(),
	}
}

// Shader returns the shader pool.
func (r *Pools) Shader() *ShaderPool { return r.shaders }

// PipelineLayout returns the pipeline layout pool.
func (r *Pools) PipelineLayout() *PipelineLayoutPool { return r.layouts }

// RenderPipeline returns the render pipeline pool.
func (r *Pools) RenderPipeline() *RenderPipelinePool { return r.pipelines }

// PipelineRequest describes a render pipeline by the descriptors of its
// dependencies rather than by their handles.
type PipelineRequest struct {
	Label string

	Vertex           ShaderDesc
	VertexEntryPoint string

	Fragment           ShaderDesc
	FragmentEntryPoint string

	Layout PipelineLayoutDesc

	Format gputypes.TextureFormat
}

// ResolveRenderPipeline resolves the shaders and layout of req, then gets
// or creates the pipeline composed from their handles. Dependencies created
// before a failure stay in their pools.
func (r *Pools) ResolveRenderPipeline(dev device.Device, src assets.Source, req PipelineRequest) (RenderPipelineHandle, error) {
	vs, err := r.shaders.GetOrCreate(dev, src, req.Vertex)
	if err != nil {
		return RenderPipelineHandle{}, err
	}
	fs, err := r.shaders.GetOrCreate(dev, src, req.Fragment)
	if err != nil {
		return RenderPipelineHandle{}, err
	}
	layout, err := r.layouts.GetOrCreate(dev, req.Layout)
	if err != nil {
		return RenderPipelineHandle{}, err
	}

	return r.pipelines.GetOrCreate(dev, RenderPipelineDesc{
		Label:              req.Label,
		VertexShader:       vs,
		VertexEntryPoint:   req.VertexEntryPoint,
		FragmentShader:     fs,
		FragmentEntryPoint: req.FragmentEntryPoint,
		Layout:             layout,
		Format:             req.Format,
	}, r.shaders, r.layouts)
}

// PoolStats holds the counters of every pool.
type PoolStats struct {
	Shaders         cache.Stats
	PipelineLayouts cache.Stats
	RenderPipelines cache.Stats
}

// Stats returns the counters of every pool.
func (r *Pools) Stats() PoolStats {
	return PoolStats{
		Shaders:         r.shaders.Stats(),
		PipelineLayouts: r.layouts.Stats(),
		RenderPipelines: r.pipelines.Stats(),
	}
}

// Release destroys every pooled object and replaces the pools with empty
// ones. Pipelines go first, then layouts, then shaders. If dev does not
// implement device.Releaser the objects are only dropped.
//
// Handles issued before Release panic when passed to the new pools.
func (r *Pools) Release(dev device.Device) {
	if rel, ok := dev.(device.Releaser); ok {
		for _, p := range r.pipelines.pool.All() {
			rel.ReleaseRenderPipeline(p.Raw)
		}
		for _, l := range r.layouts.pool.All() {
			rel.ReleasePipelineLayout(l)
		}
		for _, s := range r.shaders.pool.All() {
			rel.ReleaseShader(s.Module)
		}
	}

	stats := r.Stats()
	slogger().Info("resources: pools released",
		"shaders", stats.Shaders.Entries,
		"layouts", stats.PipelineLayouts.Entries,
		"pipelines", stats.RenderPipelines.Entries)

	r.shaders = NewShaderPool()
	r.layouts = NewPipelineLayoutPool()
	r.pipelines = NewRenderPipelinePool()
}
