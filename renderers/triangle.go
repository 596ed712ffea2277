// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package renderers

import (
	"github.com/gogpu/gputypes"

	"github.com/halli2/playground"
	"github.com/halli2/playground/resources"
)

// TriangleShader is the asset id of the triangle shader.
const TriangleShader = "shaders/triangle.wgsl"

// Triangle draws a single triangle whose vertices are derived from the
// vertex index.
type Triangle struct {
	Static
}

// NewTriangle creates the triangle pipeline for format in the pools of ctx.
// Triangles built on the same context share the shader, the layout and,
// for equal formats, the pipeline.
func NewTriangle(ctx *playground.Context, format gputypes.TextureFormat) (*Triangle, error) {
	dev, src, pools := ctx.Device(), ctx.Assets(), ctx.Pools()

	shader, err := pools.Shader().GetOrCreate(dev, src, resources.ShaderDesc{
		Label:  "triangle",
		Source: TriangleShader,
	})
	if err != nil {
		return nil, err
	}
	layout, err := pools.PipelineLayout().GetOrCreate(dev, resources.PipelineLayoutDesc{
		Label: "empty",
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := pools.RenderPipeline().GetOrCreate(dev, resources.RenderPipelineDesc{
		Label:          "triangle",
		VertexShader:   shader,
		FragmentShader: shader,
		Layout:         layout,
		Format:         format,
	}, pools.Shader(), pools.PipelineLayout())
	if err != nil {
		return nil, err
	}
	return &Triangle{Static: Static{pipeline: pipeline, vertices: 3}}, nil
}
