// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package manifest

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/halli2/playground/assets"
	"github.com/halli2/playground/device"
	"github.com/halli2/playground/resources"
)

// Handles maps manifest names to pool handles.
type Handles struct {
	Shaders   map[string]resources.ShaderHandle
	Layouts   map[string]resources.PipelineLayoutHandle
	Pipelines map[string]resources.RenderPipelineHandle
}

// Apply creates every object of the manifest in pools. Shaders and layouts
// are created first, then pipelines are composed from their handles.
// Pipelines without a format use defaultFormat.
//
// Apply stops at the first error. Objects created before it stay pooled.
func Apply(m *Manifest, pools *resources.Pools, dev device.Device, src assets.Source, defaultFormat gputypes.TextureFormat) (*Handles, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	h := &Handles{
		Shaders:   make(map[string]resources.ShaderHandle, len(m.Shaders)),
		Layouts:   make(map[string]resources.PipelineLayoutHandle, len(m.Layouts)),
		Pipelines: make(map[string]resources.RenderPipelineHandle, len(m.Pipelines)),
	}

	for _, s := range m.Shaders {
		sh, err := pools.Shader().GetOrCreate(dev, src, resources.ShaderDesc{Label: s.Name, Source: s.Source})
		if err != nil {
			return nil, fmt.Errorf("manifest: shader %q: %w", s.Name, err)
		}
		h.Shaders[s.Name] = sh
	}

	for _, l := range m.Layouts {
		shape, err := l.Shape()
		if err != nil {
			return nil, fmt.Errorf("%w: layout %q: %v", ErrInvalid, l.Name, err)
		}
		lh, err := pools.PipelineLayout().GetOrCreate(dev, resources.PipelineLayoutDesc{Label: l.Name, Shape: shape})
		if err != nil {
			return nil, fmt.Errorf("manifest: layout %q: %w", l.Name, err)
		}
		h.Layouts[l.Name] = lh
	}

	for _, p := range m.Pipelines {
		format := defaultFormat
		if p.Format != "" {
			f, err := ParseFormat(p.Format)
			if err != nil {
				return nil, err
			}
			format = f
		}

		ph, err := pools.RenderPipeline().GetOrCreate(dev, resources.RenderPipelineDesc{
			Label:              p.Name,
			VertexShader:       h.Shaders[p.Vertex],
			VertexEntryPoint:   p.VertexEntry,
			FragmentShader:     h.Shaders[p.Fragment],
			FragmentEntryPoint: p.FragmentEntry,
			Layout:             h.Layouts[p.Layout],
			Format:             format,
		}, pools.Shader(), pools.PipelineLayout())
		if err != nil {
			return nil, fmt.Errorf("manifest: pipeline %q: %w", p.Name, err)
		}
		h.Pipelines[p.Name] = ph
	}

	return h, nil
}
