// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// HALDevice implements Device and Releaser on top of a hal.Device.
//
// By default WGSL is compiled to SPIR-V with naga before it reaches the HAL,
// so shader errors are reported the same way on every backend.
// WithWGSLPassthrough hands WGSL to the HAL unchanged instead.
type HALDevice struct {
	raw             hal.Device
	wgslPassthrough bool
}

// Option configures a HALDevice.
type Option func(*HALDevice)

// WithWGSLPassthrough makes the device pass WGSL source to the HAL without
// compiling it first. Use it with backends that consume WGSL natively.
func WithWGSLPassthrough() Option {
	return func(d *HALDevice) {
		d.wgslPassthrough = true
	}
}

// NewHAL wraps a HAL device. The device stays owned by the caller.
func NewHAL(raw hal.Device, opts ...Option) (*HALDevice, error) {
	if raw == nil {
		return nil, ErrNilDevice
	}
	d := &HALDevice{raw: raw}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Raw returns the wrapped HAL device.
func (d *HALDevice) Raw() hal.Device {
	return d.raw
}

// CompileShader implements Device.
func (d *HALDevice) CompileShader(label, source string) (hal.ShaderModule, error) {
	if strings.TrimSpace(source) == "" {
		return nil, creationError(KindShader, label, errors.New("empty shader source"))
	}

	src := hal.ShaderSource{WGSL: source}
	if !d.wgslPassthrough {
		spirv, err := compileWGSL(source)
		if err != nil {
			return nil, creationError(KindShader, label, err)
		}
		src = hal.ShaderSource{SPIRV: spirv}
	}

	module, err := d.raw.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: src,
	})
	if err != nil {
		return nil, creationError(KindShader, label, err)
	}
	slogger().Debug("device: shader module created", "label", label, "spirv", !d.wgslPassthrough)
	return module, nil
}

// compileWGSL compiles WGSL to little-endian SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile WGSL: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile WGSL: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// CreatePipelineLayout implements Device.
//
// One bind group layout is created per group of the shape. If any step
// fails, everything created so far is destroyed before returning.
func (d *HALDevice) CreatePipelineLayout(label string, shape LayoutShape) (*PipelineLayout, error) {
	if err := shape.Validate(); err != nil {
		return nil, creationError(KindPipelineLayout, label, err)
	}

	groups := shape.Groups()
	bgls := make([]hal.BindGroupLayout, 0, len(groups))
	cleanup := func() {
		for _, l := range bgls {
			d.raw.DestroyBindGroupLayout(l)
		}
	}

	for i, g := range groups {
		bgl, err := d.raw.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s/group%d", label, i),
			Entries: layoutEntries(g),
		})
		if err != nil {
			cleanup()
			return nil, creationError(KindPipelineLayout, label, fmt.Errorf("bind group %d: %w", i, err))
		}
		bgls = append(bgls, bgl)
	}

	raw, err := d.raw.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: bgls,
	})
	if err != nil {
		cleanup()
		return nil, creationError(KindPipelineLayout, label, err)
	}

	slogger().Debug("device: pipeline layout created", "label", label, "groups", len(bgls))
	return &PipelineLayout{
		Label:            label,
		Shape:            shape,
		Raw:              raw,
		BindGroupLayouts: bgls,
	}, nil
}

// CreateRenderPipeline implements Device.
func (d *HALDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if desc == nil {
		return nil, creationError(KindRenderPipeline, "", errors.New("nil descriptor"))
	}
	switch {
	case desc.VertexShader == nil:
		return nil, creationError(KindRenderPipeline, desc.Label, errors.New("missing vertex shader"))
	case desc.FragmentShader == nil:
		return nil, creationError(KindRenderPipeline, desc.Label, errors.New("missing fragment shader"))
	case desc.Layout == nil || desc.Layout.Raw == nil:
		return nil, creationError(KindRenderPipeline, desc.Label, errors.New("missing pipeline layout"))
	case desc.Format == gputypes.TextureFormatUndefined:
		return nil, creationError(KindRenderPipeline, desc.Label, errors.New("undefined target format"))
	}

	vsEntry := desc.VertexEntryPoint
	if vsEntry == "" {
		vsEntry = DefaultVertexEntryPoint
	}
	fsEntry := desc.FragmentEntryPoint
	if fsEntry == "" {
		fsEntry = DefaultFragmentEntryPoint
	}

	pipeline, err := d.raw.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: desc.Layout.Raw,
		Vertex: hal.VertexState{
			Module:     desc.VertexShader,
			EntryPoint: vsEntry,
		},
		Fragment: &hal.FragmentState{
			Module:     desc.FragmentShader,
			EntryPoint: fsEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    desc.Format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, creationError(KindRenderPipeline, desc.Label, err)
	}
	slogger().Debug("device: render pipeline created", "label", desc.Label, "format", desc.Format)
	return pipeline, nil
}

// ReleaseShader implements Releaser.
func (d *HALDevice) ReleaseShader(m hal.ShaderModule) {
	if m != nil {
		d.raw.DestroyShaderModule(m)
	}
}

// ReleasePipelineLayout implements Releaser. The bind group layouts are
// destroyed after the pipeline layout that refers to them.
func (d *HALDevice) ReleasePipelineLayout(l *PipelineLayout) {
	if l == nil {
		return
	}
	if l.Raw != nil {
		d.raw.DestroyPipelineLayout(l.Raw)
	}
	for _, bgl := range l.BindGroupLayouts {
		if bgl != nil {
			d.raw.DestroyBindGroupLayout(bgl)
		}
	}
}

// ReleaseRenderPipeline implements Releaser.
func (d *HALDevice) ReleaseRenderPipeline(p hal.RenderPipeline) {
	if p != nil {
		d.raw.DestroyRenderPipeline(p)
	}
}

var (
	_ Device   = (*HALDevice)(nil)
	_ Releaser = (*HALDevice)(nil)
)
