// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resources

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/halli2/playground/assets"
	"github.com/halli2/playground/cache"
	"github.com/halli2/playground/device"
)

// ShaderDesc identifies a shader module. Label is part of the identity: two
// descriptors with the same source but different labels are two modules.
type ShaderDesc struct {
	Label string

	// Source is the asset identifier of the WGSL text,
	// e.g. "shaders/triangle.wgsl".
	Source string
}

// Shader is a compiled shader module.
type Shader struct {
	Label  string
	Source string
	Module hal.ShaderModule
}

// ShaderHandle refers to a Shader in a ShaderPool.
type ShaderHandle = cache.Handle[*Shader]

// ShaderPool deduplicates shader modules by ShaderDesc.
type ShaderPool struct {
	pool *cache.Pool[ShaderDesc, *Shader]
}

// NewShaderPool creates an empty shader pool.
func NewShaderPool() *ShaderPool {
	return &ShaderPool{pool: cache.New[ShaderDesc, *Shader]("shaders")}
}

// GetOrCreate returns the handle for desc, reading the source through src
// and compiling it with dev on first use. A missing source is returned as
// *assets.NotFoundError, a compile failure as *device.CreationError.
func (p *ShaderPool) GetOrCreate(dev device.Device, src assets.Source, desc ShaderDesc) (ShaderHandle, error) {
	return p.pool.GetOrCreate(desc, func(d ShaderDesc) (*Shader, error) {
		text, err := src.ReadSource(d.Source)
		if err != nil {
			return nil, err
		}
		module, err := dev.CompileShader(d.Label, text)
		if err != nil {
			return nil, err
		}
		return &Shader{Label: d.Label, Source: d.Source, Module: module}, nil
	})
}

// Get returns the shader for h. It panics if h was not issued by p.
func (p *ShaderPool) Get(h ShaderHandle) *Shader {
	return p.pool.Get(h)
}

// Lookup returns the handle for desc if the shader already exists.
func (p *ShaderPool) Lookup(desc ShaderDesc) (ShaderHandle, bool) {
	return p.pool.Lookup(desc)
}

// Len returns the number of shaders.
func (p *ShaderPool) Len() int { return p.pool.Len() }

// Stats returns the pool counters.
func (p *ShaderPool) Stats() cache.Stats { return p.pool.Stats() }
