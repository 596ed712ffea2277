// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resources

import (
	"github.com/halli2/playground/cache"
	"github.com/halli2/playground/device"
)

// PipelineLayoutDesc identifies a pipeline layout by label and shape.
type PipelineLayoutDesc struct {
	Label string
	Shape device.LayoutShape
}

// PipelineLayoutHandle refers to a layout in a PipelineLayoutPool.
type PipelineLayoutHandle = cache.Handle[*device.PipelineLayout]

// PipelineLayoutPool deduplicates pipeline layouts by PipelineLayoutDesc.
type PipelineLayoutPool struct {
	pool *cache.Pool[PipelineLayoutDesc, *device.PipelineLayout]
}

// NewPipelineLayoutPool creates an empty pipeline layout pool.
func NewPipelineLayoutPool() *PipelineLayoutPool {
	return &PipelineLayoutPool{pool: cache.New[PipelineLayoutDesc, *device.PipelineLayout]("pipeline layouts")}
}

// GetOrCreate returns the handle for desc, creating the layout on first use.
func (p *PipelineLayoutPool) GetOrCreate(dev device.Device, desc PipelineLayoutDesc) (PipelineLayoutHandle, error) {
	return p.pool.GetOrCreate(desc, func(d PipelineLayoutDesc) (*device.PipelineLayout, error) {
		return dev.CreatePipelineLayout(d.Label, d.Shape)
	})
}

// Get returns the layout for h. It panics if h was not issued by p.
func (p *PipelineLayoutPool) Get(h PipelineLayoutHandle) *device.PipelineLayout {
	return p.pool.Get(h)
}

// Lookup returns the handle for desc if the layout already exists.
func (p *PipelineLayoutPool) Lookup(desc PipelineLayoutDesc) (PipelineLayoutHandle, bool) {
	return p.pool.Lookup(desc)
}

// Len returns the number of layouts.
func (p *PipelineLayoutPool) Len() int { return p.pool.Len() }

// Stats returns the pool counters.
func (p *PipelineLayoutPool) Stats() cache.Stats { return p.pool.Stats() }
