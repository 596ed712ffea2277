// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/halli2/playground/device"
)

var formats = map[string]gputypes.TextureFormat{
	"bgra8unorm":      gputypes.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb": gputypes.TextureFormatBGRA8UnormSrgb,
	"rgba8unorm":      gputypes.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb": gputypes.TextureFormatRGBA8UnormSrgb,
	"r8unorm":         gputypes.TextureFormatR8Unorm,
}

// ParseFormat parses a WebGPU texture format name such as "bgra8unorm".
func ParseFormat(name string) (gputypes.TextureFormat, error) {
	if f, ok := formats[strings.ToLower(name)]; ok {
		return f, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("%w: unknown format %q", ErrInvalid, name)
}

var kinds = map[string]device.BindingKind{
	"uniform":           device.BindingUniform,
	"storage":           device.BindingStorage,
	"read-only-storage": device.BindingReadOnlyStorage,
	"sampler":           device.BindingSampler,
	"texture":           device.BindingTexture,
}

var stages = map[string]device.Stages{
	"vertex":   device.StageVertex,
	"fragment": device.StageFragment,
	"compute":  device.StageCompute,
}

// Validate checks names, references, kinds, stages and formats. All
// problems are reported together; each matches ErrInvalid.
func (m *Manifest) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	shaders := make(map[string]bool, len(m.Shaders))
	for i, s := range m.Shaders {
		switch {
		case s.Name == "":
			fail("shader %d: missing name", i)
		case shaders[s.Name]:
			fail("shader %q: duplicate name", s.Name)
		}
		shaders[s.Name] = true
		if s.Source == "" {
			fail("shader %q: missing source", s.Name)
		}
	}

	layouts := make(map[string]bool, len(m.Layouts))
	for i, l := range m.Layouts {
		switch {
		case l.Name == "":
			fail("layout %d: missing name", i)
		case layouts[l.Name]:
			fail("layout %q: duplicate name", l.Name)
		}
		layouts[l.Name] = true
		if _, err := l.Shape(); err != nil {
			fail("layout %q: %v", l.Name, err)
		}
	}

	pipelines := make(map[string]bool, len(m.Pipelines))
	for i, p := range m.Pipelines {
		switch {
		case p.Name == "":
			fail("pipeline %d: missing name", i)
		case pipelines[p.Name]:
			fail("pipeline %q: duplicate name", p.Name)
		}
		pipelines[p.Name] = true

		if !shaders[p.Vertex] {
			fail("pipeline %q: unknown vertex shader %q", p.Name, p.Vertex)
		}
		if !shaders[p.Fragment] {
			fail("pipeline %q: unknown fragment shader %q", p.Name, p.Fragment)
		}
		if !layouts[p.Layout] {
			fail("pipeline %q: unknown layout %q", p.Name, p.Layout)
		}
		if p.Format != "" {
			if _, ok := formats[strings.ToLower(p.Format)]; !ok {
				fail("pipeline %q: unknown format %q", p.Name, p.Format)
			}
		}
	}

	return errors.Join(errs...)
}

// Shape converts the layout to a device.LayoutShape.
func (l Layout) Shape() (device.LayoutShape, error) {
	groups := make([][]device.Binding, len(l.Groups))
	for gi, g := range l.Groups {
		for _, b := range g.Bindings {
			kind, ok := kinds[b.Kind]
			if !ok {
				return device.LayoutShape{}, fmt.Errorf("group %d binding %d: unknown kind %q", gi, b.Binding, b.Kind)
			}
			var st device.Stages
			for _, s := range b.Stages {
				bit, ok := stages[s]
				if !ok {
					return device.LayoutShape{}, fmt.Errorf("group %d binding %d: unknown stage %q", gi, b.Binding, s)
				}
				st |= bit
			}
			groups[gi] = append(groups[gi], device.Binding{Binding: b.Binding, Stages: st, Kind: kind})
		}
	}

	shape := device.NewLayoutShape(groups...)
	if err := shape.Validate(); err != nil {
		return device.LayoutShape{}, err
	}
	return shape, nil
}
