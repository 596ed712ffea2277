// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package manifest declares shaders, pipeline layouts and render pipelines
// in a TOML file and creates them in the resource pools.
//
// A manifest names every object; pipelines refer to shaders and layouts by
// name:
//
//	[[shader]]
//	name = "triangle"
//	source = "shaders/triangle.wgsl"
//
//	[[layout]]
//	name = "globals"
//	  [[layout.group]]
//	    [[layout.group.binding]]
//	    binding = 0
//	    kind = "uniform"
//	    stages = ["vertex", "fragment"]
//
//	[[pipeline]]
//	name = "triangle"
//	vertex = "triangle"
//	fragment = "triangle"
//	layout = "globals"
//	format = "bgra8unorm"
//
// Apply creates the shaders and layouts first and then the pipelines
// composed from their handles.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid matches every validation error.
var ErrInvalid = errors.New("manifest: invalid")

// Manifest is a decoded pipeline manifest.
type Manifest struct {
	Shaders   []Shader   `toml:"shader"`
	Layouts   []Layout   `toml:"layout"`
	Pipelines []Pipeline `toml:"pipeline"`
}

// Shader declares a shader module.
type Shader struct {
	Name   string `toml:"name"`
	Source string `toml:"source"`
}

// Layout declares a pipeline layout. A layout without groups is empty.
type Layout struct {
	Name   string  `toml:"name"`
	Groups []Group `toml:"group"`
}

// Group declares one bind group of a layout.
type Group struct {
	Bindings []Binding `toml:"binding"`
}

// Binding declares one slot of a bind group.
type Binding struct {
	Binding uint32   `toml:"binding"`
	Kind    string   `toml:"kind"`
	Stages  []string `toml:"stages"`
}

// Pipeline declares a render pipeline.
type Pipeline struct {
	Name string `toml:"name"`

	Vertex        string `toml:"vertex"`
	VertexEntry   string `toml:"vertex_entry"`
	Fragment      string `toml:"fragment"`
	FragmentEntry string `toml:"fragment_entry"`
	Layout        string `toml:"layout"`

	// Format is optional; Apply falls back to its default format.
	Format string `toml:"format"`
}

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&m); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
