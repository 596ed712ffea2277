// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
)

// MaxBindGroups is the number of bind groups a pipeline layout may have.
// It matches the WebGPU default limit.
const MaxBindGroups = 4

// Stages is a set of shader stages a binding is visible to.
type Stages uint8

// Shader stages.
const (
	StageVertex Stages = 1 << iota
	StageFragment
	StageCompute

	stageAll = StageVertex | StageFragment | StageCompute
)

func (s Stages) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	if s&StageVertex != 0 {
		parts = append(parts, "vertex")
	}
	if s&StageFragment != 0 {
		parts = append(parts, "fragment")
	}
	if s&StageCompute != 0 {
		parts = append(parts, "compute")
	}
	if s&^stageAll != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint8(s&^stageAll)))
	}
	return strings.Join(parts, "|")
}

// BindingKind is the resource type bound at a binding slot.
type BindingKind uint8

// Binding kinds.
const (
	BindingUniform BindingKind = iota + 1
	BindingStorage
	BindingReadOnlyStorage
	BindingSampler
	BindingTexture
)

func (k BindingKind) String() string {
	switch k {
	case BindingUniform:
		return "uniform"
	case BindingStorage:
		return "storage"
	case BindingReadOnlyStorage:
		return "read-only-storage"
	case BindingSampler:
		return "sampler"
	case BindingTexture:
		return "texture"
	default:
		return fmt.Sprintf("BindingKind(%d)", uint8(k))
	}
}

// Binding describes one slot of a bind group.
type Binding struct {
	Binding uint32
	Stages  Stages
	Kind    BindingKind
}

// LayoutShape is the structural part of a pipeline layout: its bind groups
// and their bindings. It is an immutable comparable value, so it can be part
// of a cache key. Two shapes built from the same bindings compare equal
// regardless of the order bindings were listed in within a group.
//
// The zero LayoutShape is the empty layout.
type LayoutShape struct {
	key string
}

// NewLayoutShape builds a shape from bind groups in group index order.
// Shapes are not validated here; invalid shapes fail when the device
// creates the layout.
func NewLayoutShape(groups ...[]Binding) LayoutShape {
	if len(groups) == 0 {
		return LayoutShape{}
	}

	buf := binary.AppendUvarint(nil, uint64(len(groups)))
	for _, g := range groups {
		sorted := slices.Clone(g)
		slices.SortStableFunc(sorted, func(a, b Binding) int {
			switch {
			case a.Binding < b.Binding:
				return -1
			case a.Binding > b.Binding:
				return 1
			}
			return 0
		})

		buf = binary.AppendUvarint(buf, uint64(len(sorted)))
		for _, b := range sorted {
			buf = binary.AppendUvarint(buf, uint64(b.Binding))
			buf = append(buf, byte(b.Stages), byte(b.Kind))
		}
	}
	return LayoutShape{key: string(buf)}
}

// IsEmpty reports whether the shape has no bind groups.
func (s LayoutShape) IsEmpty() bool {
	return s.key == ""
}

var errCorruptShape = errors.New("corrupt layout shape")

// Groups decodes the bind groups of the shape.
func (s LayoutShape) Groups() [][]Binding {
	groups, err := s.decode()
	if err != nil {
		// Shapes are only built by NewLayoutShape.
		panic(err)
	}
	return groups
}

func (s LayoutShape) decode() ([][]Binding, error) {
	if s.key == "" {
		return nil, nil
	}
	buf := []byte(s.key)

	next := func() (uint64, error) {
		v, n := binary.Uvarint(buf)
		if n <= 0 {
			return 0, errCorruptShape
		}
		buf = buf[n:]
		return v, nil
	}

	count, err := next()
	if err != nil {
		return nil, err
	}
	groups := make([][]Binding, 0, count)
	for range count {
		n, err := next()
		if err != nil {
			return nil, err
		}
		group := make([]Binding, 0, n)
		for range n {
			slot, err := next()
			if err != nil {
				return nil, err
			}
			if len(buf) < 2 {
				return nil, errCorruptShape
			}
			group = append(group, Binding{
				Binding: uint32(slot), //nolint:gosec // encoded from uint32
				Stages:  Stages(buf[0]),
				Kind:    BindingKind(buf[1]),
			})
			buf = buf[2:]
		}
		groups = append(groups, group)
	}
	if len(buf) != 0 {
		return nil, errCorruptShape
	}
	return groups, nil
}

// Validate reports whether a device can build a layout from the shape.
func (s LayoutShape) Validate() error {
	groups, err := s.decode()
	if err != nil {
		return err
	}
	if len(groups) > MaxBindGroups {
		return fmt.Errorf("%d bind groups exceed the limit of %d", len(groups), MaxBindGroups)
	}
	for gi, g := range groups {
		for i, b := range g {
			if i > 0 && g[i-1].Binding == b.Binding {
				return fmt.Errorf("group %d: duplicate binding %d", gi, b.Binding)
			}
			if b.Kind < BindingUniform || b.Kind > BindingTexture {
				return fmt.Errorf("group %d binding %d: unknown kind %s", gi, b.Binding, b.Kind)
			}
			if b.Stages == 0 || b.Stages&^stageAll != 0 {
				return fmt.Errorf("group %d binding %d: invalid stages %s", gi, b.Binding, b.Stages)
			}
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (s LayoutShape) String() string {
	groups, err := s.decode()
	if err != nil {
		return "<" + err.Error() + ">"
	}
	if len(groups) == 0 {
		return "[]"
	}
	var sb strings.Builder
	for gi, g := range groups {
		if gi > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('[')
		for i, b := range g {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%d:%s@%s", b.Binding, b.Kind, b.Stages)
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// layoutEntries converts a group to HAL bind group layout entries.
func layoutEntries(group []Binding) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, len(group))
	for i, b := range group {
		entry := gputypes.BindGroupLayoutEntry{Binding: b.Binding}
		if b.Stages&StageVertex != 0 {
			entry.Visibility |= gputypes.ShaderStageVertex
		}
		if b.Stages&StageFragment != 0 {
			entry.Visibility |= gputypes.ShaderStageFragment
		}
		if b.Stages&StageCompute != 0 {
			entry.Visibility |= gputypes.ShaderStageCompute
		}

		switch b.Kind {
		case BindingUniform:
			entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		case BindingStorage:
			entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
		case BindingReadOnlyStorage:
			entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
		case BindingSampler:
			entry.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
		case BindingTexture:
			entry.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
		}
		entries[i] = entry
	}
	return entries
}
