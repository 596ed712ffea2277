// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resources

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/halli2/playground/assets"
	"github.com/halli2/playground/backend/noop"
	"github.com/halli2/playground/cache"
	"github.com/halli2/playground/device"
)

const triangleWGSL = `
@vertex
fn vs_main(@builtin(vertex_index) in_vertex_index: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(in_vertex_index) - 1);
    let y = f32(i32(in_vertex_index & 1u) * 2 - 1);
    return vec4<f32>(x, y, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

const format = gputypes.TextureFormatBGRA8Unorm

// countingDevice wraps a noop HALDevice, counting creations and releases
// and optionally failing them.
type countingDevice struct {
	*device.HALDevice

	shaders, layouts, pipelines int
	failShader, failLayout      error
	failPipeline                error
	released                    []string
}

func (d *countingDevice) CompileShader(label, source string) (hal.ShaderModule, error) {
	d.shaders++
	if d.failShader != nil {
		return nil, d.failShader
	}
	return d.HALDevice.CompileShader(label, source)
}

func (d *countingDevice) CreatePipelineLayout(label string, shape device.LayoutShape) (*device.PipelineLayout, error) {
	d.layouts++
	if d.failLayout != nil {
		return nil, d.failLayout
	}
	return d.HALDevice.CreatePipelineLayout(label, shape)
}

func (d *countingDevice) CreateRenderPipeline(desc *device.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.pipelines++
	if d.failPipeline != nil {
		return nil, d.failPipeline
	}
	return d.HALDevice.CreateRenderPipeline(desc)
}

func (d *countingDevice) ReleaseShader(m hal.ShaderModule) {
	d.released = append(d.released, "shader")
	d.HALDevice.ReleaseShader(m)
}

func (d *countingDevice) ReleasePipelineLayout(l *device.PipelineLayout) {
	d.released = append(d.released, "layout")
	d.HALDevice.ReleasePipelineLayout(l)
}

func (d *countingDevice) ReleaseRenderPipeline(p hal.RenderPipeline) {
	d.released = append(d.released, "pipeline")
	d.HALDevice.ReleaseRenderPipeline(p)
}

func newCountingDevice(t *testing.T) *countingDevice {
	t.Helper()
	opened, err := noop.Open()
	if err != nil {
		t.Fatalf("noop.Open failed: %v", err)
	}
	t.Cleanup(opened.Close)

	hd, err := device.NewHAL(opened.Device)
	if err != nil {
		t.Fatalf("NewHAL failed: %v", err)
	}
	return &countingDevice{HALDevice: hd}
}

func testSource() assets.Source {
	return assets.NewFS(fstest.MapFS{
		"triangle.wgsl": {Data: []byte(triangleWGSL)},
		"x.wgsl":        {Data: []byte(triangleWGSL)},
		"broken.wgsl":   {Data: []byte("fn broken( {")},
	})
}

func TestShaderPoolDedup(t *testing.T) {
	dev := newCountingDevice(t)
	pool := NewShaderPool()
	desc := ShaderDesc{Label: "tri", Source: "triangle.wgsl"}

	h1, err := pool.GetOrCreate(dev, testSource(), desc)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	h2, err := pool.GetOrCreate(dev, testSource(), desc)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}

	if h1 != h2 {
		t.Errorf("handles differ: %v vs %v", h1, h2)
	}
	if dev.shaders != 1 {
		t.Errorf("expected one compilation, got %d", dev.shaders)
	}
	s := pool.Get(h1)
	if s.Label != "tri" || s.Source != "triangle.wgsl" || s.Module == nil {
		t.Errorf("unexpected shader %+v", s)
	}
}

func TestShaderPoolLabelDiscrimination(t *testing.T) {
	dev := newCountingDevice(t)
	pool := NewShaderPool()

	a, err := pool.GetOrCreate(dev, testSource(), ShaderDesc{Label: "a", Source: "x.wgsl"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := pool.GetOrCreate(dev, testSource(), ShaderDesc{Label: "b", Source: "x.wgsl"})
	if err != nil {
		t.Fatal(err)
	}

	if a == b {
		t.Fatalf("expected distinct handles, both are %v", a)
	}
	if pool.Get(a) == pool.Get(b) {
		t.Error("expected distinct shaders")
	}
	if dev.shaders != 2 {
		t.Errorf("expected 2 compilations, got %d", dev.shaders)
	}
}

func TestShaderPoolErrors(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		wantNotFound bool
	}{
		{"missing asset", "missing.wgsl", true},
		{"compile error", "broken.wgsl", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newCountingDevice(t)
			pool := NewShaderPool()

			h, err := pool.GetOrCreate(dev, testSource(), ShaderDesc{Label: "s", Source: tt.source})
			if err == nil {
				t.Fatal("expected error")
			}
			if !h.IsZero() {
				t.Errorf("expected zero handle, got %v", h)
			}
			if got := errors.Is(err, assets.ErrNotFound); got != tt.wantNotFound {
				t.Errorf("errors.Is(err, assets.ErrNotFound) = %v, want %v (err: %v)", got, tt.wantNotFound, err)
			}
			if got := errors.Is(err, device.ErrCreation); got == tt.wantNotFound {
				t.Errorf("errors.Is(err, device.ErrCreation) = %v, want %v (err: %v)", got, !tt.wantNotFound, err)
			}
			if tt.wantNotFound && dev.shaders != 0 {
				t.Error("device must not be asked to compile a missing asset")
			}
			if pool.Len() != 0 {
				t.Errorf("expected empty pool, got %d", pool.Len())
			}
		})
	}
}

func TestPipelineLayoutPool(t *testing.T) {
	dev := newCountingDevice(t)
	pool := NewPipelineLayoutPool()

	shape := device.NewLayoutShape([]device.Binding{
		{Binding: 0, Stages: device.StageVertex | device.StageFragment, Kind: device.BindingUniform},
		{Binding: 1, Stages: device.StageFragment, Kind: device.BindingTexture},
	})
	reordered := device.NewLayoutShape([]device.Binding{
		{Binding: 1, Stages: device.StageFragment, Kind: device.BindingTexture},
		{Binding: 0, Stages: device.StageVertex | device.StageFragment, Kind: device.BindingUniform},
	})

	h1, err := pool.GetOrCreate(dev, PipelineLayoutDesc{Label: "globals", Shape: shape})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	h2, err := pool.GetOrCreate(dev, PipelineLayoutDesc{Label: "globals", Shape: reordered})
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("equal shapes produced distinct handles %v and %v", h1, h2)
	}

	h3, err := pool.GetOrCreate(dev, PipelineLayoutDesc{Label: "empty"})
	if err != nil {
		t.Fatal(err)
	}
	if h3 == h1 {
		t.Error("different layouts share a handle")
	}
	if dev.layouts != 2 {
		t.Errorf("expected 2 layout creations, got %d", dev.layouts)
	}
	if got := pool.Get(h1); got.Label != "globals" || len(got.BindGroupLayouts) != 1 {
		t.Errorf("unexpected layout %+v", got)
	}
}

func TestPipelineLayoutPoolMalformedShape(t *testing.T) {
	dev := newCountingDevice(t)
	pool := NewPipelineLayoutPool()

	bad := device.NewLayoutShape([]device.Binding{
		{Binding: 1, Stages: device.StageFragment, Kind: device.BindingTexture},
		{Binding: 1, Stages: device.StageFragment, Kind: device.BindingSampler},
	})
	_, err := pool.GetOrCreate(dev, PipelineLayoutDesc{Label: "bad", Shape: bad})
	if !errors.Is(err, device.ErrCreation) {
		t.Fatalf("expected creation error, got %v", err)
	}
	var ce *device.CreationError
	if !errors.As(err, &ce) || ce.Kind != device.KindPipelineLayout {
		t.Errorf("expected pipeline layout CreationError, got %v", err)
	}
}

// TestConcreteScenario follows the tri / p1 walkthrough: shaders and
// pipelines are created once and re-requests return the same handles.
func TestConcreteScenario(t *testing.T) {
	dev := newCountingDevice(t)
	pools := NewPools()
	src := testSource()

	h1, err := pools.Shader().GetOrCreate(dev, src, ShaderDesc{Label: "tri", Source: "triangle.wgsl"})
	if err != nil {
		t.Fatal(err)
	}
	again, err := pools.Shader().GetOrCreate(dev, src, ShaderDesc{Label: "tri", Source: "triangle.wgsl"})
	if err != nil {
		t.Fatal(err)
	}
	if again != h1 {
		t.Fatalf("re-request returned %v, want %v", again, h1)
	}

	l1, err := pools.PipelineLayout().GetOrCreate(dev, PipelineLayoutDesc{Label: "L1"})
	if err != nil {
		t.Fatal(err)
	}

	desc := RenderPipelineDesc{
		Label:          "p1",
		VertexShader:   h1,
		FragmentShader: h1,
		Layout:         l1,
		Format:         format,
	}
	p1, err := pools.RenderPipeline().GetOrCreate(dev, desc, pools.Shader(), pools.PipelineLayout())
	if err != nil {
		t.Fatalf("pipeline creation failed: %v", err)
	}
	p1Again, err := pools.RenderPipeline().GetOrCreate(dev, desc, pools.Shader(), pools.PipelineLayout())
	if err != nil {
		t.Fatal(err)
	}

	if p1Again != p1 {
		t.Errorf("re-request returned %v, want %v", p1Again, p1)
	}
	if dev.shaders != 1 || dev.pipelines != 1 {
		t.Errorf("expected 1 shader and 1 pipeline creation, got %d and %d", dev.shaders, dev.pipelines)
	}

	got := pools.RenderPipeline().Get(p1)
	if got.Label != "p1" || got.Raw == nil {
		t.Errorf("unexpected pipeline %+v", got)
	}
	if got.Desc.VertexEntryPoint != device.DefaultVertexEntryPoint ||
		got.Desc.FragmentEntryPoint != device.DefaultFragmentEntryPoint {
		t.Errorf("entry points not normalized: %+v", got.Desc)
	}
}

func TestRenderPipelineEntryPointNormalization(t *testing.T) {
	dev := newCountingDevice(t)
	pools := NewPools()

	vs, err := pools.Shader().GetOrCreate(dev, testSource(), ShaderDesc{Label: "tri", Source: "triangle.wgsl"})
	if err != nil {
		t.Fatal(err)
	}
	layout, err := pools.PipelineLayout().GetOrCreate(dev, PipelineLayoutDesc{Label: "empty"})
	if err != nil {
		t.Fatal(err)
	}

	implicit := RenderPipelineDesc{Label: "p", VertexShader: vs, FragmentShader: vs, Layout: layout, Format: format}
	explicit := implicit
	explicit.VertexEntryPoint = "vs_main"
	explicit.FragmentEntryPoint = "fs_main"

	a, err := pools.RenderPipeline().GetOrCreate(dev, implicit, pools.Shader(), pools.PipelineLayout())
	if err != nil {
		t.Fatal(err)
	}
	b, err := pools.RenderPipeline().GetOrCreate(dev, explicit, pools.Shader(), pools.PipelineLayout())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("default and explicit entry points produced %v and %v", a, b)
	}
	if h, ok := pools.RenderPipeline().Lookup(implicit); !ok || h != a {
		t.Errorf("Lookup(implicit) = %v, %v; want %v, true", h, ok, a)
	}
}

func TestRenderPipelineFormatDiscrimination(t *testing.T) {
	dev := newCountingDevice(t)
	pools := NewPools()

	req := PipelineRequest{
		Label:    "tri",
		Vertex:   ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Fragment: ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Layout:   PipelineLayoutDesc{Label: "empty"},
		Format:   gputypes.TextureFormatBGRA8Unorm,
	}
	bgra, err := pools.ResolveRenderPipeline(dev, testSource(), req)
	if err != nil {
		t.Fatal(err)
	}
	req.Format = gputypes.TextureFormatRGBA8Unorm
	rgba, err := pools.ResolveRenderPipeline(dev, testSource(), req)
	if err != nil {
		t.Fatal(err)
	}

	if bgra == rgba {
		t.Error("pipelines for different formats share a handle")
	}
	if dev.shaders != 1 || dev.layouts != 1 || dev.pipelines != 2 {
		t.Errorf("creations: shaders=%d layouts=%d pipelines=%d, want 1/1/2",
			dev.shaders, dev.layouts, dev.pipelines)
	}
}

// TestDependencySharing builds two pipelines that share a shader; the
// shader must be compiled once and referenced by both.
func TestDependencySharing(t *testing.T) {
	dev := newCountingDevice(t)
	pools := NewPools()
	src := testSource()

	first, err := pools.ResolveRenderPipeline(dev, src, PipelineRequest{
		Label:    "first",
		Vertex:   ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Fragment: ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Layout:   PipelineLayoutDesc{Label: "empty"},
		Format:   format,
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := pools.ResolveRenderPipeline(dev, src, PipelineRequest{
		Label:    "second",
		Vertex:   ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Fragment: ShaderDesc{Label: "other", Source: "x.wgsl"},
		Layout:   PipelineLayoutDesc{Label: "empty"},
		Format:   format,
	})
	if err != nil {
		t.Fatal(err)
	}

	a := pools.RenderPipeline().Get(first)
	b := pools.RenderPipeline().Get(second)
	if a.Desc.VertexShader != b.Desc.VertexShader {
		t.Errorf("vertex shader not shared: %v vs %v", a.Desc.VertexShader, b.Desc.VertexShader)
	}
	if a.Desc.Layout != b.Desc.Layout {
		t.Errorf("layout not shared: %v vs %v", a.Desc.Layout, b.Desc.Layout)
	}
	if dev.shaders != 2 {
		t.Errorf("expected 2 shader compilations, got %d", dev.shaders)
	}
	if pools.Shader().Len() != 2 || pools.PipelineLayout().Len() != 1 || pools.RenderPipeline().Len() != 2 {
		t.Errorf("unexpected pool sizes %+v", pools.Stats())
	}
}

func TestRenderPipelineFailureDoesNotPoison(t *testing.T) {
	dev := newCountingDevice(t)
	pools := NewPools()
	boom := errors.New("boom")
	dev.failPipeline = boom

	req := PipelineRequest{
		Label:    "p",
		Vertex:   ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Fragment: ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Layout:   PipelineLayoutDesc{Label: "empty"},
		Format:   format,
	}
	if _, err := pools.ResolveRenderPipeline(dev, testSource(), req); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if pools.RenderPipeline().Len() != 0 {
		t.Errorf("failed pipeline was stored")
	}
	if pools.Shader().Len() != 1 || pools.PipelineLayout().Len() != 1 {
		t.Error("dependencies created before the failure should stay pooled")
	}

	dev.failPipeline = nil
	h, err := pools.ResolveRenderPipeline(dev, testSource(), req)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if dev.pipelines != 2 {
		t.Errorf("expected the retry to create again, got %d creations", dev.pipelines)
	}
	if dev.shaders != 1 {
		t.Errorf("retry recompiled the shader: %d compilations", dev.shaders)
	}
	if pools.RenderPipeline().Get(h).Label != "p" {
		t.Error("retry stored the wrong pipeline")
	}
}

func TestResolveRenderPipelineStopsAtFirstError(t *testing.T) {
	dev := newCountingDevice(t)
	pools := NewPools()

	_, err := pools.ResolveRenderPipeline(dev, testSource(), PipelineRequest{
		Label:    "p",
		Vertex:   ShaderDesc{Label: "vs", Source: "missing.wgsl"},
		Fragment: ShaderDesc{Label: "fs", Source: "triangle.wgsl"},
		Layout:   PipelineLayoutDesc{Label: "empty"},
		Format:   format,
	})
	var nf *assets.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "missing.wgsl" {
		t.Fatalf("expected NotFoundError for missing.wgsl, got %v", err)
	}
	if dev.shaders != 0 || dev.layouts != 0 || dev.pipelines != 0 {
		t.Errorf("nothing should be created after the first failure: %d/%d/%d",
			dev.shaders, dev.layouts, dev.pipelines)
	}
}

func TestRenderPipelineForeignHandlePanics(t *testing.T) {
	dev := newCountingDevice(t)
	pools := NewPools()
	other := NewPools()

	foreign, err := other.Shader().GetOrCreate(dev, testSource(), ShaderDesc{Label: "tri", Source: "triangle.wgsl"})
	if err != nil {
		t.Fatal(err)
	}
	layout, err := pools.PipelineLayout().GetOrCreate(dev, PipelineLayoutDesc{Label: "empty"})
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, cache.ErrInvalidHandle) {
			t.Fatalf("expected invalid handle panic, got %v", r)
		}
		if pools.RenderPipeline().Len() != 0 {
			t.Error("pipeline stored despite invalid dependency")
		}
	}()
	_, _ = pools.RenderPipeline().GetOrCreate(dev, RenderPipelineDesc{
		Label:          "p",
		VertexShader:   foreign,
		FragmentShader: foreign,
		Layout:         layout,
		Format:         format,
	}, pools.Shader(), pools.PipelineLayout())
}

func TestPoolsStats(t *testing.T) {
	dev := newCountingDevice(t)
	pools := NewPools()
	req := PipelineRequest{
		Label:    "p",
		Vertex:   ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Fragment: ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Layout:   PipelineLayoutDesc{Label: "empty"},
		Format:   format,
	}
	for range 3 {
		if _, err := pools.ResolveRenderPipeline(dev, testSource(), req); err != nil {
			t.Fatal(err)
		}
	}

	s := pools.Stats()
	// The fragment lookup hits the vertex shader on every call.
	if s.Shaders.Entries != 1 || s.Shaders.Misses != 1 || s.Shaders.Hits != 5 {
		t.Errorf("shader stats %+v", s.Shaders)
	}
	if s.PipelineLayouts.Entries != 1 || s.PipelineLayouts.Hits != 2 {
		t.Errorf("layout stats %+v", s.PipelineLayouts)
	}
	if s.RenderPipelines.Entries != 1 || s.RenderPipelines.Hits != 2 {
		t.Errorf("pipeline stats %+v", s.RenderPipelines)
	}
}

func TestPoolsRelease(t *testing.T) {
	dev := newCountingDevice(t)
	pools := NewPools()
	h, err := pools.ResolveRenderPipeline(dev, testSource(), PipelineRequest{
		Label:    "p",
		Vertex:   ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Fragment: ShaderDesc{Label: "tri", Source: "triangle.wgsl"},
		Layout:   PipelineLayoutDesc{Label: "empty"},
		Format:   format,
	})
	if err != nil {
		t.Fatal(err)
	}

	pools.Release(dev)

	want := []string{"pipeline", "layout", "shader"}
	if len(dev.released) != len(want) {
		t.Fatalf("released %v, want %v", dev.released, want)
	}
	for i := range want {
		if dev.released[i] != want[i] {
			t.Errorf("released[%d] = %s, want %s", i, dev.released[i], want[i])
		}
	}

	if pools.Shader().Len() != 0 || pools.PipelineLayout().Len() != 0 || pools.RenderPipeline().Len() != 0 {
		t.Error("pools not empty after Release")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("handle from before Release resolved in the new pool")
		}
	}()
	pools.RenderPipeline().Get(h)
}
