package playground

import (
	"errors"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/halli2/playground/assets"
	"github.com/halli2/playground/device"
	"github.com/halli2/playground/resources"
)

// DefaultFormat is the color target format used when neither WithFormat nor
// a device provider supplies one.
const DefaultFormat = gputypes.TextureFormatBGRA8Unorm

// Context is the render context handed to renderers. It owns the resource
// pools and carries the device and asset source they are created with.
//
// A Context is created once per device and closed when rendering ends.
// Closing it destroys every pooled object.
type Context struct {
	dev    device.Device
	queue  hal.Queue
	assets assets.Source
	format gputypes.TextureFormat
	pools  *resources.Pools

	onClose   []func()
	closeOnce sync.Once
}

// NewContext creates a Context over an existing device.
//
// Example:
//
//	opened, err := backend.Default()
//	if err != nil {
//	    return err
//	}
//	defer opened.Close()
//
//	dev, _ := device.NewHAL(opened.Device)
//	ctx, err := playground.NewContext(dev, playground.WithQueue(opened.Queue))
//	if err != nil {
//	    return err
//	}
//	defer ctx.Close()
func NewContext(dev device.Device, opts ...Option) (*Context, error) {
	if dev == nil {
		return nil, device.ErrNilDevice
	}
	o := contextOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return newContext(dev, o), nil
}

// NewContextFromHAL wraps a HAL device in a device.HALDevice, applying
// WithHALOptions, and creates a Context over it.
func NewContextFromHAL(raw hal.Device, opts ...Option) (*Context, error) {
	o := contextOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	dev, err := device.NewHAL(raw, o.halOptions...)
	if err != nil {
		return nil, err
	}
	return newContext(dev, o), nil
}

func newContext(dev device.Device, o contextOptions) *Context {
	src := o.assets
	if src == nil {
		src = defaultAssets()
	}
	format := o.format
	if format == gputypes.TextureFormatUndefined {
		format = DefaultFormat
	}

	Logger().Info("playground: context created", "format", format)
	return &Context{
		dev:     dev,
		queue:   o.queue,
		assets:  src,
		format:  format,
		pools:   resources.NewPools(),
		onClose: o.onClose,
	}
}

// defaultAssets returns the discovered asset directory backed by the
// built-in shaders, or the built-in shaders alone.
func defaultAssets() assets.Source {
	dir, err := assets.Discover()
	if err != nil {
		if errors.Is(err, assets.ErrNoAssetDir) {
			Logger().Warn("playground: no asset directory, using built-in assets")
		} else {
			Logger().Warn("playground: asset discovery failed, using built-in assets", "err", err)
		}
		return assets.Builtin()
	}
	Logger().Debug("playground: asset directory found", "dir", dir.Dir())
	return assets.Chain{dir, assets.Builtin()}
}

// Device returns the device objects are created with.
func (c *Context) Device() device.Device { return c.dev }

// Queue returns the queue set with WithQueue or taken from the device
// provider. It may be nil.
func (c *Context) Queue() hal.Queue { return c.queue }

// Assets returns the asset source shaders are read from.
func (c *Context) Assets() assets.Source { return c.assets }

// Format returns the default color target format.
func (c *Context) Format() gputypes.TextureFormat { return c.format }

// Pools returns the resource pools.
func (c *Context) Pools() *resources.Pools { return c.pools }

// ResolveRenderPipeline resolves req through the context pools with the
// context device and assets.
func (c *Context) ResolveRenderPipeline(req resources.PipelineRequest) (resources.RenderPipelineHandle, error) {
	if req.Format == gputypes.TextureFormatUndefined {
		req.Format = c.format
	}
	return c.pools.ResolveRenderPipeline(c.dev, c.assets, req)
}

// Close releases every pooled object and then runs the WithOnClose
// functions. It is safe to call more than once.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		c.pools.Release(c.dev)
		for _, fn := range slices.Backward(c.onClose) {
			fn()
		}
		Logger().Info("playground: context closed")
	})
}
