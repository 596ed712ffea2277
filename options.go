package playground

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/halli2/playground/assets"
	"github.com/halli2/playground/device"
)

// Option configures a Context during creation.
//
// Example:
//
//	ctx, err := playground.NewContext(dev,
//	    playground.WithAssets(assets.Builtin()),
//	    playground.WithFormat(gputypes.TextureFormatRGBA8Unorm),
//	)
type Option func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	assets     assets.Source
	queue      hal.Queue
	format     gputypes.TextureFormat
	halOptions []device.Option
	onClose    []func()
}

// WithAssets sets the asset source shaders are read from.
// By default the asset directory is discovered next to the executable and
// backed by the built-in shaders.
func WithAssets(src assets.Source) Option {
	return func(o *contextOptions) {
		o.assets = src
	}
}

// WithQueue sets the queue returned by Context.Queue.
func WithQueue(q hal.Queue) Option {
	return func(o *contextOptions) {
		o.queue = q
	}
}

// WithFormat sets the default color target format. It overrides the
// surface format of a device provider.
func WithFormat(format gputypes.TextureFormat) Option {
	return func(o *contextOptions) {
		o.format = format
	}
}

// WithHALOptions passes options to the HALDevice that NewContextFromProvider
// or NewContextFromHAL create. NewContext ignores them.
func WithHALOptions(opts ...device.Option) Option {
	return func(o *contextOptions) {
		o.halOptions = append(o.halOptions, opts...)
	}
}

// WithOnClose registers fn to run at the end of Context.Close, after the
// pools are released. Functions run in reverse registration order.
//
// Example:
//
//	opened, _ := backend.Default()
//	ctx, _ := playground.NewContextFromHAL(opened.Device,
//	    playground.WithQueue(opened.Queue),
//	    playground.WithOnClose(opened.Close),
//	)
func WithOnClose(fn func()) Option {
	return func(o *contextOptions) {
		o.onClose = append(o.onClose, fn)
	}
}
