package playground

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoHAL is returned by NewContextFromProvider when the provider does not
// expose wgpu HAL objects.
var ErrNoHAL = errors.New("playground: device provider does not expose HAL types")

// DeviceHandle is the interface a host application implements to share its
// GPU device. It is an alias for gpucontext.DeviceProvider.
//
// The pools create objects through the HAL, so the provider must also
// implement
//
//	HalDevice() any // returns hal.Device
//	HalQueue() any  // returns hal.Queue
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is implemented by providers that expose wgpu HAL objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewContextFromProvider creates a Context on the device of a host
// application. The surface format of the provider becomes the default
// target format unless WithFormat is given. The device stays owned by the
// provider; Close only releases pooled objects.
func NewContextFromProvider(provider DeviceHandle, opts ...Option) (*Context, error) {
	if provider == nil {
		return nil, ErrNoHAL
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	raw, ok := hp.HalDevice().(hal.Device)
	if !ok || raw == nil {
		return nil, ErrNoHAL
	}

	pre := make([]Option, 0, 2)
	if queue, ok := hp.HalQueue().(hal.Queue); ok && queue != nil {
		pre = append(pre, WithQueue(queue))
	}
	if format := provider.SurfaceFormat(); format != gputypes.TextureFormatUndefined {
		pre = append(pre, WithFormat(format))
	}
	return NewContextFromHAL(raw, append(pre, opts...)...)
}
