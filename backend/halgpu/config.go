// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	harness "github.com/gogpu/gg-harness"
)

// Negotiation errors. CreateSurface reports them as an unavailable backend.
var (
	ErrNoBackend       = errors.New("halgpu: HAL backend not registered")
	ErrNoAdapter       = errors.New("halgpu: no GPU adapters found")
	ErrNoHardware      = errors.New("halgpu: no hardware adapter")
	ErrShaderToolchain = errors.New("halgpu: shader toolchain unavailable")
	ErrContent         = errors.New("halgpu: unsupported content")
	ErrSurfaceTooBig   = errors.New("halgpu: surface exceeds texture limits")
)

// maxTextureDimension is the WebGPU default for 2D textures.
const maxTextureDimension = 8192

// checkWGSL is compiled once per process to check the shader toolchain.
const checkWGSL = `
@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

var (
	checkOnce sync.Once
	checkErr  error
)

// checkShaders compiles checkWGSL with naga, caching the result.
func checkShaders() error {
	checkOnce.Do(func() {
		spirv, err := naga.Compile(checkWGSL)
		switch {
		case err != nil:
			checkErr = fmt.Errorf("%w: %w", ErrShaderToolchain, err)
		case len(spirv) == 0 || len(spirv)%4 != 0:
			checkErr = fmt.Errorf("%w: malformed SPIR-V (%d bytes)", ErrShaderToolchain, len(spirv))
		}
	})
	return checkErr
}

// pixelConfig is the negotiated surface configuration. It is reference
// counted: negotiation holds one reference until the native handle takes
// its own, and the handle drops it when freed.
type pixelConfig struct {
	format   gputypes.TextureFormat
	samples  uint32
	alpha    bool
	hardware bool
	adapter  string

	refs  atomic.Int32
	frees atomic.Int32
}

func newPixelConfig() *pixelConfig {
	c := &pixelConfig{format: gputypes.TextureFormatBGRA8Unorm}
	c.refs.Store(1)
	return c
}

func (c *pixelConfig) retain() *pixelConfig {
	c.refs.Add(1)
	return c
}

func (c *pixelConfig) release() {
	switch n := c.refs.Add(-1); {
	case n == 0:
		c.frees.Add(1)
		logger().Debug("halgpu: pixel config released", "adapter", c.adapter)
	case n < 0:
		logger().Warn("halgpu: pixel config over-released", "refs", n)
	}
}

// InstanceCreator is satisfied by registered HAL backends and hal/noop.
type InstanceCreator interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// creator resolves the configured HAL backend.
func (a *Adapter) creator() (InstanceCreator, error) {
	if a.opts.API != nil {
		return a.opts.API, nil
	}
	switch a.opts.Backend {
	case "", "vulkan":
		backend, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("%w: vulkan", ErrNoBackend)
		}
		return backend, nil
	case "noop":
		return &noop.API{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoBackend, a.opts.Backend)
	}
}

// negotiation is the outcome of a successful negotiate call.
type negotiation struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	cfg      *pixelConfig
}

// negotiate selects an adapter and opens a logical device for req.
// On error nothing stays allocated.
func (a *Adapter) negotiate(req harness.SurfaceRequest) (*negotiation, error) {
	if req.Content != harness.ContentColor && req.Content != harness.ContentColorAlpha {
		return nil, fmt.Errorf("%w: %v", ErrContent, req.Content)
	}
	w, h := req.Size()
	if w > maxTextureDimension || h > maxTextureDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurfaceTooBig, w, h)
	}
	if err := checkShaders(); err != nil {
		return nil, err
	}

	creator, err := a.creator()
	if err != nil {
		return nil, err
	}

	instance, err := creator.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	hardware := selected != nil
	if selected == nil {
		if a.opts.RequireHardware {
			instance.Destroy()
			return nil, ErrNoHardware
		}
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("halgpu: open device: %w", err)
	}

	cfg := newPixelConfig()
	cfg.alpha = req.Content.HasAlpha()
	cfg.hardware = hardware
	cfg.adapter = selected.Info.Name
	cfg.samples = a.opts.Samples
	if req.Mode == harness.ModePerf || cfg.samples == 0 {
		cfg.samples = 1
	}
	return &negotiation{instance: instance, device: openDev.Device, queue: openDev.Queue, cfg: cfg}, nil
}
