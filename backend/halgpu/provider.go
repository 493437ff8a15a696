// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gg-harness/device"
)

// GPU exposes the HAL objects behind a hal device. It implements
// gpucontext.DeviceProvider, so GPU code from the gogpu ecosystem can share
// the harness device, and the HalDevice/HalQueue accessors used by gg
// accelerators.
type GPU struct {
	ctx *gpuContext
}

var _ gpucontext.DeviceProvider = (*GPU)(nil)

// DeviceOf returns the GPU of a hal device, or a *device.TypeMismatchError
// for devices of other families.
func DeviceOf(d *device.Device) (*GPU, error) {
	return device.Native[*GPU](d, Family)
}

// HalDevice returns the hal.Device.
func (g *GPU) HalDevice() any { return g.ctx.device }

// HalQueue returns the hal.Queue.
func (g *GPU) HalQueue() any { return g.ctx.queue }

// AdapterName returns the name of the negotiated adapter.
func (g *GPU) AdapterName() string { return g.ctx.cfg.adapter }

// Hardware reports whether the adapter is a discrete or integrated GPU.
func (g *GPU) Hardware() bool { return g.ctx.cfg.hardware }

// Samples returns the negotiated multisample count.
func (g *GPU) Samples() uint32 { return g.ctx.cfg.samples }

// Device returns a gpucontext view of the logical device.
func (g *GPU) Device() gpucontext.Device { return providerDevice{g.ctx} }

// Queue returns a gpucontext view of the queue.
func (g *GPU) Queue() gpucontext.Queue { return providerQueue{} }

// Adapter returns a gpucontext view of the adapter.
func (g *GPU) Adapter() gpucontext.Adapter { return providerAdapter{} }

// SurfaceFormat returns the texture format of surfaces.
func (g *GPU) SurfaceFormat() gputypes.TextureFormat { return g.ctx.cfg.format }

// providerDevice adapts a gpuContext to gpucontext.Device. The device
// lifetime belongs to the harness, so Destroy does nothing.
type providerDevice struct{ ctx *gpuContext }

func (d providerDevice) Poll(wait bool) {
	if !wait {
		return
	}
	if err := d.ctx.wait(); err != nil {
		logger().Warn("halgpu: poll", "err", err)
	}
}

func (providerDevice) Destroy() {}

type providerQueue struct{}

type providerAdapter struct{}
