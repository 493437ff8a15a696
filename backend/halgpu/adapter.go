// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"fmt"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/device"
)

// Family is the backend family name of HAL devices.
const Family = "hal"

// Options configure an Adapter.
type Options struct {
	// Backend names the HAL backend: "vulkan" (default) or "noop".
	Backend string

	// API overrides Backend with an explicit instance factory.
	API InstanceCreator

	// RequireHardware rejects adapters that are neither discrete nor
	// integrated GPUs. Otherwise they are only preferred.
	RequireHardware bool

	// Samples is the multisample count in test mode. Zero means one;
	// perf mode always renders single-sampled.
	Samples uint32
}

// Adapter creates native GPU surfaces.
type Adapter struct {
	opts     Options
	platform *Platform
}

// New returns an adapter.
func New(opts Options) *Adapter {
	return &Adapter{opts: opts, platform: NewPlatform()}
}

// Platform returns the platform shared by the adapter's devices.
func (a *Adapter) Platform() *Platform { return a.platform }

type closure struct {
	*harness.Bundle
	cfg *pixelConfig
}

// CreateSurface negotiates an adapter, opens a logical device and creates
// a surface bound to it. It returns (nil, nil) when no usable GPU exists.
func (a *Adapter) CreateSurface(req harness.SurfaceRequest) (harness.Surface, harness.Closure) {
	log := logger()
	n, err := a.negotiate(req)
	if err != nil {
		log.Info("halgpu: backend unavailable", "name", req.Name, "err", err)
		return nil, nil
	}

	ctx := &gpuContext{
		label:    labelFor(req.Name),
		instance: n.instance,
		device:   n.device,
		queue:    n.queue,
		cfg:      n.cfg.retain(),
	}
	h := device.NewHandle(ctx, func(device.Context) { ctx.destroy() })
	h.OnFree(ctx.cfg.release)
	n.cfg.release()

	dev, err := device.New(device.Config{
		Family:      Family,
		Platform:    a.platform,
		Handle:      h,
		ThreadAware: true,
		Native:      &GPU{ctx: ctx},
	})
	if err != nil {
		log.Warn("halgpu: create device", "err", err)
		return nil, nil
	}
	log.Info("halgpu: adapter selected", "adapter", ctx.cfg.adapter, "hardware", ctx.cfg.hardware, "samples", ctx.cfg.samples)

	c := &closure{Bundle: harness.NewBundle(dev, nil), cfg: ctx.cfg}
	w, hgt := req.Size()
	s := newSurface(dev, ctx, req.Content, w, hgt, ctx.cfg.samples)
	c.SetSurface(s)
	if err := s.Status(); err != nil {
		log.Warn("halgpu: surface in error", "name", req.Name, "err", err)
		a.Cleanup(c)
	}
	return s, c
}

// CreateSimilar creates another render texture on the device of s.
func (a *Adapter) CreateSimilar(s harness.Surface, content harness.Content, width, height int) (harness.Surface, error) {
	src, ok := s.(*Surface)
	if !ok {
		return nil, fmt.Errorf("halgpu: %w", harness.ErrForeignSurface)
	}
	if err := src.usable(); err != nil {
		return nil, err
	}
	width, height = max(width, 1), max(height, 1)
	if width > maxTextureDimension || height > maxTextureDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurfaceTooBig, width, height)
	}
	out := newSurface(src.dev, src.ctx, content, width, height, src.samples)
	if err := out.Status(); err != nil {
		_ = out.Close()
		return nil, err
	}
	return out, nil
}

// Synchronize waits until the GPU has finished all work of c.
func (a *Adapter) Synchronize(c harness.Closure) error {
	return c.Device().Sync()
}

// Cleanup tears c down. Calling it again is a no-op.
func (a *Adapter) Cleanup(c harness.Closure) {
	c.Teardown()
}

// Target returns a descriptor for this adapter.
func (a *Adapter) Target(name string, content harness.Content) harness.Target {
	return harness.Target{
		Name:           name,
		Family:         Family,
		Kind:           harness.KindGPU,
		Content:        content,
		MinIDPrecision: 0,
		CreateSurface:  a.CreateSurface,
		CreateSimilar:  a.CreateSimilar,
		Cleanup:        a.Cleanup,
		Synchronize:    a.Synchronize,
		Caps: harness.Caps{
			SimilarSurfaces: true,
			Measurable:      true,
		},
	}
}

func labelFor(name string) string {
	if name == "" {
		return "harness"
	}
	return name
}
