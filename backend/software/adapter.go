// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"fmt"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/device"
)

// Family is the backend family name of software devices.
const Family = "software"

// maxPixels bounds the size of one surface.
const maxPixels = 1 << 28

// ErrSurfaceTooLarge is the status of surfaces over the pixel limit.
var ErrSurfaceTooLarge = errors.New("software: surface too large")

// Adapter creates software surfaces.
type Adapter struct {
	// Workers is the raster pool size per device; 0 means GOMAXPROCS.
	Workers int

	platform *Platform
}

// New returns an adapter with its own platform.
func New(workers int) *Adapter {
	return &Adapter{Workers: workers, platform: NewPlatform()}
}

// Platform returns the platform shared by the adapter's devices.
func (a *Adapter) Platform() *Platform { return a.platform }

type closure struct {
	*harness.Bundle
}

// CreateSurface builds a device with its own raster queue and a surface of
// the requested pixel size. It returns (nil, nil) for content it cannot
// represent.
func (a *Adapter) CreateSurface(req harness.SurfaceRequest) (harness.Surface, harness.Closure) {
	log := harness.Logger()
	if req.Content != harness.ContentColor && req.Content != harness.ContentColorAlpha {
		log.Debug("software: unsupported content", "content", req.Content)
		return nil, nil
	}

	ctx := &cpuContext{label: req.Name, pool: newWorkerPool(a.Workers)}
	h := device.NewHandle(ctx, func(device.Context) { ctx.pool.Close() })
	dev, err := device.New(device.Config{
		Family:      Family,
		Platform:    a.platform,
		Handle:      h,
		ThreadAware: true,
		Native:      a.platform,
	})
	if err != nil {
		log.Warn("software: create device", "err", err)
		return nil, nil
	}

	w, hgt := req.Size()
	c := &closure{Bundle: harness.NewBundle(dev, nil)}
	s := newSurface(dev, ctx, req.Content, w, hgt)
	c.SetSurface(s)
	if err := s.Status(); err != nil {
		log.Warn("software: surface in error", "name", req.Name, "err", err)
		a.Cleanup(c)
		return s, c
	}
	log.Debug("software: surface created", "name", req.Name, "width", w, "height", hgt, "workers", ctx.pool.Workers())
	return s, c
}

// CreateSimilar creates a surface on the device of s.
func (a *Adapter) CreateSimilar(s harness.Surface, content harness.Content, width, height int) (harness.Surface, error) {
	src, ok := s.(*Surface)
	if !ok {
		return nil, fmt.Errorf("software: %w", harness.ErrForeignSurface)
	}
	if err := src.usable(); err != nil {
		return nil, err
	}
	out := newSurface(src.dev, src.ctx, content, max(width, 1), max(height, 1))
	if err := out.Status(); err != nil {
		_ = out.Close()
		return nil, err
	}
	return out, nil
}

// Synchronize waits for the raster queue of c.
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
		Name:          name,
		Family:        Family,
		Kind:          harness.KindImage,
		Content:       content,
		CreateSurface: a.CreateSurface,
		CreateSimilar: a.CreateSimilar,
		Cleanup:       a.Cleanup,
		Synchronize:   a.Synchronize,
		Caps: harness.Caps{
			SimilarSurfaces: true,
			Measurable:      true,
		},
	}
}

// PlatformOf returns the software platform of d.
func PlatformOf(d *device.Device) (*Platform, error) {
	return device.Native[*Platform](d, Family)
}
