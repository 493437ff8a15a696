// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/device"
)

// Surface is a CPU raster surface.
type Surface struct {
	dev     *device.Device
	ctx     *cpuContext
	content harness.Content
	width   int
	height  int
	img     *image.RGBA
	status  error
	closed  atomic.Bool
}

// newSurface creates a surface on d and takes a device reference.
// Sizes beyond maxPixels yield a surface in error status without pixels.
func newSurface(d *device.Device, ctx *cpuContext, content harness.Content, w, h int) *Surface {
	s := &Surface{
		dev:     d.Reference(),
		ctx:     ctx,
		content: content,
		width:   w,
		height:  h,
	}
	if int64(w)*int64(h) > maxPixels {
		s.status = fmt.Errorf("%w: %dx%d", ErrSurfaceTooLarge, w, h)
		return s
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	if !content.HasAlpha() {
		// Color surfaces start opaque black.
		for i := 3; i < len(s.img.Pix); i += 4 {
			s.img.Pix[i] = 0xff
		}
	}
	return s
}

// BoundContext returns the raster queue context of the device.
func (s *Surface) BoundContext() device.Context { return s.ctx }

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Content returns the surface content.
func (s *Surface) Content() harness.Content { return s.content }

// Status returns the creation error, if any.
func (s *Surface) Status() error { return s.status }

// Device returns the owning device.
func (s *Surface) Device() *device.Device { return s.dev }

func (s *Surface) usable() error {
	if s.closed.Load() {
		return harness.ErrSurfaceClosed
	}
	return s.status
}

// Clear queues a solid fill of the whole surface. The fill is split into
// row bands, one job per worker.
func (s *Surface) Clear(c color.Color) error {
	if err := s.usable(); err != nil {
		return err
	}
	if err := s.dev.Acquire(); err != nil {
		return err
	}
	defer s.dev.Release()
	if err := s.dev.MakeCurrent(s); err != nil {
		return err
	}

	img := s.img
	src := image.NewUniform(harness.FillColor(s.content, c))
	band := max(1, (s.height+s.ctx.pool.Workers()-1)/s.ctx.pool.Workers())
	for y := 0; y < s.height; y += band {
		r := image.Rect(0, y, s.width, min(y+band, s.height))
		s.ctx.pool.Submit(func() {
			draw.Draw(img, r, src, image.Point{}, draw.Src)
		})
	}
	return nil
}

// Image waits for queued raster work and returns a copy of the pixels.
func (s *Surface) Image() (*image.RGBA, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if err := s.dev.Sync(); err != nil {
		return nil, err
	}
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out, nil
}

// Close drops the surface's device reference.
func (s *Surface) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.dev.Forget(s)
	s.dev.Destroy()
	s.img = nil
	return nil
}
