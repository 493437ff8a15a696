// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfwgl

import (
	"image"
	"image/color"
	"sync/atomic"
	"unsafe"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/device"
)

// Surface is the default framebuffer of a device window.
type Surface struct {
	dev     *device.Device
	ctx     *glContext
	content harness.Content
	status  error
	closed  atomic.Bool
}

func newSurface(d *device.Device, ctx *glContext, content harness.Content) *Surface {
	return &Surface{dev: d.Reference(), ctx: ctx, content: content}
}

// BoundContext returns the window context.
func (s *Surface) BoundContext() device.Context { return s.ctx }

// Width returns the framebuffer width.
func (s *Surface) Width() int { return s.ctx.width }

// Height returns the framebuffer height.
func (s *Surface) Height() int { return s.ctx.height }

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

// Clear fills the back buffer with c.
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

	p := harness.FillColor(s.content, c)
	s.ctx.setViewport(s.ctx.width, s.ctx.height)
	s.ctx.setClearColor(float32(p.R)/255, float32(p.G)/255, float32(p.B)/255, float32(p.A)/255)
	s.ctx.gl.Clear(glColorBufferBit)
	return nil
}

// Present swaps the window buffers.
func (s *Surface) Present() error {
	if err := s.usable(); err != nil {
		return err
	}
	return s.dev.SwapBuffers(s)
}

// Image waits for the GPU and reads the back buffer, top row first.
func (s *Surface) Image() (*image.RGBA, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if err := s.dev.Acquire(); err != nil {
		return nil, err
	}
	defer s.dev.Release()
	if err := s.dev.MakeCurrent(s); err != nil {
		return nil, err
	}
	if err := s.dev.Sync(); err != nil {
		return nil, err
	}

	w, h := s.ctx.width, s.ctx.height
	buf := make([]byte, w*h*4)
	gl := s.ctx.gl
	gl.PixelStorei(glPackAlignment, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), glRGBA, glUnsignedByte, unsafe.Pointer(&buf[0]))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	flipRows(img, buf, s.content.HasAlpha())
	return img, nil
}

// flipRows copies bottom-up GL rows into img. Opaque content forces alpha.
func flipRows(img *image.RGBA, src []byte, alpha bool) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	rowLen := w * 4
	for y := range h {
		row := src[(h-1-y)*rowLen : (h-y)*rowLen]
		dst := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		copy(dst, row)
		if !alpha {
			for x := 3; x < rowLen; x += 4 {
				dst[x] = 0xff
			}
		}
	}
}

// Close drops the surface's device reference.
func (s *Surface) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.dev.Forget(s)
	s.dev.Destroy()
	return nil
}
