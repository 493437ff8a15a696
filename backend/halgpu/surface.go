// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/device"
)

// copyPitchAlignment is the required BytesPerRow alignment of
// texture-to-buffer copies.
const copyPitchAlignment = 256

// Surface is an offscreen render texture. With more than one sample the
// surface renders into a multisampled texture that resolves into tex.
type Surface struct {
	dev     *device.Device
	ctx     *gpuContext
	content harness.Content
	width   uint32
	height  uint32
	samples uint32

	msaaTex  hal.Texture
	msaaView hal.TextureView
	tex      hal.Texture
	view     hal.TextureView

	status error
	closed atomic.Bool
}

// newSurface allocates the textures of a surface on d and takes a device
// reference. Allocation failures are recorded as the surface status.
func newSurface(d *device.Device, ctx *gpuContext, content harness.Content, w, h int, samples uint32) *Surface {
	s := &Surface{
		dev:     d.Reference(),
		ctx:     ctx,
		content: content,
		width:   uint32(w), //nolint:gosec // bounded by maxTextureDimension
		height:  uint32(h), //nolint:gosec // bounded by maxTextureDimension
		samples: samples,
	}
	if err := s.createTextures(); err != nil {
		s.status = err
		return s
	}
	// Texture contents start undefined.
	if err := s.Clear(color.Transparent); err != nil {
		s.status = err
	}
	return s
}

func (s *Surface) createTextures() error {
	dev := s.ctx.device
	size := hal.Extent3D{Width: s.width, Height: s.height, DepthOrArrayLayers: 1}
	format := s.ctx.cfg.format

	if s.samples > 1 {
		msaaTex, err := dev.CreateTexture(&hal.TextureDescriptor{
			Label:         s.ctx.label + "_msaa_color",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   s.samples,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("halgpu: create MSAA color texture: %w", err)
		}
		s.msaaTex = msaaTex

		msaaView, err := dev.CreateTextureView(msaaTex, &hal.TextureViewDescriptor{
			Label: s.ctx.label + "_msaa_color_view",
		})
		if err != nil {
			s.destroyTextures()
			return fmt.Errorf("halgpu: create MSAA color view: %w", err)
		}
		s.msaaView = msaaView
	}

	tex, err := dev.CreateTexture(&hal.TextureDescriptor{
		Label:         s.ctx.label + "_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		s.destroyTextures()
		return fmt.Errorf("halgpu: create color texture: %w", err)
	}
	s.tex = tex

	view, err := dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: s.ctx.label + "_color_view",
	})
	if err != nil {
		s.destroyTextures()
		return fmt.Errorf("halgpu: create color view: %w", err)
	}
	s.view = view
	return nil
}

func (s *Surface) destroyTextures() {
	dev := s.ctx.device
	if s.view != nil {
		dev.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.tex != nil {
		dev.DestroyTexture(s.tex)
		s.tex = nil
	}
	if s.msaaView != nil {
		dev.DestroyTextureView(s.msaaView)
		s.msaaView = nil
	}
	if s.msaaTex != nil {
		dev.DestroyTexture(s.msaaTex)
		s.msaaTex = nil
	}
}

// BoundContext returns the logical device context.
func (s *Surface) BoundContext() device.Context { return s.ctx }

// Width returns the width in pixels.
func (s *Surface) Width() int { return int(s.width) }

// Height returns the height in pixels.
func (s *Surface) Height() int { return int(s.height) }

// Content returns the surface content.
func (s *Surface) Content() harness.Content { return s.content }

// Status returns the creation error, if any.
func (s *Surface) Status() error { return s.status }

// Device returns the owning device.
func (s *Surface) Device() *device.Device { return s.dev }

// Samples returns the sample count of the color attachment.
func (s *Surface) Samples() uint32 { return s.samples }

func (s *Surface) usable() error {
	if s.closed.Load() {
		return harness.ErrSurfaceClosed
	}
	return s.status
}

// Clear records and submits a render pass that clears the surface to c.
// It does not wait for the GPU.
func (s *Surface) Clear(c color.Color) error {
	if s.closed.Load() {
		return harness.ErrSurfaceClosed
	}
	if s.tex == nil {
		return s.status
	}
	if err := s.dev.Acquire(); err != nil {
		return err
	}
	defer s.dev.Release()
	if err := s.dev.MakeCurrent(s); err != nil {
		return err
	}

	p := harness.FillColor(s.content, c)
	attachment := hal.RenderPassColorAttachment{
		View:       s.view,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: gputypes.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255, A: float64(p.A) / 255},
	}
	if s.msaaView != nil {
		attachment.View = s.msaaView
		attachment.ResolveTarget = s.view
	}

	encoder, err := s.ctx.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: s.ctx.label + "_clear",
	})
	if err != nil {
		return fmt.Errorf("halgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("clear"); err != nil {
		return fmt.Errorf("halgpu: begin encoding: %w", err)
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            s.ctx.label + "_clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{attachment},
	})
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("halgpu: end encoding: %w", err)
	}
	return s.ctx.submit(cmd)
}

// Image waits for outstanding work and reads the surface back.
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
	return s.readback()
}

// readback copies the color texture into a staging buffer and converts
// the BGRA rows to RGBA. The caller holds the device.
func (s *Surface) readback() (*image.RGBA, error) {
	w, h := s.width, s.height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	dev := s.ctx.device
	staging, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: s.ctx.label + "_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create staging buffer: %w", err)
	}
	defer dev.DestroyBuffer(staging)

	encoder, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: s.ctx.label + "_readback",
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("halgpu: begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(s.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: s.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("halgpu: end encoding: %w", err)
	}
	if err := s.ctx.submit(cmd); err != nil {
		return nil, err
	}
	if err := s.ctx.wait(); err != nil {
		return nil, err
	}

	data := make([]byte, stagingSize)
	if err := s.ctx.queue.ReadBuffer(staging, 0, data); err != nil {
		return nil, fmt.Errorf("halgpu: readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	bgraToRGBA(img, data, int(alignedBytesPerRow), s.content.HasAlpha())
	return img, nil
}

// bgraToRGBA converts padded BGRA rows into img. Opaque content forces
// alpha to 0xff.
func bgraToRGBA(img *image.RGBA, src []byte, pitch int, alpha bool) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := range h {
		row := src[y*pitch : y*pitch+w*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			dst[x+0] = row[x+2]
			dst[x+1] = row[x+1]
			dst[x+2] = row[x+0]
			dst[x+3] = row[x+3]
			if !alpha {
				dst[x+3] = 0xff
			}
		}
	}
}

// Close frees the textures and drops the surface's device reference.
func (s *Surface) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.dev.Acquire(); err == nil {
		s.destroyTextures()
		s.dev.Release()
	} else {
		logger().Warn("halgpu: close surface on unusable device", "err", err)
	}
	s.dev.Forget(s)
	s.dev.Destroy()
	return nil
}
