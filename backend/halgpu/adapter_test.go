// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/backend/software"
	"github.com/gogpu/gg-harness/device"
)

func lockThread(t *testing.T) {
	t.Helper()
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)
}

func newNoopAdapter() *Adapter {
	return New(Options{API: &noop.API{}, Samples: 4})
}

func createSurface(t *testing.T, a *Adapter, req harness.SurfaceRequest) (*Surface, *closure) {
	t.Helper()
	s, c := a.CreateSurface(req)
	require.NotNil(t, s, "noop backend must always negotiate")
	require.NotNil(t, c)
	return s.(*Surface), c.(*closure)
}

func TestNativeGPUScenario(t *testing.T) {
	lockThread(t)
	a := newNoopAdapter()

	s, c := createSurface(t, a, harness.SurfaceRequest{
		Name:    "native-gpu",
		Content: harness.ContentColorAlpha,
		Width:   0.5,
		Height:  300,
	})
	require.NoError(t, s.Status())
	assert.Equal(t, 1, s.Width())
	assert.Equal(t, 300, s.Height())

	cfg := c.cfg
	handle := c.Device().Handle()
	assert.Equal(t, int32(1), cfg.refs.Load(), "only the native handle holds the config")

	unsets := a.Platform().Unsets()
	a.Cleanup(c)

	assert.Equal(t, unsets+1, a.Platform().Unsets(), "current context unset exactly once")
	assert.Equal(t, int32(1), cfg.frees.Load(), "config released exactly once")
	assert.Equal(t, int32(0), cfg.refs.Load())
	assert.True(t, handle.Released())
	assert.Equal(t, device.StateDestroyed, c.Device().State())

	a.Cleanup(c)
	assert.Equal(t, unsets+1, a.Platform().Unsets())
	assert.Equal(t, int32(1), cfg.frees.Load())
	assert.Equal(t, int32(0), cfg.refs.Load())
}

func TestCreateSurfaceSize(t *testing.T) {
	lockThread(t)
	a := newNoopAdapter()

	tests := []struct {
		w, h         float64
		wantW, wantH int
	}{
		{0.5, 300, 1, 300},
		{0, -1, 1, 1},
		{2.25, 2.75, 3, 3},
		{256, 128, 256, 128},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%vx%v", tt.w, tt.h), func(t *testing.T) {
			s, c := createSurface(t, a, harness.SurfaceRequest{Content: harness.ContentColor, Width: tt.w, Height: tt.h})
			defer a.Cleanup(c)
			assert.Equal(t, tt.wantW, s.Width())
			assert.Equal(t, tt.wantH, s.Height())

			img, err := s.Image()
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, img.Bounds().Dx())
			assert.Equal(t, tt.wantH, img.Bounds().Dy())
		})
	}
}

func TestModeSelectsSamples(t *testing.T) {
	lockThread(t)
	a := newNoopAdapter()

	tests := []struct {
		mode harness.Mode
		want uint32
	}{
		{harness.ModeTest, 4},
		{harness.ModePerf, 1},
	}
	for _, tt := range tests {
		s, c := createSurface(t, a, harness.SurfaceRequest{Content: harness.ContentColorAlpha, Width: 8, Height: 8, Mode: tt.mode})
		assert.Equal(t, tt.want, s.Samples())
		assert.Equal(t, tt.want > 1, s.msaaTex != nil)
		a.Cleanup(c)
	}
}

func TestClearSubmitsAndSyncDrains(t *testing.T) {
	lockThread(t)
	a := newNoopAdapter()
	s, c := createSurface(t, a, harness.SurfaceRequest{Content: harness.ContentColorAlpha, Width: 16, Height: 16})
	defer a.Cleanup(c)

	require.NoError(t, a.Synchronize(c))
	require.Zero(t, s.ctx.Pending())

	require.NoError(t, s.Clear(color.RGBA{R: 255, A: 255}))
	assert.Equal(t, 1, s.ctx.Pending())

	waits := s.ctx.waits
	require.NoError(t, a.Synchronize(c))
	assert.Zero(t, s.ctx.Pending())
	assert.Equal(t, waits+1, s.ctx.waits)

	// Nothing pending: still a valid barrier.
	require.NoError(t, a.Synchronize(c))
}

func TestSynchronizeAfterCleanup(t *testing.T) {
	lockThread(t)
	a := newNoopAdapter()
	s, c := createSurface(t, a, harness.SurfaceRequest{Content: harness.ContentColorAlpha, Width: 1, Height: 1})
	a.Cleanup(c)

	waits := s.ctx.waits
	assert.ErrorIs(t, a.Synchronize(c), device.ErrFinished)
	assert.Equal(t, waits, s.ctx.waits, "no GPU work after finish")

	_, err := s.Image()
	assert.ErrorIs(t, err, harness.ErrSurfaceClosed)
}

func TestNegotiationFailure(t *testing.T) {
	tests := []struct {
		name string
		a    *Adapter
		req  harness.SurfaceRequest
	}{
		{"unknown backend", New(Options{Backend: "glide"}), harness.SurfaceRequest{Content: harness.ContentColor, Width: 1, Height: 1}},
		{"bad content", newNoopAdapter(), harness.SurfaceRequest{Content: 0, Width: 1, Height: 1}},
		{"too large", newNoopAdapter(), harness.SurfaceRequest{Content: harness.ContentColor, Width: maxTextureDimension + 1, Height: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, c := tt.a.CreateSurface(tt.req)
			assert.Nil(t, s)
			assert.Nil(t, c)
		})
	}
}

var errOutOfMemory = errors.New("out of device memory")

// texturelessAPI is the noop backend with a device that cannot allocate
// textures.
type texturelessAPI struct{ noop.API }

func (a texturelessAPI) CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error) {
	inst, err := a.API.CreateInstance(desc)
	if err != nil {
		return nil, err
	}
	return texturelessInstance{inst}, nil
}

type texturelessInstance struct{ hal.Instance }

func (i texturelessInstance) EnumerateAdapters(hint hal.Surface) []hal.ExposedAdapter {
	adapters := i.Instance.EnumerateAdapters(hint)
	for k := range adapters {
		adapters[k].Adapter = texturelessAdapter{adapters[k].Adapter}
	}
	return adapters
}

type texturelessAdapter struct{ hal.Adapter }

func (a texturelessAdapter) Open(features gputypes.Features, limits gputypes.Limits) (hal.OpenDevice, error) {
	od, err := a.Adapter.Open(features, limits)
	if err != nil {
		return od, err
	}
	od.Device = texturelessDevice{od.Device}
	return od, nil
}

type texturelessDevice struct{ hal.Device }

func (texturelessDevice) CreateTexture(*hal.TextureDescriptor) (hal.Texture, error) {
	return nil, errOutOfMemory
}

func TestSurfaceErrorCleansUpOnce(t *testing.T) {
	lockThread(t)
	a := New(Options{API: texturelessAPI{}, Samples: 4})

	s, c := createSurface(t, a, harness.SurfaceRequest{
		Name:    "native-gpu",
		Content: harness.ContentColorAlpha,
		Width:   4,
		Height:  4,
	})
	assert.ErrorIs(t, s.Status(), errOutOfMemory, "the errored surface is still returned")
	assert.True(t, c.Done())
	assert.True(t, c.Device().Handle().Released())
	assert.Equal(t, int32(1), c.cfg.frees.Load())
	assert.Equal(t, int32(0), c.cfg.refs.Load())

	unsets := a.Platform().Unsets()
	a.Cleanup(c)
	assert.Equal(t, int32(1), c.cfg.frees.Load())
	assert.Equal(t, unsets, a.Platform().Unsets())
	assert.Error(t, s.Clear(color.White))
}

func TestCreatorSelection(t *testing.T) {
	c, err := New(Options{Backend: "noop"}).creator()
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = New(Options{Backend: "glide"}).creator()
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestCreateSimilar(t *testing.T) {
	lockThread(t)
	a := newNoopAdapter()
	s, c := createSurface(t, a, harness.SurfaceRequest{Content: harness.ContentColorAlpha, Width: 4, Height: 4})
	refs := c.Device().Refs()

	sim, err := a.CreateSimilar(s, harness.ContentColor, 0, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, sim.Width())
	assert.Equal(t, 9, sim.Height())
	assert.Equal(t, refs+1, c.Device().Refs())

	_, err = a.CreateSimilar(s, harness.ContentColor, maxTextureDimension+1, 1)
	assert.ErrorIs(t, err, ErrSurfaceTooBig)

	require.NoError(t, sim.Close())
	a.Cleanup(c)
	assert.True(t, c.Device().Handle().Released())
}

func TestDeviceOf(t *testing.T) {
	lockThread(t)
	a := newNoopAdapter()
	_, c := createSurface(t, a, harness.SurfaceRequest{Content: harness.ContentColorAlpha, Width: 1, Height: 1})
	defer a.Cleanup(c)

	g, err := DeviceOf(c.Device())
	require.NoError(t, err)
	_, ok := g.HalDevice().(hal.Device)
	assert.True(t, ok)
	_, ok = g.HalQueue().(hal.Queue)
	assert.True(t, ok)
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, g.SurfaceFormat())

	var provider gpucontext.DeviceProvider = g
	assert.NotNil(t, provider.Device())
	provider.Device().Poll(true)

	sw := software.New(1)
	ss, sc := sw.CreateSurface(harness.SurfaceRequest{Content: harness.ContentColor, Width: 1, Height: 1})
	require.NotNil(t, ss)
	defer sw.Cleanup(sc)

	_, err = DeviceOf(sc.Device())
	var tm *device.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, Family, tm.Want)
	assert.Equal(t, software.Family, tm.Got)
}

func TestBGRAToRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	pitch := 256
	src := make([]byte, pitch*2)
	copy(src[0:], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	copy(src[pitch:], []byte{9, 10, 11, 12, 13, 14, 15, 16})

	bgraToRGBA(img, src, pitch, true)
	assert.Equal(t, []byte{3, 2, 1, 4, 7, 6, 5, 8, 11, 10, 9, 12, 15, 14, 13, 16}, img.Pix)

	bgraToRGBA(img, src, pitch, false)
	assert.Equal(t, byte(0xff), img.Pix[3])
	assert.Equal(t, byte(0xff), img.Pix[15])
}

func TestCheckShaders(t *testing.T) {
	require.NoError(t, checkShaders())
}

func TestTarget(t *testing.T) {
	tg := newNoopAdapter().Target("native-gpu", harness.ContentColorAlpha)
	assert.Equal(t, Family, tg.Family)
	assert.Equal(t, harness.KindGPU, tg.Kind)
	assert.NotNil(t, tg.Synchronize)
}
