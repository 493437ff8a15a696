// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfwgl

import (
	"errors"
	"fmt"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/device"
)

// Family is the backend family name of GL window devices.
const Family = "gl"

// maxWindowDimension bounds either side of a window.
const maxWindowDimension = 16384

// Errors reported by negotiation and surface creation.
var (
	ErrContent      = errors.New("glfwgl: unsupported content")
	ErrTooLarge     = errors.New("glfwgl: window too large")
	ErrSizeMismatch = errors.New("glfwgl: framebuffer size differs from request")
)

// Options configure an Adapter.
type Options struct {
	// Samples is the multisample count requested in test mode.
	Samples int
}

// Adapter creates window surfaces. It owns the window system: the first
// surface initializes it and the last cleanup terminates it.
type Adapter struct {
	opts     Options
	sys      windowSystem
	sub      *subsystem
	platform *Platform
}

// New returns an adapter for the glfw window system.
func New(opts Options) *Adapter {
	return newAdapter(opts, defaultSystem())
}

func newAdapter(opts Options, sys windowSystem) *Adapter {
	return &Adapter{
		opts:     opts,
		sys:      sys,
		sub:      &subsystem{sys: sys},
		platform: newPlatform(sys),
	}
}

// Platform returns the platform shared by the adapter's devices.
func (a *Adapter) Platform() *Platform { return a.platform }

type closure struct {
	*harness.Bundle
}

// CreateSurface opens a hidden window sized to req and returns its
// framebuffer as the surface. It returns (nil, nil) when the window system
// or GL is unavailable.
func (a *Adapter) CreateSurface(req harness.SurfaceRequest) (harness.Surface, harness.Closure) {
	log := harness.Logger()
	w, h := req.Size()
	if err := checkRequest(req, w, h); err != nil {
		log.Debug("glfwgl: request rejected", "name", req.Name, "err", err)
		return nil, nil
	}
	if err := a.sub.acquire(); err != nil {
		log.Info("glfwgl: window system unavailable", "err", err)
		return nil, nil
	}

	ctx, err := a.openContext(req, w, h)
	if err != nil {
		a.sub.release()
		if errors.Is(err, device.ErrDispatchInit) {
			log.Warn("glfwgl: create device", "name", req.Name, "err", err)
		} else {
			log.Info("glfwgl: no GL context", "name", req.Name, "err", err)
		}
		return nil, nil
	}

	handle := device.NewHandle(ctx, func(device.Context) { a.closeContext(ctx) })
	dev, err := device.New(device.Config{
		Family:   Family,
		Platform: contextPlatform{Platform: a.platform, ctx: ctx},
		Handle:   handle,
		Reset:    ctx.reset,
		Native:   &Window{ctx: ctx},
	})
	if err != nil {
		a.sub.release()
		log.Warn("glfwgl: create device", "name", req.Name, "err", err)
		return nil, nil
	}

	c := &closure{Bundle: harness.NewBundle(dev, nil)}
	c.OnTeardown(a.sub.release)
	s := newSurface(dev, ctx, req.Content)
	if ctx.width != w || ctx.height != h {
		s.status = fmt.Errorf("%w: want %dx%d, got %dx%d", ErrSizeMismatch, w, h, ctx.width, ctx.height)
	}
	c.SetSurface(s)
	if err := s.Status(); err != nil {
		log.Warn("glfwgl: surface in error", "name", req.Name, "err", err)
		a.Cleanup(c)
	}
	return s, c
}

func checkRequest(req harness.SurfaceRequest, w, h int) error {
	if req.Content != harness.ContentColor && req.Content != harness.ContentColorAlpha {
		return fmt.Errorf("%w: %v", ErrContent, req.Content)
	}
	if w > maxWindowDimension || h > maxWindowDimension {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	return nil
}

// openContext creates the device window and resolves GL on it. The
// caller's current context is restored afterwards.
func (a *Adapter) openContext(req harness.SurfaceRequest, w, h int) (*glContext, error) {
	pf := pixelFormat{alpha: req.Content.HasAlpha(), samples: a.opts.Samples}
	if req.Mode == harness.ModePerf {
		pf.samples = 0
	}

	win, err := a.sys.CreateWindow(pf, w, h)
	if err != nil {
		return nil, fmt.Errorf("glfwgl: create window: %w", err)
	}

	prev := a.sys.Current()
	win.MakeContextCurrent()
	gl, err := a.sys.LoadGL()
	if prev != nil {
		prev.MakeContextCurrent()
	} else {
		a.sys.Detach()
	}
	if err != nil {
		win.Destroy()
		return nil, err
	}

	fw, fh := win.GetFramebufferSize()
	ctx := &glContext{label: req.Name, win: win, gl: gl, pf: pf, width: fw, height: fh}
	a.platform.register(ctx)
	return ctx, nil
}

func (a *Adapter) closeContext(ctx *glContext) {
	a.platform.unregister(ctx)
	ctx.win.Destroy()
	harness.Logger().Debug("glfwgl: window destroyed", "label", ctx.label)
}

// Synchronize runs glFinish on the closure device.
func (a *Adapter) Synchronize(c harness.Closure) error {
	return c.Device().Sync()
}

// Cleanup tears c down and drops its window system reference. Calling it
// again is a no-op.
func (a *Adapter) Cleanup(c harness.Closure) {
	c.Teardown()
}

// Target returns a descriptor for this adapter. Windows cannot create
// similar surfaces.
func (a *Adapter) Target(name string, content harness.Content) harness.Target {
	return harness.Target{
		Name:          name,
		Family:        Family,
		Kind:          harness.KindWindow,
		Content:       content,
		CreateSurface: a.CreateSurface,
		Cleanup:       a.Cleanup,
		Synchronize:   a.Synchronize,
		Caps:          harness.Caps{Measurable: true},
	}
}

// Window is the native payload of GL devices.
type Window struct {
	ctx *glContext
}

// Raw returns the toolkit window, a *glfw.Window in glfw builds.
func (w *Window) Raw() any { return w.ctx.win.Raw() }

// Size returns the framebuffer size.
func (w *Window) Size() (width, height int) { return w.ctx.width, w.ctx.height }

// Alpha reports whether the framebuffer has an alpha channel.
func (w *Window) Alpha() bool { return w.ctx.pf.alpha }

// Samples returns the requested multisample count.
func (w *Window) Samples() int { return w.ctx.pf.samples }

// WindowOf returns the window behind a GL device.
func WindowOf(d *device.Device) (*Window, error) {
	return device.Native[*Window](d, Family)
}
