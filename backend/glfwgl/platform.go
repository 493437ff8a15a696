// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfwgl

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg-harness/device"
)

// glContext is the native context of a GL device: a hidden window and the
// GL functions of its context.
type glContext struct {
	label  string
	win    window
	gl     *glFuncs
	pf     pixelFormat
	width  int
	height int

	// cache is the GL state last set through the context.
	cache glState
}

type glState struct {
	viewport    [4]int32
	hasViewport bool
	clear       [4]float32
	hasClear    bool
}

// reset forgets cached state. The device calls it when another context may
// have run in between.
func (c *glContext) reset() { c.cache = glState{} }

func (c *glContext) setViewport(width, height int) {
	v := [4]int32{0, 0, int32(width), int32(height)}
	if c.cache.hasViewport && c.cache.viewport == v {
		return
	}
	c.gl.Viewport(v[0], v[1], v[2], v[3])
	c.cache.viewport, c.cache.hasViewport = v, true
}

func (c *glContext) setClearColor(r, g, b, a float32) {
	v := [4]float32{r, g, b, a}
	if c.cache.hasClear && c.cache.clear == v {
		return
	}
	c.gl.ClearColor(r, g, b, a)
	c.cache.clear, c.cache.hasClear = v, true
}

// Platform maps glfw's current context onto device contexts. Windows the
// adapter did not create are reported as foreign contexts.
type Platform struct {
	sys windowSystem

	mu       sync.Mutex
	contexts map[window]*glContext

	switches atomic.Int64
	unsets   atomic.Int64
	presents atomic.Int64
}

func newPlatform(sys windowSystem) *Platform {
	return &Platform{sys: sys, contexts: make(map[window]*glContext)}
}

func (p *Platform) register(ctx *glContext) {
	p.mu.Lock()
	p.contexts[ctx.win] = ctx
	p.mu.Unlock()
}

func (p *Platform) unregister(ctx *glContext) {
	p.mu.Lock()
	delete(p.contexts, ctx.win)
	p.mu.Unlock()
}

func (p *Platform) registered(ctx *glContext) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.contexts[ctx.win] == ctx
}

// Current returns the context current on the calling thread.
func (p *Platform) Current() device.Context {
	w := p.sys.Current()
	if w == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx, ok := p.contexts[w]; ok {
		return ctx
	}
	return w
}

// MakeCurrent binds ctx, which is nil, a device context or a foreign window.
func (p *Platform) MakeCurrent(ctx device.Context) error {
	p.switches.Add(1)
	switch c := ctx.(type) {
	case nil:
		p.unsets.Add(1)
		p.sys.Detach()
	case *glContext:
		if !p.registered(c) {
			return fmt.Errorf("glfwgl: context %q already destroyed", c.label)
		}
		c.win.MakeContextCurrent()
	case window:
		c.MakeContextCurrent()
	default:
		return fmt.Errorf("glfwgl: cannot bind %T", ctx)
	}
	return nil
}

// SwapBuffers presents the back buffer of ctx.
func (p *Platform) SwapBuffers(ctx device.Context) error {
	c, ok := ctx.(*glContext)
	if !ok {
		return fmt.Errorf("glfwgl: cannot present %T", ctx)
	}
	c.win.SwapBuffers()
	p.presents.Add(1)
	return nil
}

// Switches returns the number of MakeCurrent calls.
func (p *Platform) Switches() int64 { return p.switches.Load() }

// Unsets returns how often the current context was detached.
func (p *Platform) Unsets() int64 { return p.unsets.Load() }

// Presents returns the number of buffer swaps.
func (p *Platform) Presents() int64 { return p.presents.Load() }

// contextPlatform is the view of Platform a single device resolves its
// entry points through.
type contextPlatform struct {
	*Platform
	ctx *glContext
}

func (p contextPlatform) Lookup(name string) (device.Proc, bool) {
	var fn func()
	switch name {
	case device.ProcFlush:
		fn = p.ctx.gl.Flush
	case device.ProcFinish:
		fn = p.ctx.gl.Finish
	}
	if fn == nil {
		return nil, false
	}
	return func() error { fn(); return nil }, true
}
