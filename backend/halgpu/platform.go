// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"sync/atomic"

	"github.com/gogpu/gg-harness/device"
)

// Platform gives HAL devices GL-like current-context semantics. HAL has
// explicit queues and no current context, so the binding is tracked per OS
// thread and the entry points act on the context bound to the caller.
type Platform struct {
	cur *device.ThreadCurrent

	switches atomic.Int64
	unsets   atomic.Int64
}

// NewPlatform returns an empty platform.
func NewPlatform() *Platform {
	return &Platform{cur: device.NewThreadCurrent()}
}

// Current returns the context bound to the calling thread.
func (p *Platform) Current() device.Context {
	return p.cur.Get()
}

// MakeCurrent binds ctx to the calling thread.
func (p *Platform) MakeCurrent(ctx device.Context) error {
	p.switches.Add(1)
	if ctx == nil {
		p.unsets.Add(1)
	}
	p.cur.Set(ctx)
	return nil
}

// SwapBuffers is a no-op: offscreen textures have no front buffer.
func (p *Platform) SwapBuffers(device.Context) error { return nil }

// Unsets returns how often a context was unbound.
func (p *Platform) Unsets() int64 { return p.unsets.Load() }

// Switches returns the number of MakeCurrent calls.
func (p *Platform) Switches() int64 { return p.switches.Load() }

// Lookup resolves the HAL entry points.
func (p *Platform) Lookup(name string) (device.Proc, bool) {
	switch name {
	case device.ProcFlush:
		// Submissions are issued eagerly.
		return func() error { return nil }, true
	case device.ProcFinish:
		return p.finish, true
	}
	return nil, false
}

func (p *Platform) finish() error {
	ctx, ok := p.Current().(*gpuContext)
	if !ok {
		return nil
	}
	return ctx.wait()
}
