// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"sync/atomic"

	"github.com/gogpu/gg-harness/device"
)

// cpuContext is the native context of a software device: the raster queue
// every surface of the device draws through.
type cpuContext struct {
	label string
	pool  *workerPool
}

// Platform emulates a GL-like driver on the CPU. The current context is
// tracked per OS thread and entry points act on it.
type Platform struct {
	cur *device.ThreadCurrent

	presents atomic.Int64
}

// NewPlatform returns an empty platform.
func NewPlatform() *Platform {
	return &Platform{cur: device.NewThreadCurrent()}
}

// Current returns the context current on the calling thread.
func (p *Platform) Current() device.Context {
	return p.cur.Get()
}

// MakeCurrent binds ctx to the calling thread.
func (p *Platform) MakeCurrent(ctx device.Context) error {
	p.cur.Set(ctx)
	return nil
}

// SwapBuffers counts a present; image surfaces have no front buffer.
func (p *Platform) SwapBuffers(device.Context) error {
	p.presents.Add(1)
	return nil
}

// Presents returns the number of SwapBuffers calls.
func (p *Platform) Presents() int64 { return p.presents.Load() }

// Lookup resolves the software entry points.
func (p *Platform) Lookup(name string) (device.Proc, bool) {
	switch name {
	case device.ProcFlush:
		return func() error { return nil }, true
	case device.ProcFinish:
		return p.finish, true
	}
	return nil, false
}

// finish waits for the raster queue of the current context.
func (p *Platform) finish() error {
	if ctx, ok := p.Current().(*cpuContext); ok {
		ctx.pool.Wait()
	}
	return nil
}
