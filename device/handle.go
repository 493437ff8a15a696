// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"sync"
	"sync/atomic"
)

// Handle is a reference-counted native context.
//
// The free function passed to NewHandle runs exactly once, when the last
// reference is released. Releasing more often than retaining is logged and
// otherwise ignored.
type Handle struct {
	ctx   Context
	free  func(Context)
	refs  atomic.Int32
	freed atomic.Bool

	mu     sync.Mutex
	onFree []func()
}

// NewHandle wraps ctx with a reference count of one.
func NewHandle(ctx Context, free func(Context)) *Handle {
	h := &Handle{ctx: ctx, free: free}
	h.refs.Store(1)
	return h
}

// Context returns the wrapped native context.
func (h *Handle) Context() Context { return h.ctx }

// Retain adds a reference and returns h.
// Retaining a freed handle is a programming error and panics.
func (h *Handle) Retain() *Handle {
	if h.refs.Add(1) <= 1 {
		panic("device: retain of released handle")
	}
	return h
}

// Release drops a reference, freeing the context when none remain.
func (h *Handle) Release() {
	for {
		n := h.refs.Load()
		if n <= 0 {
			slogger().Warn("device: handle over-released", "refs", n)
			return
		}
		if h.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				h.destroy()
			}
			return
		}
	}
}

// Refs returns the current reference count.
func (h *Handle) Refs() int32 { return h.refs.Load() }

// Released reports whether the context has been freed.
func (h *Handle) Released() bool { return h.freed.Load() }

// OnFree registers fn to run after the context is freed.
// Callbacks run in reverse registration order.
func (h *Handle) OnFree(fn func()) {
	h.mu.Lock()
	h.onFree = append(h.onFree, fn)
	h.mu.Unlock()
}

func (h *Handle) destroy() {
	if !h.freed.CompareAndSwap(false, true) {
		return
	}
	if h.free != nil {
		h.free(h.ctx)
	}

	h.mu.Lock()
	hooks := h.onFree
	h.onFree = nil
	h.mu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}
