// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

// Context is an opaque platform rendering context.
//
// Contexts are compared with ==, so implementations must be comparable,
// usually pointers. A nil Context means "no context".
type Context any

// Proc is a resolved GPU entry point that takes no arguments, such as a
// flush or finish barrier.
type Proc func() error

// Names of the entry points every Device resolves at construction.
const (
	ProcFlush  = "flush"
	ProcFinish = "finish"
)

// Platform is the windowing or driver layer a Device talks to.
type Platform interface {
	// Current returns the context current on the calling thread, or nil.
	Current() Context

	// MakeCurrent binds ctx to the calling thread. A nil ctx unbinds.
	MakeCurrent(ctx Context) error

	// SwapBuffers presents the back buffer of ctx.
	SwapBuffers(ctx Context) error

	// Lookup resolves an entry point by name.
	Lookup(name string) (Proc, bool)
}

// Bindable is implemented by surfaces that render through a Device.
type Bindable interface {
	// BoundContext returns the context the surface draws into.
	BoundContext() Context
}
