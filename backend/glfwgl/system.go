// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfwgl

// pixelFormat is the negotiated framebuffer configuration.
type pixelFormat struct {
	alpha   bool
	samples int
}

// window is one native window with its GL context.
type window interface {
	MakeContextCurrent()
	SwapBuffers()
	Destroy()
	GetFramebufferSize() (width, height int)

	// Raw returns the underlying toolkit window.
	Raw() any
}

// windowSystem is the windowing layer the adapter drives. Implementations
// must return comparable window values so the platform can map them to
// device contexts.
type windowSystem interface {
	Init() error
	Terminate()

	// CreateWindow creates a hidden window of the given framebuffer size.
	CreateWindow(pf pixelFormat, width, height int) (window, error)

	// Current returns the window whose context is current on the calling
	// thread, or nil.
	Current() window

	// Detach makes no context current on the calling thread.
	Detach()

	// LoadGL resolves the GL entry points of the current context.
	LoadGL() (*glFuncs, error)
}
